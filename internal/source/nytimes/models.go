package nytimes

// wireResponse mirrors the NYTimes newswire envelope.
type wireResponse struct {
	Status  string   `json:"status"`
	Results []result `json:"results"`
}

type result struct {
	SlugName      string       `json:"slug_name"`
	Title         string       `json:"title"`
	Abstract      *string      `json:"abstract"`
	URL           string       `json:"url"`
	Byline        *string      `json:"byline"`
	PublishedDate string       `json:"published_date"`
	Multimedia    []multimedia `json:"multimedia"`
}

type multimedia struct {
	URL string `json:"url"`
}

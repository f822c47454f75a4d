package newsapi

// everythingResponse mirrors the NewsAPI /everything envelope.
type everythingResponse struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

type article struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	Author      *string `json:"author"`
	PublishedAt string  `json:"publishedAt"`
}

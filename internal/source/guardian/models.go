package guardian

// searchResponse mirrors the Guardian /search envelope.
type searchResponse struct {
	Response struct {
		Results []result `json:"results"`
	} `json:"response"`
}

type result struct {
	ID                 string `json:"id"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	PillarName         string `json:"pillarName"`
	WebPublicationDate string `json:"webPublicationDate"`
}

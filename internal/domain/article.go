package domain

import (
	"fmt"
	"time"
)

// Source identifies one of the upstream news APIs. The set is closed:
// adding a source is a code change, not configuration.
type Source string

const (
	SourceGuardian Source = "guardian"
	SourceNewsAPI  Source = "news_api"
	SourceNYTimes  Source = "ny_times"
)

// AllSources returns the fixed source set in sync order.
func AllSources() []Source {
	return []Source{SourceGuardian, SourceNewsAPI, SourceNYTimes}
}

// ParseSource validates a user-supplied source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceGuardian, SourceNewsAPI, SourceNYTimes:
		return Source(s), nil
	}
	return "", fmt.Errorf("unknown source: %q", s)
}

func (s Source) String() string {
	return string(s)
}

// Article is the canonical record shape every gateway normalizes into.
// ExternalID is a stable fingerprint of the upstream item's own identity
// and, together with Source, forms the deduplication key.
type Article struct {
	ExternalID  string  `json:"external_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	URL         *string `json:"url"`
	ImageURL    *string `json:"image_url"`
	AuthorName  *string `json:"author_name"`
	PublishedAt string  `json:"published_at"` // kept in the source's reported format
	Source      Source  `json:"source"`
}

// StoredArticle is the persisted projection of an Article. Rows are
// insert-only; a duplicate external_id is skipped, never overwritten.
type StoredArticle struct {
	ID          int64   `db:"id" json:"id"`
	ExternalID  string  `db:"external_id" json:"external_id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	Content     *string `db:"content" json:"content"`
	URL         *string `db:"url" json:"url"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	AuthorName  *string `db:"author_name" json:"author_name"`
	PublishedAt string  `db:"published_at" json:"published_at"`
	Source      Source  `db:"source" json:"source"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ArticleFilter narrows the read-side article listing.
type ArticleFilter struct {
	Source   *Source
	Author   *string
	FromDate *string
	Search   *string
	Page     int
	PerPage  int
}

// BatchResult reports the outcome of one deduplicated batch insertion.
// Created+Skipped always equals the number of articles attempted.
type BatchResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

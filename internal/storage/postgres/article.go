package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"news_aggregator/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// articleInsert is the storage-insertion projection of a canonical
// article. created_at/updated_at come from column defaults.
type articleInsert struct {
	ExternalID  string        `db:"external_id"`
	Title       string        `db:"title"`
	Description *string       `db:"description"`
	Content     *string       `db:"content"`
	URL         *string       `db:"url"`
	ImageURL    *string       `db:"image_url"`
	AuthorName  *string       `db:"author_name"`
	PublishedAt string        `db:"published_at"`
	Source      domain.Source `db:"source"`
}

func mapForInsert(a domain.Article) articleInsert {
	return articleInsert{
		ExternalID:  a.ExternalID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		AuthorName:  a.AuthorName,
		PublishedAt: a.PublishedAt,
		Source:      a.Source,
	}
}

const insertArticleQuery = `
	INSERT INTO articles (
		external_id, title, description, content, url, image_url,
		author_name, published_at, source
	) VALUES (
		:external_id, :title, :description, :content, :url, :image_url,
		:author_name, :published_at, :source
	)`

// ExistingExternalIDs returns the subset of the given IDs already stored
// for the source, as a single set-membership query.
func (s *ArticleStore) ExistingExternalIDs(ctx context.Context, source domain.Source, externalIDs []string) (map[string]struct{}, error) {
	result := make(map[string]struct{}, len(externalIDs))
	if len(externalIDs) == 0 {
		return result, nil
	}

	query := `SELECT external_id FROM articles WHERE source = $1 AND external_id = ANY($2)`

	rows, err := s.db.QueryContext(ctx, query, source, pq.Array(externalIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = struct{}{}
	}

	return result, rows.Err()
}

// InsertBatch inserts all articles in one multi-row statement.
func (s *ArticleStore) InsertBatch(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	rows := make([]articleInsert, len(articles))
	for i, a := range articles {
		rows[i] = mapForInsert(a)
	}

	_, err := s.db.NamedExecContext(ctx, insertArticleQuery, rows)
	return err
}

func (s *ArticleStore) Insert(ctx context.Context, article domain.Article) error {
	_, err := s.db.NamedExecContext(ctx, insertArticleQuery, mapForInsert(article))
	return err
}

// List returns one page of stored articles matching the filter, newest
// first, along with the total match count.
func (s *ArticleStore) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.StoredArticle, int, error) {
	var (
		conds []string
		args  []interface{}
	)

	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Source != nil {
		addCond("source = $%d", *filter.Source)
	}
	if filter.Author != nil {
		addCond("author_name ILIKE '%%' || $%d || '%%'", *filter.Author)
	}
	if filter.FromDate != nil {
		addCond("published_at::timestamptz >= $%d::timestamptz", *filter.FromDate)
	}
	if filter.Search != nil {
		addCond("to_tsvector('english', title || ' ' || coalesce(description, '')) @@ plainto_tsquery('english', $%d)", *filter.Search)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM articles"+where, args...); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(
		"SELECT * FROM articles%s ORDER BY published_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)

	var articles []domain.StoredArticle
	if err := s.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

// DistinctAuthors lists every distinct non-null author name.
func (s *ArticleStore) DistinctAuthors(ctx context.Context) ([]string, error) {
	var authors []string
	err := s.db.SelectContext(ctx, &authors,
		"SELECT DISTINCT author_name FROM articles WHERE author_name IS NOT NULL ORDER BY author_name",
	)
	return authors, err
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	"news_aggregator/internal/cache"
	"news_aggregator/internal/domain"
	"news_aggregator/testdata/utils"
)

type stubArticleReader struct {
	articles   []domain.StoredArticle
	total      int
	authors    []string
	lastFilter domain.ArticleFilter
	listCalls  int
	err        error
}

func (s *stubArticleReader) List(_ context.Context, filter domain.ArticleFilter) ([]domain.StoredArticle, int, error) {
	s.listCalls++
	s.lastFilter = filter
	return s.articles, s.total, s.err
}

func (s *stubArticleReader) DistinctAuthors(_ context.Context) ([]string, error) {
	return s.authors, s.err
}

type stubStatsReader struct {
	stats    map[domain.Source]domain.SourceStats
	failures []domain.FailedSync
	err      error
}

func (s *stubStatsReader) GetRecentStats(_ context.Context, _ int) (map[domain.Source]domain.SourceStats, error) {
	return s.stats, s.err
}

func (s *stubStatsReader) GetFailedSyncs(_ context.Context, _ int) ([]domain.FailedSync, error) {
	return s.failures, s.err
}

type ServerTestSuite struct {
	suite.Suite

	articles *stubArticleReader
	stats    *stubStatsReader
	server   *Server
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.articles = &stubArticleReader{}
	s.stats = &stubStatsReader{}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.server = NewServer(":0", s.articles, s.stats, cache.NewMemoryCache(), time.Minute, logger)
}

func (s *ServerTestSuite) request(path string) (*http.Response, map[string]json.RawMessage) {
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	resp, err := s.server.App().Test(req, -1)
	s.Require().NoError(err)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var envelope map[string]json.RawMessage
	if resp.StatusCode == fiber.StatusOK {
		s.Require().NoError(json.Unmarshal(body, &envelope))
	}
	return resp, envelope
}

func (s *ServerTestSuite) TestListArticles() {
	s.articles.articles = []domain.StoredArticle{
		{ID: 1, ExternalID: "abc", Title: "First", Source: domain.SourceGuardian, PublishedAt: "2026-08-27T08:00:00Z"},
	}
	s.articles.total = 41

	resp, envelope := s.request("/api/v1/articles?page=2&per_page=20")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var data []domain.StoredArticle
	s.Require().NoError(json.Unmarshal(envelope["data"], &data))
	s.Require().Len(data, 1)
	s.Equal("First", data[0].Title)

	var p pagination
	s.Require().NoError(json.Unmarshal(envelope["pagination"], &p))
	s.Equal(2, p.CurrentPage)
	s.Equal(20, p.PerPage)
	s.Equal(41, p.Total)
	s.Equal(3, p.LastPage)
	s.True(p.HasMore)

	s.Equal(2, s.articles.lastFilter.Page)
	s.Equal(20, s.articles.lastFilter.PerPage)
}

func (s *ServerTestSuite) TestListArticlesDefaultsAndFilters() {
	resp, _ := s.request("/api/v1/articles?source=guardian&author=Jane&publish_date=2026-08-01&search=climate")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	filter := s.articles.lastFilter
	s.Equal(1, filter.Page)
	s.Equal(20, filter.PerPage)
	s.Require().NotNil(filter.Source)
	s.Equal(domain.SourceGuardian, *filter.Source)
	s.Equal(utils.Ptr("Jane"), filter.Author)
	s.Equal(utils.Ptr("2026-08-01"), filter.FromDate)
	s.Equal(utils.Ptr("climate"), filter.Search)
}

func (s *ServerTestSuite) TestListArticlesValidation() {
	for _, path := range []string{
		"/api/v1/articles?source=reuters",
		"/api/v1/articles?publish_date=08-01-2026",
		"/api/v1/articles?per_page=1000",
		"/api/v1/articles?search=x",
	} {
		resp, _ := s.request(path)
		s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode, path)
	}
}

func (s *ServerTestSuite) TestListArticlesCached() {
	s.articles.total = 1
	s.articles.articles = []domain.StoredArticle{{ID: 1, Title: "Once"}}

	resp, _ := s.request("/api/v1/articles")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	resp, envelope := s.request("/api/v1/articles")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	// second hit is served from cache without touching storage
	s.Equal(1, s.articles.listCalls)
	var data []domain.StoredArticle
	s.Require().NoError(json.Unmarshal(envelope["data"], &data))
	s.Require().Len(data, 1)
	s.Equal("Once", data[0].Title)
}

func (s *ServerTestSuite) TestListArticlesStorageError() {
	s.articles.err = errors.New("connection refused")

	resp, _ := s.request("/api/v1/articles")
	s.Equal(fiber.StatusInternalServerError, resp.StatusCode)
}

func (s *ServerTestSuite) TestListSources() {
	resp, envelope := s.request("/api/v1/sources")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var data []domain.Source
	s.Require().NoError(json.Unmarshal(envelope["data"], &data))
	s.Equal(domain.AllSources(), data)
}

func (s *ServerTestSuite) TestListAuthors() {
	s.articles.authors = []string{"Alex Writer", "Jane Reporter"}

	resp, envelope := s.request("/api/v1/authors")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var data []string
	s.Require().NoError(json.Unmarshal(envelope["data"], &data))
	s.Equal([]string{"Alex Writer", "Jane Reporter"}, data)
}

func (s *ServerTestSuite) TestSyncStats() {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	status := domain.RunStatusCompleted
	s.stats.stats = map[domain.Source]domain.SourceStats{
		domain.SourceGuardian: {
			TotalRuns:            3,
			SuccessfulRuns:       2,
			FailedRuns:           1,
			TotalArticlesCreated: 120,
			LastSync:             &now,
			LastSyncStatus:       &status,
		},
	}

	resp, envelope := s.request("/api/v1/sync/stats")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var days int
	s.Require().NoError(json.Unmarshal(envelope["days"], &days))
	s.Equal(7, days)

	var data map[domain.Source]domain.SourceStats
	s.Require().NoError(json.Unmarshal(envelope["data"], &data))
	s.Equal(3, data[domain.SourceGuardian].TotalRuns)
	s.Equal(120, data[domain.SourceGuardian].TotalArticlesCreated)
}

func (s *ServerTestSuite) TestSyncFailures() {
	s.stats.failures = []domain.FailedSync{
		{
			Source:       domain.SourceNewsAPI,
			StartedAt:    time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
			ErrorMessage: "fetch timed out",
			SyncRunID:    7,
		},
	}

	resp, envelope := s.request("/api/v1/sync/failures?hours=48")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var hours int
	s.Require().NoError(json.Unmarshal(envelope["hours"], &hours))
	s.Equal(48, hours)

	var data []domain.FailedSync
	s.Require().NoError(json.Unmarshal(envelope["data"], &data))
	s.Require().Len(data, 1)
	s.Equal("fetch timed out", data[0].ErrorMessage)
	s.Equal(int64(7), data[0].SyncRunID)
}

func (s *ServerTestSuite) TestSyncFailuresValidation() {
	resp, _ := s.request("/api/v1/sync/failures?hours=10000")
	s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *ServerTestSuite) TestEmptyListingsSerializeAsArrays() {
	resp, envelope := s.request("/api/v1/articles")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal("[]", string(envelope["data"]))

	resp, envelope = s.request("/api/v1/authors")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal("[]", string(envelope["data"]))
}

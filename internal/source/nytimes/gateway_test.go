package nytimes

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_aggregator/internal/config"
	"news_aggregator/internal/domain"
)

const wireFixture = `{
	"status": "OK",
	"results": [
		{
			"slug_name": "28climate-summit",
			"title": "Climate Summit Opens",
			"abstract": "Delegates gather for the annual summit.",
			"url": "https://www.nytimes.com/2026/08/28/climate-summit.html",
			"byline": "BY ALEX WRITER",
			"published_date": "2026-08-28T06:30:00-04:00",
			"multimedia": [
				{"url": "https://static.nytimes.com/summit-large.jpg"},
				{"url": "https://static.nytimes.com/summit-thumb.jpg"}
			]
		},
		{
			"slug_name": "28markets-brief",
			"title": "Markets Brief",
			"abstract": null,
			"url": "https://www.nytimes.com/2026/08/28/markets-brief.html",
			"byline": null,
			"published_date": "2026-08-28T05:00:00-04:00",
			"multimedia": []
		}
	]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(baseURL string) config.GatewayConfig {
	return config.GatewayConfig{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		PageSize: 100,
		Timeout:  time.Second,
		Retry: config.RetryConfig{
			MaxAttempts: 3,
			Backoff:     time.Millisecond,
		},
	}
}

func TestFetchAndNormalize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/all.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(wireFixture))
	}))
	defer server.Close()

	gw := New(testConfig(server.URL), testLogger())
	gw.Fetch(context.Background())

	articles := gw.Normalize()
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, fingerprint("28climate-summit"), first.ExternalID)
	assert.Equal(t, "Climate Summit Opens", first.Title)
	require.NotNil(t, first.Description)
	assert.Equal(t, "Delegates gather for the annual summit.", *first.Description)
	assert.Nil(t, first.Content)
	require.NotNil(t, first.URL)
	assert.Equal(t, "https://www.nytimes.com/2026/08/28/climate-summit.html", *first.URL)
	require.NotNil(t, first.ImageURL)
	assert.Equal(t, "https://static.nytimes.com/summit-large.jpg", *first.ImageURL)
	require.NotNil(t, first.AuthorName)
	assert.Equal(t, "BY ALEX WRITER", *first.AuthorName)
	assert.Equal(t, "2026-08-28T06:30:00-04:00", first.PublishedAt)
	assert.Equal(t, domain.SourceNYTimes, first.Source)

	brief := articles[1]
	assert.Nil(t, brief.Description)
	assert.Nil(t, brief.AuthorName)
	assert.Nil(t, brief.ImageURL)
}

func TestFetchNonSuccessYieldsEmptyBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"fault":{"faultstring":"Invalid ApiKey"}}`))
	}))
	defer server.Close()

	gw := New(testConfig(server.URL), testLogger())
	gw.Fetch(context.Background())

	assert.Empty(t, gw.Normalize())
}

func TestFingerprintDeterministic(t *testing.T) {
	assert.Equal(t, fingerprint("slug-a"), fingerprint("slug-a"))
	assert.NotEqual(t, fingerprint("slug-a"), fingerprint("slug-b"))
}

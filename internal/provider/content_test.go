package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasp-news/grasp/internal/domain"
)

const contentPayload = `{
	"response": {
		"status": "ok",
		"total": 1,
		"results": [
			{
				"id": "technology/2025/jun/01/some-article",
				"sectionId": "technology",
				"sectionName": "Technology",
				"webPublicationDate": "2025-06-01T08:30:00Z",
				"webTitle": "Chips Get Smaller",
				"webUrl": "https://example.com/chips",
				"fields": {
					"bodyText": "The chips are smaller now.",
					"trailText": "A trail.",
					"byline": "A. Writer",
					"thumbnail": "https://example.com/chips.jpg"
				},
				"tags": [
					{"type": "keyword", "webTitle": "Semiconductors"}
				]
			}
		]
	}
}`

func TestContentFetchBatch(t *testing.T) {
	var gotKey, gotOrder, gotSection string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotKey = r.URL.Query().Get("api-key")
		gotOrder = r.URL.Query().Get("order-by")
		gotSection = r.URL.Query().Get("section")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(contentPayload))
	}))
	defer srv.Close()

	a := NewContentAdapter(ContentConfig{BaseURL: srv.URL, APIKey: "secret"}, nil, nil)

	drafts, err := a.FetchBatch(context.Background(), Selector{Section: "technology"})
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "newest", gotOrder)
	assert.Equal(t, "technology", gotSection)

	d := drafts[0]
	assert.Equal(t, "Chips Get Smaller", d.Title)
	assert.Equal(t, "The chips are smaller now.", d.Content)
	assert.Equal(t, "A trail.", d.Summary)
	assert.Equal(t, "The Guardian", d.SourceName)
	assert.Equal(t, "https://example.com/chips", d.SourceURL)
	assert.Equal(t, "A. Writer", d.Author)
	assert.Equal(t, domain.CategoryTechnology, d.Category)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC), d.PublishedAt)
	require.NotNil(t, d.Meta)
	assert.Equal(t, "Technology", d.Meta["section"])
}

func TestContentUnknownSectionFallsBackToGeneral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": {"status": "ok", "total": 1, "results": [
				{"sectionId": "crosswords", "webTitle": "Daily Crossword", "webUrl": "https://example.com/cw"}
			]}
		}`))
	}))
	defer srv.Close()

	a := NewContentAdapter(ContentConfig{BaseURL: srv.URL}, nil, nil)

	drafts, err := a.FetchBatch(context.Background(), Selector{})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, domain.CategoryGeneral, drafts[0].Category)
}

func TestContentServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewContentAdapter(ContentConfig{BaseURL: srv.URL}, nil, nil)

	_, err := a.FetchBatch(context.Background(), Selector{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnavailable), "expected unavailable error, got %v", err)
}

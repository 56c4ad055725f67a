package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasp-news/grasp/internal/apperr"
	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/ingest"
	"github.com/grasp-news/grasp/internal/provider"
	"github.com/grasp-news/grasp/internal/router"
	"github.com/grasp-news/grasp/internal/storage/memory"
)

type fakeAdapter struct {
	name   string
	drafts []domain.ArticleDraft
	err    error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) FetchBatch(context.Context, provider.Selector) ([]domain.ArticleDraft, error) {
	return f.drafts, f.err
}

func (f *fakeAdapter) RemainingQuota() int { return 0 }

func newIngestAPI(t *testing.T, adapters ...provider.Adapter) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	orch := ingest.NewOrchestrator(adapters, ingest.NewWriter(memory.NewStore()), nil)
	router.NewIngestRouter(e, orch).Bind()
	return e
}

func TestIngestRunAllSources(t *testing.T) {
	e := newIngestAPI(t,
		&fakeAdapter{name: "alpha", drafts: []domain.ArticleDraft{{
			Title: "a", SourceURL: "https://example.com/a", PublishedAt: time.Now().UTC(),
		}}},
		&fakeAdapter{name: "beta", err: errors.New("down")},
	)

	rec := doRequest(e, http.MethodPost, "/api/ingest/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res ingest.CycleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Stored)
	require.Len(t, res.Providers, 2)
	assert.True(t, res.Providers["alpha"].Success)
	assert.False(t, res.Providers["beta"].Success)
}

func TestIngestRunSingleSource(t *testing.T) {
	e := newIngestAPI(t,
		&fakeAdapter{name: "alpha", drafts: []domain.ArticleDraft{{
			Title: "a", SourceURL: "https://example.com/a", PublishedAt: time.Now().UTC(),
		}}},
		&fakeAdapter{name: "beta", drafts: []domain.ArticleDraft{{
			Title: "b", SourceURL: "https://example.com/b", PublishedAt: time.Now().UTC(),
		}}},
	)

	rec := doRequest(e, http.MethodPost, "/api/ingest/run?source=alpha", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res ingest.CycleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Stored)
	require.Len(t, res.Providers, 1)
}

func TestIngestRunPassesCountToProviders(t *testing.T) {
	sized := &sizedAdapter{name: "alpha"}
	e := newIngestAPI(t, sized)

	rec := doRequest(e, http.MethodPost, "/api/ingest/run?count=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, sized.gotPageSize)

	rec = doRequest(e, http.MethodPost, "/api/ingest/run?count=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/ingest/run?count=9000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type sizedAdapter struct {
	name        string
	gotPageSize int
}

func (s *sizedAdapter) Name() string { return s.name }

func (s *sizedAdapter) FetchBatch(_ context.Context, sel provider.Selector) ([]domain.ArticleDraft, error) {
	s.gotPageSize = sel.PageSize
	return nil, nil
}

func (s *sizedAdapter) RemainingQuota() int { return 0 }

func TestIngestRunRejectsUnknownSource(t *testing.T) {
	e := newIngestAPI(t, &fakeAdapter{name: "alpha"})

	rec := doRequest(e, http.MethodPost, "/api/ingest/run?source=missing", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

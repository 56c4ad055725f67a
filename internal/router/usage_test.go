package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasp-news/grasp/internal/apperr"
	"github.com/grasp-news/grasp/internal/ledger"
	"github.com/grasp-news/grasp/internal/router"
	"github.com/grasp-news/grasp/internal/storage"
	"github.com/grasp-news/grasp/internal/storage/memory"
)

func newUsageAPI(t *testing.T) (*echo.Echo, *ledger.Ledger) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	l := ledger.New(memory.NewStore())
	router.NewUsageRouter(e, l).Bind()
	return e, l
}

func TestUsageDefaultsToLastSevenDays(t *testing.T) {
	e, l := newUsageAPI(t)
	require.NoError(t, l.Record(context.Background(), "headlines", "top-headlines", 2))

	rec := doRequest(e, http.MethodGet, "/api/usage", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []storage.UsageRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "headlines", body.Data[0].Provider)
	assert.Equal(t, 2, body.Data[0].Requests)
}

func TestUsageExplicitRange(t *testing.T) {
	e, l := newUsageAPI(t)
	require.NoError(t, l.Record(context.Background(), "content", "search", 1))

	day := time.Now().UTC().Format("2006-01-02")
	rec := doRequest(e, http.MethodGet, "/api/usage?from="+day+"&to="+day, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []storage.UsageRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)

	rec = doRequest(e, http.MethodGet, "/api/usage?from=2000-01-01&to=2000-01-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var empty struct {
		Data []storage.UsageRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Empty(t, empty.Data)
}

func TestUsageRejectsBadDates(t *testing.T) {
	e, _ := newUsageAPI(t)

	rec := doRequest(e, http.MethodGet, "/api/usage?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/usage?from=2025-06-05&to=2025-06-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

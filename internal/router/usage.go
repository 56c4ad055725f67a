package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grasp-news/grasp/internal/apperr"
	"github.com/grasp-news/grasp/internal/ledger"
	"github.com/grasp-news/grasp/internal/storage"
)

const usageDateLayout = "2006-01-02"

// UsageRouter reports the per-provider request ledger.
type UsageRouter struct {
	e      *echo.Echo
	ledger *ledger.Ledger
}

func NewUsageRouter(e *echo.Echo, l *ledger.Ledger) *UsageRouter {
	return &UsageRouter{
		e:      e,
		ledger: l,
	}
}

func (r *UsageRouter) Bind() {
	r.e.GET("/api/usage", r.listHandler)
}

// listHandler godoc
// @Summary Upstream API usage
// @Description Daily request counts per provider and endpoint. Defaults to the last seven days.
// @Param from query string false "start date, YYYY-MM-DD"
// @Param to query string false "end date, YYYY-MM-DD"
// @Router /api/usage [get]
func (r *UsageRouter) listHandler(c echo.Context) error {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -7)

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse(usageDateLayout, raw)
		if err != nil {
			return apperr.NewValidationWrap("from must be formatted as YYYY-MM-DD", err)
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse(usageDateLayout, raw)
		if err != nil {
			return apperr.NewValidationWrap("to must be formatted as YYYY-MM-DD", err)
		}
		to = parsed
	}
	if to.Before(from) {
		return apperr.NewValidation("to must not be before from")
	}

	records, err := r.ledger.Range(c.Request().Context(), from, to)
	if err != nil {
		slog.Error("usage listing failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch usage")
	}
	if records == nil {
		records = []storage.UsageRecord{}
	}

	return c.JSON(http.StatusOK, map[string]any{"data": records})
}

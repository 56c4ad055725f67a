package router

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/grasp-news/grasp/internal/apperr"
	"github.com/grasp-news/grasp/internal/ingest"
)

// IngestRouter triggers fetch cycles on demand, outside the scheduled loop.
type IngestRouter struct {
	e    *echo.Echo
	orch *ingest.Orchestrator
}

func NewIngestRouter(e *echo.Echo, orch *ingest.Orchestrator) *IngestRouter {
	return &IngestRouter{
		e:    e,
		orch: orch,
	}
}

func (r *IngestRouter) Bind() {
	r.e.POST("/api/ingest/run", r.runHandler)
}

// runHandler godoc
// @Summary Run an ingestion cycle
// @Description Fetches and stores articles from all configured sources, or from a single source when the source query parameter is set.
// @Param source query string false "restrict the cycle to one source"
// @Param count query int false "articles to request per source"
// @Router /api/ingest/run [post]
func (r *IngestRouter) runHandler(c echo.Context) error {
	count := 0
	if raw := c.QueryParam("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			return apperr.NewValidation("count must be an integer between 1 and 100")
		}
		count = parsed
	}

	var only []string
	if source := c.QueryParam("source"); source != "" {
		known := r.orch.AdapterNames()
		found := false
		for _, name := range known {
			if name == source {
				found = true
				break
			}
		}
		if !found {
			return apperr.NewValidation(fmt.Sprintf("unknown source %q, expected one of: %s", source, strings.Join(known, ", ")))
		}
		only = append(only, source)
	}

	result := r.orch.RunCycleSized(c.Request().Context(), count, only...)
	return c.JSON(http.StatusOK, result)
}

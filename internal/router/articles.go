package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/grasp-news/grasp/internal/apperr"
	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/storage"
	"github.com/grasp-news/grasp/pkg/geo"
	"github.com/grasp-news/grasp/pkg/pagination"
)

// ArticlesRouter exposes the read side of the article store plus the
// enrichment write-through used by out-of-band scoring and geocoding.
type ArticlesRouter struct {
	e     *echo.Echo
	store storage.ArticleStore
}

func NewArticlesRouter(e *echo.Echo, store storage.ArticleStore) *ArticlesRouter {
	return &ArticlesRouter{
		e:     e,
		store: store,
	}
}

func (r *ArticlesRouter) Bind() {
	g := r.e.Group("/api/articles")
	g.GET("", r.listHandler)
	g.GET("/search", r.searchHandler)
	g.GET("/stats", r.statsHandler)
	g.GET("/map", r.mapHandler)
	g.GET("/:id", r.getHandler)
	g.PATCH("/:id", r.patchHandler)
}

// listHandler godoc
// @Summary List articles
// @Description Paged article listing, newest first, optionally filtered by category and country code.
// @Param category query string false "category filter"
// @Param country_code query string false "country code filter"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} pagination.OffsetResult[domain.Article]
// @Router /api/articles [get]
func (r *ArticlesRouter) listHandler(c echo.Context) error {
	var page pagination.OffsetRequest
	if err := c.Bind(&page); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	_ = page.Validate()

	var filter storage.ListFilter
	if cat := c.QueryParam("category"); cat != "" {
		parsed := domain.Category(cat)
		if !parsed.Valid() {
			return apperr.NewValidation(fmt.Sprintf("unknown category %q", cat))
		}
		filter.Category = parsed
	}
	filter.CountryCode = c.QueryParam("country_code")

	articles, total, err := r.store.List(c.Request().Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("article list failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"data": []domain.Article{}, "count": 0, "error": "failed to fetch articles",
		})
	}

	return c.JSON(http.StatusOK, pagination.NewOffsetResult(articles, total, page.Limit, page.Offset))
}

// searchHandler godoc
// @Summary Search articles
// @Description Case-insensitive substring match against title, summary and content.
// @Param q query string true "search text"
// @Router /api/articles/search [get]
func (r *ArticlesRouter) searchHandler(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return apperr.NewValidation("q parameter is required")
	}

	var page pagination.OffsetRequest
	if err := c.Bind(&page); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	_ = page.Validate()

	articles, err := r.store.Search(c.Request().Context(), query, page.Limit, page.Offset)
	if err != nil {
		slog.Error("article search failed", "query", query, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"data": []domain.Article{}, "error": "failed to search articles",
		})
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	return c.JSON(http.StatusOK, map[string]any{"data": articles})
}

func (r *ArticlesRouter) statsHandler(c echo.Context) error {
	stats, err := r.store.Stats(c.Request().Context())
	if err != nil {
		slog.Error("article stats failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// mapHandler returns geolocated articles, optionally narrowed to a radius
// around a point.
func (r *ArticlesRouter) mapHandler(c echo.Context) error {
	articles, err := r.store.ListLocated(c.Request().Context())
	if err != nil {
		slog.Error("map listing failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"data": []domain.Article{}, "error": "failed to fetch map data",
		})
	}

	latStr, lonStr, radiusStr := c.QueryParam("lat"), c.QueryParam("lon"), c.QueryParam("radius_km")
	if latStr != "" && lonStr != "" && radiusStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		radius, errRad := strconv.ParseFloat(radiusStr, 64)
		if errLat != nil || errLon != nil || errRad != nil || radius <= 0 {
			return apperr.NewValidation("lat, lon and radius_km must be numbers with radius_km > 0")
		}

		var nearby []domain.Article
		for _, a := range articles {
			if geo.Distance(lat, lon, *a.Latitude, *a.Longitude) <= radius {
				nearby = append(nearby, a)
			}
		}
		articles = nearby
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	return c.JSON(http.StatusOK, map[string]any{"data": articles})
}

func (r *ArticlesRouter) getHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewValidationWrap("invalid article id", err)
	}

	article, err := r.store.GetByID(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound("article not found")
	}
	if err != nil {
		slog.Error("article get failed", "id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch article")
	}

	return c.JSON(http.StatusOK, article)
}

type articlePatchRequest struct {
	Category        *string  `json:"category"`
	CountryCode     *string  `json:"country_code"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	SentimentScore  *float64 `json:"sentiment_score"`
	ImportanceScore *float64 `json:"importance_score"`
}

// patchHandler applies a partial enrichment update to one article.
func (r *ArticlesRouter) patchHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewValidationWrap("invalid article id", err)
	}

	var req articlePatchRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid patch body", err)
	}

	patch := storage.ArticlePatch{
		CountryCode:     req.CountryCode,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		SentimentScore:  req.SentimentScore,
		ImportanceScore: req.ImportanceScore,
	}
	if req.Category != nil {
		parsed := domain.Category(*req.Category)
		if !parsed.Valid() {
			return apperr.NewValidation(fmt.Sprintf("unknown category %q", *req.Category))
		}
		patch.Category = &parsed
	}
	if req.SentimentScore != nil && (*req.SentimentScore < -1 || *req.SentimentScore > 1) {
		return apperr.NewValidation("sentiment_score must be between -1 and 1")
	}
	if patch.Empty() {
		return apperr.NewValidation("patch body contains no updatable fields")
	}

	article, err := r.store.UpdateByID(c.Request().Context(), id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound("article not found")
	}
	if err != nil {
		slog.Error("article update failed", "id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update article")
	}

	return c.JSON(http.StatusOK, article)
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/grasp-news/grasp/internal/domain"
)

const (
	HeadlinesName = "headlines"

	defaultHeadlinesBaseURL = "https://newsapi.org/v2"
	defaultHeadlinesLimit   = 100
	defaultUpstreamTimeout  = 10 * time.Second
	defaultPageSize         = 20
)

type HeadlinesConfig struct {
	BaseURL    string
	APIKey     string
	Country    string
	DailyLimit int
	Timeout    time.Duration
}

// HeadlinesAdapter fetches top headlines from the headlines provider. Auth is
// a static key sent in the X-Api-Key header; the provider supplies no
// category information, so drafts leave Category empty.
type HeadlinesAdapter struct {
	client   *resty.Client
	counter  *RateCounter
	recorder Recorder
	country  string
}

func NewHeadlinesAdapter(cfg HeadlinesConfig, rec Recorder) *HeadlinesAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultHeadlinesBaseURL
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = defaultHeadlinesLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultUpstreamTimeout
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if rec == nil {
		rec = NopRecorder()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Api-Key", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &HeadlinesAdapter{
		client:   client,
		counter:  NewDailyCounter(cfg.DailyLimit),
		recorder: rec,
		country:  cfg.Country,
	}
}

func (a *HeadlinesAdapter) Name() string { return HeadlinesName }

func (a *HeadlinesAdapter) RemainingQuota() int { return a.counter.Remaining() }

func (a *HeadlinesAdapter) FetchBatch(ctx context.Context, sel Selector) ([]domain.ArticleDraft, error) {
	if err := a.counter.Acquire(); err != nil {
		return nil, NewRateLimitedError(HeadlinesName, err)
	}
	recordUsage(ctx, a.recorder, HeadlinesName, "top-headlines")

	pageSize := sel.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	country := sel.Country
	if country == "" {
		country = a.country
	}

	req := a.client.R().
		SetContext(ctx).
		SetQueryParam("country", country).
		SetQueryParam("pageSize", strconv.Itoa(pageSize))
	if sel.Category != "" {
		req.SetQueryParam("category", string(sel.Category))
	}
	if sel.Query != "" {
		req.SetQueryParam("q", sel.Query)
	}
	if sel.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(sel.Page))
	}

	resp, err := req.Get("/top-headlines")
	if err != nil {
		return nil, NewUnavailableError(HeadlinesName, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, classifyStatus(HeadlinesName, resp.StatusCode(), resp.String())
	}

	var payload headlinesResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, NewUnavailableError(HeadlinesName, fmt.Errorf("failed to decode response: %w", err))
	}

	drafts := make([]domain.ArticleDraft, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		drafts = append(drafts, normalizeHeadline(item))
	}
	slog.Debug("headlines batch fetched", "count", len(drafts), "total_available", payload.TotalResults)
	return drafts, nil
}

type headlinesResponse struct {
	Status       string         `json:"status"`
	TotalResults int            `json:"totalResults"`
	Articles     []headlineItem `json:"articles"`
}

type headlineItem struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// normalizeHeadline never fails; fields that cannot be populated are dropped.
func normalizeHeadline(item headlineItem) domain.ArticleDraft {
	title := item.Title
	if title == "" {
		title = domain.DefaultTitle
	}
	content := item.Content
	if content == "" {
		content = item.Description
	}
	sourceName := item.Source.Name
	if sourceName == "" {
		sourceName = "Unknown"
	}

	publishedAt := time.Now().UTC()
	if item.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			publishedAt = t
		}
	}

	return domain.ArticleDraft{
		Title:       title,
		Content:     content,
		Summary:     item.Description,
		SourceName:  sourceName,
		SourceURL:   item.URL,
		Author:      item.Author,
		PublishedAt: publishedAt,
		ImageURL:    item.URLToImage,
	}
}

func recordUsage(ctx context.Context, rec Recorder, provider, endpoint string) {
	if err := rec.Record(ctx, provider, endpoint, 1); err != nil {
		slog.Warn("usage record failed", "provider", provider, "endpoint", endpoint, "error", err)
	}
}

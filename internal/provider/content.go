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
	ContentName = "content"

	defaultContentBaseURL    = "https://content.guardianapis.com"
	defaultContentLimit      = 5000
	defaultContentSourceName = "The Guardian"
)

type ContentConfig struct {
	BaseURL    string
	APIKey     string
	SourceName string
	DailyLimit int
	Timeout    time.Duration
}

// ContentAdapter fetches full articles from the content provider. Auth is a
// static key passed as the api-key query parameter; sections map onto
// canonical categories through a configured table.
type ContentAdapter struct {
	client     *resty.Client
	counter    *RateCounter
	recorder   Recorder
	sections   CategoryMap
	sourceName string
}

func NewContentAdapter(cfg ContentConfig, sections CategoryMap, rec Recorder) *ContentAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultContentBaseURL
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = defaultContentLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultUpstreamTimeout
	}
	if cfg.SourceName == "" {
		cfg.SourceName = defaultContentSourceName
	}
	if sections == nil {
		sections = DefaultContentSections()
	}
	if rec == nil {
		rec = NopRecorder()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetQueryParam("api-key", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &ContentAdapter{
		client:     client,
		counter:    NewDailyCounter(cfg.DailyLimit),
		recorder:   rec,
		sections:   sections,
		sourceName: cfg.SourceName,
	}
}

func (a *ContentAdapter) Name() string { return ContentName }

func (a *ContentAdapter) RemainingQuota() int { return a.counter.Remaining() }

func (a *ContentAdapter) FetchBatch(ctx context.Context, sel Selector) ([]domain.ArticleDraft, error) {
	if err := a.counter.Acquire(); err != nil {
		return nil, NewRateLimitedError(ContentName, err)
	}
	recordUsage(ctx, a.recorder, ContentName, "search")

	pageSize := sel.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	req := a.client.R().
		SetContext(ctx).
		SetQueryParam("order-by", "newest").
		SetQueryParam("show-fields", "all").
		SetQueryParam("show-tags", "all").
		SetQueryParam("page-size", strconv.Itoa(pageSize))
	if sel.Query != "" {
		req.SetQueryParam("q", sel.Query)
	}
	if sel.Section != "" {
		req.SetQueryParam("section", sel.Section)
	}
	if sel.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(sel.Page))
	}
	if !sel.From.IsZero() {
		req.SetQueryParam("from-date", sel.From.Format("2006-01-02"))
	}
	if !sel.To.IsZero() {
		req.SetQueryParam("to-date", sel.To.Format("2006-01-02"))
	}

	resp, err := req.Get("/search")
	if err != nil {
		return nil, NewUnavailableError(ContentName, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, classifyStatus(ContentName, resp.StatusCode(), resp.String())
	}

	var payload contentResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, NewUnavailableError(ContentName, fmt.Errorf("failed to decode response: %w", err))
	}

	drafts := make([]domain.ArticleDraft, 0, len(payload.Response.Results))
	for _, item := range payload.Response.Results {
		drafts = append(drafts, a.normalizeContent(item))
	}
	slog.Debug("content batch fetched", "count", len(drafts), "total_available", payload.Response.Total)
	return drafts, nil
}

type contentResponse struct {
	Response struct {
		Status  string        `json:"status"`
		Total   int           `json:"total"`
		Results []contentItem `json:"results"`
	} `json:"response"`
}

type contentItem struct {
	ID                 string `json:"id"`
	SectionID          string `json:"sectionId"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	Fields             struct {
		Body       string `json:"body"`
		BodyText   string `json:"bodyText"`
		TrailText  string `json:"trailText"`
		Standfirst string `json:"standfirst"`
		Byline     string `json:"byline"`
		Thumbnail  string `json:"thumbnail"`
	} `json:"fields"`
	Tags []struct {
		Type     string `json:"type"`
		WebTitle string `json:"webTitle"`
	} `json:"tags"`
}

func (a *ContentAdapter) normalizeContent(item contentItem) domain.ArticleDraft {
	title := item.WebTitle
	if title == "" {
		title = domain.DefaultTitle
	}
	content := item.Fields.Body
	if content == "" {
		content = item.Fields.BodyText
	}
	summary := item.Fields.TrailText
	if summary == "" {
		summary = item.Fields.Standfirst
	}

	publishedAt := time.Now().UTC()
	if item.WebPublicationDate != "" {
		if t, err := time.Parse(time.RFC3339, item.WebPublicationDate); err == nil {
			publishedAt = t
		}
	}

	var meta map[string]any
	if len(item.Tags) > 0 {
		tags := make([]string, 0, len(item.Tags))
		for _, tag := range item.Tags {
			tags = append(tags, tag.WebTitle)
		}
		meta = map[string]any{
			"section": item.SectionName,
			"tags":    tags,
		}
	}

	return domain.ArticleDraft{
		Title:       title,
		Content:     content,
		Summary:     summary,
		SourceName:  a.sourceName,
		SourceURL:   item.WebURL,
		Author:      item.Fields.Byline,
		PublishedAt: publishedAt,
		ImageURL:    item.Fields.Thumbnail,
		Category:    a.sections.Resolve(item.SectionID),
		Meta:        meta,
	}
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/grasp-news/grasp/internal/domain"
)

const (
	LinksName = "links"

	defaultLinksBaseURL   = "https://oauth.reddit.com"
	defaultLinksAuthURL   = "https://www.reddit.com/api/v1/access_token"
	defaultLinksLimit     = 60
	defaultLinksUserAgent = "script:com.grasp.news:v1.0.0"

	// tokenExpirySlack renews the bearer token this long before the
	// upstream expiry to avoid racing it on an in-flight call.
	tokenExpirySlack = 5 * time.Minute
)

// defaultLinkSubreddits is the news-oriented community set fetched when the
// selector names none.
var defaultLinkSubreddits = []string{
	"worldnews", "news", "politics", "technology", "science", "business", "economics",
}

var imageURLPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

type LinksConfig struct {
	BaseURL        string
	AuthURL        string
	ClientID       string
	ClientSecret   string
	Username       string
	Password       string
	UserAgent      string
	PerMinuteLimit int
	Subreddits     []string
	Timeout        time.Duration
}

// LinksAdapter fetches link posts from the social-link provider. Auth is an
// OAuth2 password-grant bearer token cached until near expiry and dropped on
// a 401; the request budget is a rolling 60-second window rather than a
// daily quota.
type LinksAdapter struct {
	client     *resty.Client
	authClient *resty.Client
	authURL    string
	cfg        LinksConfig
	counter    *RateCounter
	recorder   Recorder
	subreddits CategoryMap

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

func NewLinksAdapter(cfg LinksConfig, subreddits CategoryMap, rec Recorder) *LinksAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLinksBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultLinksAuthURL
	}
	if cfg.PerMinuteLimit <= 0 {
		cfg.PerMinuteLimit = defaultLinksLimit
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultLinksUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultUpstreamTimeout
	}
	if len(cfg.Subreddits) == 0 {
		cfg.Subreddits = defaultLinkSubreddits
	}
	if subreddits == nil {
		subreddits = DefaultLinkSubreddits()
	}
	if rec == nil {
		rec = NopRecorder()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)
	authClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &LinksAdapter{
		client:     client,
		authClient: authClient,
		authURL:    cfg.AuthURL,
		cfg:        cfg,
		counter:    NewRollingCounter(cfg.PerMinuteLimit, time.Minute),
		recorder:   rec,
		subreddits: subreddits,
		now:        time.Now,
	}
}

func (a *LinksAdapter) Name() string { return LinksName }

func (a *LinksAdapter) RemainingQuota() int { return a.counter.Remaining() }

func (a *LinksAdapter) FetchBatch(ctx context.Context, sel Selector) ([]domain.ArticleDraft, error) {
	if err := a.counter.Acquire(); err != nil {
		return nil, NewRateLimitedError(LinksName, err)
	}
	recordUsage(ctx, a.recorder, LinksName, "hot")

	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	subs := sel.Subreddits
	if len(subs) == 0 {
		subs = a.cfg.Subreddits
	}
	limit := sel.PageSize
	if limit <= 0 {
		limit = 25
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/r/" + strings.Join(subs, "+") + "/hot")
	if err != nil {
		return nil, NewUnavailableError(LinksName, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		a.invalidateToken()
		return nil, NewAuthError(LinksName, errors.New("bearer token rejected"))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, classifyStatus(LinksName, resp.StatusCode(), resp.String())
	}

	var payload linkListing
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, NewUnavailableError(LinksName, fmt.Errorf("failed to decode response: %w", err))
	}

	drafts := make([]domain.ArticleDraft, 0, len(payload.Data.Children))
	for _, post := range payload.Data.Children {
		drafts = append(drafts, a.normalizePost(post.Data))
	}
	slog.Debug("links batch fetched", "count", len(drafts), "subreddits", strings.Join(subs, "+"))
	return drafts, nil
}

// accessToken returns the cached bearer token, performing the password-grant
// exchange when the cache is empty or near expiry.
func (a *LinksAdapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	if a.cfg.Username == "" || a.cfg.Password == "" {
		return "", NewAuthError(LinksName, errors.New("username and password are required for the password grant"))
	}

	resp, err := a.authClient.R().
		SetContext(ctx).
		SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   a.cfg.Username,
			"password":   a.cfg.Password,
		}).
		Post(a.authURL)
	if err != nil {
		return "", NewUnavailableError(LinksName, fmt.Errorf("token exchange failed: %w", err))
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return "", NewAuthError(LinksName, errors.New("credentials rejected by token endpoint"))
	}
	if resp.StatusCode() != http.StatusOK {
		return "", classifyStatus(LinksName, resp.StatusCode(), resp.String())
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return "", NewUnavailableError(LinksName, fmt.Errorf("failed to decode token response: %w", err))
	}
	if tokenResp.AccessToken == "" {
		return "", NewAuthError(LinksName, errors.New("token endpoint returned no access token"))
	}

	a.token = tokenResp.AccessToken
	a.tokenExpiry = a.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpirySlack)
	return a.token, nil
}

func (a *LinksAdapter) invalidateToken() {
	a.mu.Lock()
	a.token = ""
	a.tokenExpiry = time.Time{}
	a.mu.Unlock()
}

type linkListing struct {
	Data struct {
		Children []linkPost `json:"children"`
		After    string     `json:"after"`
	} `json:"data"`
}

type linkPost struct {
	Data linkPostData `json:"data"`
}

type linkPostData struct {
	Title               string  `json:"title"`
	Selftext            string  `json:"selftext"`
	URL                 string  `json:"url"`
	Subreddit           string  `json:"subreddit"`
	Permalink           string  `json:"permalink"`
	Author              string  `json:"author"`
	CreatedUTC          float64 `json:"created_utc"`
	Score               int     `json:"score"`
	UpvoteRatio         float64 `json:"upvote_ratio"`
	NumComments         int     `json:"num_comments"`
	IsVideo             bool    `json:"is_video"`
	TotalAwardsReceived int     `json:"total_awards_received"`
	LinkFlairText       string  `json:"link_flair_text"`
	Thumbnail           string  `json:"thumbnail"`
	GalleryData         *struct {
		Items []struct {
			MediaID string `json:"media_id"`
		} `json:"items"`
	} `json:"gallery_data"`
	MediaMetadata map[string]struct {
		S struct {
			U string `json:"u"`
		} `json:"s"`
	} `json:"media_metadata"`
	Preview *struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

func (a *LinksAdapter) normalizePost(data linkPostData) domain.ArticleDraft {
	title := data.Title
	if title == "" {
		title = domain.DefaultTitle
	}
	content := data.Selftext
	if content == "" {
		content = data.URL
	}
	summary := ""
	if data.Selftext != "" {
		summary = data.Selftext
		if len(summary) > 200 {
			summary = summary[:200] + "..."
		}
	}
	author := data.Author
	if author == "" {
		author = "[deleted]"
	}

	return domain.ArticleDraft{
		Title:       title,
		Content:     content,
		Summary:     summary,
		SourceName:  "Reddit - r/" + data.Subreddit,
		SourceURL:   "https://reddit.com" + data.Permalink,
		Author:      author,
		PublishedAt: time.Unix(int64(data.CreatedUTC), 0).UTC(),
		ImageURL:    extractImageURL(data),
		Category:    a.subreddits.Resolve(data.Subreddit),
		Meta: map[string]any{
			"subreddit":    data.Subreddit,
			"score":        data.Score,
			"upvote_ratio": data.UpvoteRatio,
			"num_comments": data.NumComments,
			"is_video":     data.IsVideo,
			"awards":       data.TotalAwardsReceived,
			"flair":        data.LinkFlairText,
		},
	}
}

// extractImageURL tries, in preference order: direct image link, first
// gallery item, preview source, thumbnail. Returns empty when nothing usable
// is present.
func extractImageURL(data linkPostData) string {
	if data.URL != "" && imageURLPattern.MatchString(data.URL) {
		return data.URL
	}

	if data.GalleryData != nil && len(data.GalleryData.Items) > 0 && data.MediaMetadata != nil {
		first := data.GalleryData.Items[0]
		if media, ok := data.MediaMetadata[first.MediaID]; ok && media.S.U != "" {
			return strings.ReplaceAll(media.S.U, "&amp;", "&")
		}
	}

	if data.Preview != nil && len(data.Preview.Images) > 0 && data.Preview.Images[0].Source.URL != "" {
		return strings.ReplaceAll(data.Preview.Images[0].Source.URL, "&amp;", "&")
	}

	if data.Thumbnail != "" && data.Thumbnail != "self" && data.Thumbnail != "default" {
		return data.Thumbnail
	}
	return ""
}

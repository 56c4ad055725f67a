package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/grasp-news/grasp/internal/domain"
)

// ErrNotFound is returned by lookups and updates that match no row.
var ErrNotFound = errors.New("not found")

// InsertOutcome tags the per-row result of a batch insert. A row that lost a
// unique-key race is reported as DuplicateKey, never as an error; the
// source_url unique constraint is the final dedup authority.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	DuplicateKey
)

// InsertResult is the tagged outcome for one draft in InsertBatch. Article is
// populated only when Outcome is Inserted.
type InsertResult struct {
	Outcome InsertOutcome
	Article domain.Article
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Category    domain.Category
	CountryCode string
}

// ArticlePatch carries a partial update for one article. Nil fields are left
// untouched.
type ArticlePatch struct {
	Category        *domain.Category
	CountryCode     *string
	Latitude        *float64
	Longitude       *float64
	SentimentScore  *float64
	ImportanceScore *float64
}

func (p ArticlePatch) Empty() bool {
	return p.Category == nil && p.CountryCode == nil && p.Latitude == nil &&
		p.Longitude == nil && p.SentimentScore == nil && p.ImportanceScore == nil
}

// ArticleStats summarizes the persisted article set.
type ArticleStats struct {
	Total      int64                     `json:"total"`
	Recent     int64                     `json:"recent"`
	ByCategory map[domain.Category]int64 `json:"by_category"`
}

// ArticleStore is the persistence boundary for articles. Implementations must
// enforce a unique constraint on source_url; InsertBatch is transactional per
// call (all rows or none on transport failure).
type ArticleStore interface {
	// FindByURLs returns the subset of urls that already exist in the store
	// as one set-membership lookup.
	FindByURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
	// InsertBatch persists the given drafts, tagging each row Inserted or
	// DuplicateKey. A returned error means no row was persisted.
	InsertBatch(ctx context.Context, drafts []domain.ArticleDraft) ([]InsertResult, error)
	// UpdateByID applies a partial update and returns the updated article,
	// or ErrNotFound.
	UpdateByID(ctx context.Context, id uuid.UUID, patch ArticlePatch) (domain.Article, error)
	// GetByID returns one article or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Article, error)
	// List returns a page ordered by published_at descending (insertion
	// order breaking ties) plus the exact total count for the filter.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]domain.Article, int64, error)
	// Search matches the query case-insensitively as a substring of title,
	// summary or content, same ordering as List.
	Search(ctx context.Context, query string, limit, offset int) ([]domain.Article, error)
	// ListLocated returns articles that carry a geocoordinate.
	ListLocated(ctx context.Context) ([]domain.Article, error)
	Stats(ctx context.Context) (ArticleStats, error)
}

// UsageRecord is one (provider, endpoint, day) request counter.
type UsageRecord struct {
	Provider string    `json:"provider"`
	Endpoint string    `json:"endpoint"`
	Day      time.Time `json:"day"`
	Requests int       `json:"requests"`
}

// UsageStore persists per-provider, per-endpoint, per-day request counts.
type UsageStore interface {
	// Upsert atomically adds delta to the (provider, endpoint, day) counter,
	// creating it when absent. Concurrent upserts to the same triple must
	// not lose updates.
	Upsert(ctx context.Context, provider, endpoint string, day time.Time, delta int) error
	// ListRange returns records with from <= day <= to, newest first.
	ListRange(ctx context.Context, from, to time.Time) ([]UsageRecord, error)
}

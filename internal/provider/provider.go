package provider

import (
	"context"
	"time"

	"github.com/grasp-news/grasp/internal/domain"
)

// Selector narrows what a FetchBatch call asks the upstream for. Each
// adapter reads the fields that make sense for its provider and ignores the
// rest.
type Selector struct {
	Country    string
	Category   domain.Category
	Query      string
	Section    string
	Subreddits []string
	PageSize   int
	Page       int
	From       time.Time
	To         time.Time
}

// Adapter talks to exactly one upstream content source and yields normalized
// article drafts. Implementations keep their rate counter and any cached
// auth token as instance state; nothing is shared between adapters.
type Adapter interface {
	Name() string
	// FetchBatch performs one upstream call, counting it against the local
	// rate counter whether or not it succeeds. Failures are *UpstreamError.
	FetchBatch(ctx context.Context, sel Selector) ([]domain.ArticleDraft, error)
	// RemainingQuota is a local, non-authoritative estimate for
	// observability; it never overrides a live upstream rejection.
	RemainingQuota() int
}

// Recorder receives one usage-ledger increment per attempted upstream call.
// Adapters treat recording failures as non-fatal.
type Recorder interface {
	Record(ctx context.Context, provider, endpoint string, delta int) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string, int) error { return nil }

// NopRecorder discards usage records; used when no ledger is configured.
func NopRecorder() Recorder { return nopRecorder{} }

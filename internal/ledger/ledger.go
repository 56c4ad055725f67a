package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/grasp-news/grasp/internal/storage"
)

// Ledger is the durable per-provider, per-endpoint, per-day call counter.
// It exists for quota observability and post-hoc auditing; real-time
// enforcement stays with each adapter's local rate counter.
type Ledger struct {
	store storage.UsageStore
	now   func() time.Time
}

func New(store storage.UsageStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Record adds delta to today's counter for (provider, endpoint), creating it
// when absent. The store's unique-constraint upsert makes concurrent calls
// to the same triple safe.
func (l *Ledger) Record(ctx context.Context, provider, endpoint string, delta int) error {
	if delta <= 0 {
		delta = 1
	}
	day := l.now().UTC().Truncate(24 * time.Hour)
	if err := l.store.Upsert(ctx, provider, endpoint, day, delta); err != nil {
		return fmt.Errorf("failed to record usage for %s/%s: %w", provider, endpoint, err)
	}
	return nil
}

// Range lists usage records with from <= day <= to, newest first.
func (l *Ledger) Range(ctx context.Context, from, to time.Time) ([]storage.UsageRecord, error) {
	records, err := l.store.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	return records, nil
}

package ingest

import (
	"context"
	"log/slog"

	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/storage"
)

// BatchResult summarizes one StoreBatch call.
type BatchResult struct {
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Writer turns a batch of drafts into newly persisted articles, exactly once
// per distinct source URL. The membership pre-check is an optimization; the
// store's unique constraint stays the final authority, so overlapping cycles
// resolve races to duplicates instead of errors.
type Writer struct {
	store storage.ArticleStore
}

func NewWriter(store storage.ArticleStore) *Writer {
	return &Writer{store: store}
}

// StoreBatch deduplicates and persists drafts. Drafts without a source URL
// count as per-item errors without aborting the batch; within one batch the
// first occurrence of a URL wins and later ones count as duplicates. A
// failed insert call costs the whole call: stored 0, errors = batch size.
func (w *Writer) StoreBatch(ctx context.Context, drafts []domain.ArticleDraft) BatchResult {
	var res BatchResult
	if len(drafts) == 0 {
		return res
	}

	seen := make(map[string]struct{}, len(drafts))
	candidates := make([]domain.ArticleDraft, 0, len(drafts))
	urls := make([]string, 0, len(drafts))
	for _, d := range drafts {
		if d.SourceURL == "" {
			res.Errors++
			continue
		}
		if _, dup := seen[d.SourceURL]; dup {
			res.Duplicates++
			continue
		}
		seen[d.SourceURL] = struct{}{}
		candidates = append(candidates, d)
		urls = append(urls, d.SourceURL)
	}
	if len(candidates) == 0 {
		return res
	}

	existing, err := w.store.FindByURLs(ctx, urls)
	if err != nil {
		// Proceed with an empty set; the insert's conflict handling
		// still keeps duplicates out.
		slog.Error("existing-url lookup failed, relying on unique constraint", "error", err)
		existing = map[string]struct{}{}
	}

	fresh := candidates[:0]
	for _, d := range candidates {
		if _, ok := existing[d.SourceURL]; ok {
			res.Duplicates++
			continue
		}
		fresh = append(fresh, d)
	}
	if len(fresh) == 0 {
		return res
	}

	results, err := w.store.InsertBatch(ctx, fresh)
	if err != nil {
		slog.Error("batch insert failed", "count", len(fresh), "error", err)
		res.Errors += len(fresh)
		return res
	}
	for _, r := range results {
		switch r.Outcome {
		case storage.Inserted:
			res.Stored++
		case storage.DuplicateKey:
			res.Duplicates++
		}
	}

	slog.Info("batch stored", "stored", res.Stored, "duplicates", res.Duplicates, "errors", res.Errors)
	return res
}

package ingest_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/ingest"
	"github.com/grasp-news/grasp/internal/storage"
	"github.com/grasp-news/grasp/internal/storage/memory"
)

func draft(url string) domain.ArticleDraft {
	return domain.ArticleDraft{
		Title:       "Title for " + url,
		SourceName:  "Test Source",
		SourceURL:   url,
		PublishedAt: time.Now().UTC(),
	}
}

func TestStoreBatchStoresFreshDrafts(t *testing.T) {
	store := memory.NewStore()
	w := ingest.NewWriter(store)

	res := w.StoreBatch(context.Background(), []domain.ArticleDraft{
		draft("https://example.com/a"),
		draft("https://example.com/b"),
	})

	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 0, res.Duplicates)
	assert.Equal(t, 0, res.Errors)

	articles, total, err := store.List(context.Background(), storage.ListFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, articles, 2)
}

func TestStoreBatchIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	w := ingest.NewWriter(store)
	batch := []domain.ArticleDraft{draft("https://example.com/a")}

	first := w.StoreBatch(context.Background(), batch)
	second := w.StoreBatch(context.Background(), batch)

	assert.Equal(t, 1, first.Stored)
	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 1, second.Duplicates)
}

func TestStoreBatchDeduplicatesWithinBatch(t *testing.T) {
	store := memory.NewStore()
	w := ingest.NewWriter(store)

	res := w.StoreBatch(context.Background(), []domain.ArticleDraft{
		draft("https://example.com/a"),
		draft("https://example.com/a"),
		draft("https://example.com/a"),
	})

	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, 2, res.Duplicates)
}

func TestStoreBatchCountsMissingURLsAsErrors(t *testing.T) {
	store := memory.NewStore()
	w := ingest.NewWriter(store)

	res := w.StoreBatch(context.Background(), []domain.ArticleDraft{
		draft("https://example.com/a"),
		{Title: "no url"},
	})

	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, 1, res.Errors)
}

func TestStoreBatchEmptyInput(t *testing.T) {
	w := ingest.NewWriter(memory.NewStore())

	res := w.StoreBatch(context.Background(), nil)
	assert.Equal(t, ingest.BatchResult{}, res)
}

func TestStoreBatchConcurrentCyclesResolveToDuplicates(t *testing.T) {
	store := memory.NewStore()
	batch := make([]domain.ArticleDraft, 0, 20)
	for i := 0; i < 20; i++ {
		batch = append(batch, draft(fmt.Sprintf("https://example.com/%d", i)))
	}

	results := make(chan ingest.BatchResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- ingest.NewWriter(store).StoreBatch(context.Background(), batch)
		}()
	}

	total := ingest.BatchResult{}
	for i := 0; i < 2; i++ {
		r := <-results
		total.Stored += r.Stored
		total.Duplicates += r.Duplicates
		total.Errors += r.Errors
	}

	assert.Equal(t, 20, total.Stored, "each URL stored exactly once")
	assert.Equal(t, 20, total.Duplicates)
	assert.Equal(t, 0, total.Errors)
}

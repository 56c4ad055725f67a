package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/storage"
	"github.com/grasp-news/grasp/internal/storage/pg"
	pkgtesting "github.com/grasp-news/grasp/pkg/testing"
)

func setupStores(t *testing.T) (*pg.ArticleStore, *pg.UsageStore) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container := pkgtesting.NewPGContainerWithCleanup(ctx, t)

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: container.ConnString})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pg.NewArticleStore(pool), pg.NewUsageStore(pool)
}

func TestArticleStoreRoundTrip(t *testing.T) {
	articles, usage := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	lat, lon := 51.5, -0.12
	results, err := articles.InsertBatch(ctx, []domain.ArticleDraft{
		{
			Title:       "First",
			Content:     "Body one",
			Summary:     "Sum one",
			SourceName:  "Test",
			SourceURL:   "https://example.com/1",
			PublishedAt: now,
			Category:    domain.CategoryTechnology,
			CountryCode: "gb",
			Latitude:    &lat,
			Longitude:   &lon,
			Meta:        map[string]any{"k": "v"},
		},
		{
			Title:       "Second",
			SourceName:  "Test",
			SourceURL:   "https://example.com/2",
			PublishedAt: now.Add(-time.Hour),
			Category:    domain.CategorySports,
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Equal(t, storage.Inserted, r.Outcome)
		assert.NotEqual(t, uuid.Nil, r.Article.ID)
	}

	// Same URL again must surface as a duplicate, not an error.
	dup, err := articles.InsertBatch(ctx, []domain.ArticleDraft{
		{Title: "First again", SourceName: "Test", SourceURL: "https://example.com/1", PublishedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, dup, 1)
	assert.Equal(t, storage.DuplicateKey, dup[0].Outcome)

	existing, err := articles.FindByURLs(ctx, []string{"https://example.com/1", "https://example.com/404"})
	require.NoError(t, err)
	assert.Contains(t, existing, "https://example.com/1")
	assert.NotContains(t, existing, "https://example.com/404")

	list, total, err := articles.List(ctx, storage.ListFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Title, "newest first")

	filtered, total, err := articles.List(ctx, storage.ListFilter{Category: domain.CategorySports}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Second", filtered[0].Title)

	got, err := articles.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Body one", got.Content)
	assert.Equal(t, "gb", got.CountryCode)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, 51.5, *got.Latitude, 1e-9)
	assert.Equal(t, "v", got.Meta["k"])

	found, err := articles.Search(ctx, "body ONE", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "First", found[0].Title)

	located, err := articles.ListLocated(ctx)
	require.NoError(t, err)
	require.Len(t, located, 1)
	assert.Equal(t, "First", located[0].Title)

	cat := domain.CategoryScience
	score := 0.7
	updated, err := articles.UpdateByID(ctx, list[1].ID, storage.ArticlePatch{
		Category:       &cat,
		SentimentScore: &score,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryScience, updated.Category)
	require.NotNil(t, updated.SentimentScore)
	assert.InDelta(t, 0.7, *updated.SentimentScore, 1e-9)

	stats, err := articles.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, usage.Upsert(ctx, "headlines", "top-headlines", day, 1))
	require.NoError(t, usage.Upsert(ctx, "headlines", "top-headlines", day, 4))

	records, err := usage.ListRange(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Requests)
}

func TestGetByIDMissingRowMapsToNotFound(t *testing.T) {
	articles, _ := setupStores(t)

	_, err := articles.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/storage"
	"github.com/grasp-news/grasp/internal/storage/memory"
)

func seed(t *testing.T, s *memory.Store, drafts ...domain.ArticleDraft) []domain.Article {
	t.Helper()

	results, err := s.InsertBatch(context.Background(), drafts)
	require.NoError(t, err)

	articles := make([]domain.Article, 0, len(results))
	for _, r := range results {
		require.Equal(t, storage.Inserted, r.Outcome)
		articles = append(articles, r.Article)
	}
	return articles
}

func TestInsertBatchRejectsDuplicateURL(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	first, err := s.InsertBatch(ctx, []domain.ArticleDraft{
		{Title: "A", SourceURL: "https://example.com/a", PublishedAt: time.Now().UTC()},
	})
	require.NoError(t, err)
	require.Equal(t, storage.Inserted, first[0].Outcome)

	second, err := s.InsertBatch(ctx, []domain.ArticleDraft{
		{Title: "A again", SourceURL: "https://example.com/a", PublishedAt: time.Now().UTC()},
	})
	require.NoError(t, err)
	assert.Equal(t, storage.DuplicateKey, second[0].Outcome)

	_, total, err := s.List(ctx, storage.ListFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestListOrdersNewestFirstWithInsertionTiebreak(t *testing.T) {
	s := memory.NewStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed(t, s,
		domain.ArticleDraft{Title: "older", SourceURL: "u1", PublishedAt: at.Add(-time.Hour)},
		domain.ArticleDraft{Title: "tied-first", SourceURL: "u2", PublishedAt: at},
		domain.ArticleDraft{Title: "tied-second", SourceURL: "u3", PublishedAt: at},
		domain.ArticleDraft{Title: "newest", SourceURL: "u4", PublishedAt: at.Add(time.Hour)},
	)

	articles, _, err := s.List(context.Background(), storage.ListFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, articles, 4)

	assert.Equal(t, "newest", articles[0].Title)
	assert.Equal(t, "tied-first", articles[1].Title)
	assert.Equal(t, "tied-second", articles[2].Title)
	assert.Equal(t, "older", articles[3].Title)
}

func TestListFilters(t *testing.T) {
	s := memory.NewStore()
	now := time.Now().UTC()

	seed(t, s,
		domain.ArticleDraft{Title: "tech-us", SourceURL: "u1", PublishedAt: now, Category: domain.CategoryTechnology, CountryCode: "us"},
		domain.ArticleDraft{Title: "tech-gb", SourceURL: "u2", PublishedAt: now, Category: domain.CategoryTechnology, CountryCode: "gb"},
		domain.ArticleDraft{Title: "sports-us", SourceURL: "u3", PublishedAt: now, Category: domain.CategorySports, CountryCode: "us"},
	)

	ctx := context.Background()

	byCat, total, err := s.List(ctx, storage.ListFilter{Category: domain.CategoryTechnology}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byCat, 2)

	both, total, err := s.List(ctx, storage.ListFilter{Category: domain.CategoryTechnology, CountryCode: "gb"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, both, 1)
	assert.Equal(t, "tech-gb", both[0].Title)
}

func TestListPagination(t *testing.T) {
	s := memory.NewStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed(t, s,
		domain.ArticleDraft{Title: "one", SourceURL: "u1", PublishedAt: at},
		domain.ArticleDraft{Title: "two", SourceURL: "u2", PublishedAt: at},
		domain.ArticleDraft{Title: "three", SourceURL: "u3", PublishedAt: at},
	)

	ctx := context.Background()

	pageOne, total, err := s.List(ctx, storage.ListFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, pageOne, 2)
	assert.Equal(t, "one", pageOne[0].Title)

	pageTwo, _, err := s.List(ctx, storage.ListFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, pageTwo, 1)
	assert.Equal(t, "three", pageTwo[0].Title)

	empty, _, err := s.List(ctx, storage.ListFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSearchMatchesSubstringsCaseInsensitive(t *testing.T) {
	s := memory.NewStore()
	now := time.Now().UTC()

	seed(t, s,
		domain.ArticleDraft{Title: "Quantum Leap", SourceURL: "u1", PublishedAt: now},
		domain.ArticleDraft{Title: "Nothing here", Summary: "a quantum of solace", SourceURL: "u2", PublishedAt: now},
		domain.ArticleDraft{Title: "Plain", Content: "body mentions QUANTUM too", SourceURL: "u3", PublishedAt: now},
		domain.ArticleDraft{Title: "Unrelated", SourceURL: "u4", PublishedAt: now},
	)

	matches, err := s.Search(context.Background(), "quantum", 10, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestGetByIDNotFound(t *testing.T) {
	s := memory.NewStore()

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateByIDAppliesPartialPatch(t *testing.T) {
	s := memory.NewStore()
	arts := seed(t, s, domain.ArticleDraft{
		Title: "A", SourceURL: "u1", PublishedAt: time.Now().UTC(),
		Category: domain.CategoryGeneral,
	})

	lat, lon := 48.85, 2.35
	cat := domain.CategoryPolitics
	updated, err := s.UpdateByID(context.Background(), arts[0].ID, storage.ArticlePatch{
		Category: &cat,
		Latitude: &lat,
		Longitude: &lon,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryPolitics, updated.Category)
	require.NotNil(t, updated.Latitude)
	assert.Equal(t, 48.85, *updated.Latitude)
	assert.Equal(t, "A", updated.Title)
	assert.True(t, updated.HasLocation())

	_, err = s.UpdateByID(context.Background(), uuid.New(), storage.ArticlePatch{Category: &cat})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListLocated(t *testing.T) {
	s := memory.NewStore()
	now := time.Now().UTC()
	lat, lon := 51.5, -0.12

	seed(t, s,
		domain.ArticleDraft{Title: "located", SourceURL: "u1", PublishedAt: now, Latitude: &lat, Longitude: &lon},
		domain.ArticleDraft{Title: "unlocated", SourceURL: "u2", PublishedAt: now},
		domain.ArticleDraft{Title: "half", SourceURL: "u3", PublishedAt: now, Latitude: &lat},
	)

	located, err := s.ListLocated(context.Background())
	require.NoError(t, err)
	require.Len(t, located, 1)
	assert.Equal(t, "located", located[0].Title)
}

func TestStats(t *testing.T) {
	s := memory.NewStore()
	now := time.Now().UTC()

	seed(t, s,
		domain.ArticleDraft{Title: "fresh", SourceURL: "u1", PublishedAt: now.Add(-time.Hour), Category: domain.CategoryTechnology},
		domain.ArticleDraft{Title: "stale", SourceURL: "u2", PublishedAt: now.Add(-48 * time.Hour), Category: domain.CategoryTechnology},
		domain.ArticleDraft{Title: "other", SourceURL: "u3", PublishedAt: now.Add(-time.Minute), Category: domain.CategorySports},
	)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Recent)
	assert.Equal(t, int64(2), stats.ByCategory[domain.CategoryTechnology])
	assert.Equal(t, int64(1), stats.ByCategory[domain.CategorySports])
}

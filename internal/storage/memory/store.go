package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/storage"
)

// Store is an in-memory implementation of both storage.ArticleStore and
// storage.UsageStore with the same dedup and upsert semantics as the
// Postgres backend. Used in tests and for local runs without a database.
type Store struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entry
	byURL   map[string]uuid.UUID
	nextSeq int64

	usage map[usageKey]int
}

type entry struct {
	article domain.Article
	seq     int64
}

type usageKey struct {
	provider string
	endpoint string
	day      string
}

func NewStore() *Store {
	return &Store{
		byID:  make(map[uuid.UUID]*entry),
		byURL: make(map[string]uuid.UUID),
		usage: make(map[usageKey]int),
	}
}

func (s *Store) FindByURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, ok := s.byURL[u]; ok {
			existing[u] = struct{}{}
		}
	}
	return existing, nil
}

func (s *Store) InsertBatch(ctx context.Context, drafts []domain.ArticleDraft) ([]storage.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	results := make([]storage.InsertResult, 0, len(drafts))
	for _, d := range drafts {
		if _, ok := s.byURL[d.SourceURL]; ok {
			results = append(results, storage.InsertResult{Outcome: storage.DuplicateKey})
			continue
		}

		art := domain.Article{
			ID:           uuid.New(),
			ArticleDraft: d,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.nextSeq++
		s.byID[art.ID] = &entry{article: art, seq: s.nextSeq}
		s.byURL[d.SourceURL] = art.ID
		results = append(results, storage.InsertResult{Outcome: storage.Inserted, Article: art})
	}
	return results, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return domain.Article{}, storage.ErrNotFound
	}
	return e.article, nil
}

func (s *Store) UpdateByID(ctx context.Context, id uuid.UUID, patch storage.ArticlePatch) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return domain.Article{}, storage.ErrNotFound
	}

	if patch.Category != nil {
		e.article.Category = *patch.Category
	}
	if patch.CountryCode != nil {
		e.article.CountryCode = *patch.CountryCode
	}
	if patch.Latitude != nil {
		e.article.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		e.article.Longitude = patch.Longitude
	}
	if patch.SentimentScore != nil {
		e.article.SentimentScore = patch.SentimentScore
	}
	if patch.ImportanceScore != nil {
		e.article.ImportanceScore = patch.ImportanceScore
	}
	e.article.UpdatedAt = time.Now().UTC()
	return e.article, nil
}

func (s *Store) List(ctx context.Context, filter storage.ListFilter, limit, offset int) ([]domain.Article, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sorted(func(a domain.Article) bool {
		if filter.Category != "" && a.Category != filter.Category {
			return false
		}
		if filter.CountryCode != "" && a.CountryCode != filter.CountryCode {
			return false
		}
		return true
	})

	total := int64(len(matched))
	return page(matched, limit, offset), total, nil
}

func (s *Store) Search(ctx context.Context, query string, limit, offset int) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	matched := s.sorted(func(a domain.Article) bool {
		return strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Summary), q) ||
			strings.Contains(strings.ToLower(a.Content), q)
	})
	return page(matched, limit, offset), nil
}

func (s *Store) ListLocated(ctx context.Context) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(a domain.Article) bool { return a.HasLocation() }), nil
}

func (s *Store) Stats(ctx context.Context) (storage.ArticleStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := storage.ArticleStats{ByCategory: make(map[domain.Category]int64)}
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	for _, e := range s.byID {
		stats.Total++
		if e.article.PublishedAt.After(cutoff) {
			stats.Recent++
		}
		if e.article.Category != "" {
			stats.ByCategory[e.article.Category]++
		}
	}
	return stats, nil
}

func (s *Store) Upsert(ctx context.Context, provider, endpoint string, day time.Time, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{provider: provider, endpoint: endpoint, day: day.UTC().Format("2006-01-02")}
	s.usage[key] += delta
	return nil
}

func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]storage.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []storage.UsageRecord
	for key, count := range s.usage {
		day, err := time.Parse("2006-01-02", key.day)
		if err != nil {
			continue
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		records = append(records, storage.UsageRecord{
			Provider: key.provider,
			Endpoint: key.endpoint,
			Day:      day,
			Requests: count,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Day.Equal(records[j].Day) {
			return records[i].Day.After(records[j].Day)
		}
		if records[i].Provider != records[j].Provider {
			return records[i].Provider < records[j].Provider
		}
		return records[i].Endpoint < records[j].Endpoint
	})
	return records, nil
}

// sorted returns matching articles ordered by published_at descending with
// insertion order breaking ties, mirroring the SQL ordering.
func (s *Store) sorted(match func(domain.Article) bool) []domain.Article {
	entries := make([]*entry, 0, len(s.byID))
	for _, e := range s.byID {
		if match(e.article) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		pi, pj := entries[i].article.PublishedAt, entries[j].article.PublishedAt
		if !pi.Equal(pj) {
			return pi.After(pj)
		}
		return entries[i].seq < entries[j].seq
	})

	articles := make([]domain.Article, len(entries))
	for i, e := range entries {
		articles[i] = e.article
	}
	return articles
}

func page(articles []domain.Article, limit, offset int) []domain.Article {
	if offset >= len(articles) {
		return nil
	}
	end := len(articles)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return articles[offset:end]
}

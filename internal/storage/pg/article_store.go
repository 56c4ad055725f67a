package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grasp-news/grasp/internal/domain"
	"github.com/grasp-news/grasp/internal/storage"
)

const articleColumns = `id, title, content, summary, source_name, source_url, author,
	published_at, image_url, category, country_code, latitude, longitude,
	sentiment_score, importance_score, metadata, created_at, updated_at`

// ArticleStore implements storage.ArticleStore on Postgres. The
// news_articles table carries a unique constraint on source_url; inserts use
// ON CONFLICT DO NOTHING so a lost dedup race surfaces as a DuplicateKey
// outcome instead of an error.
type ArticleStore struct {
	db *pgxpool.Pool
}

func NewArticleStore(pool *ConnectionPool) *ArticleStore {
	return &ArticleStore{db: pool.conn}
}

func (s *ArticleStore) FindByURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(urls))
	if len(urls) == 0 {
		return existing, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT source_url FROM news_articles WHERE source_url = ANY($1)`, urls)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		existing[u] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating urls: %w", err)
	}
	return existing, nil
}

func (s *ArticleStore) InsertBatch(ctx context.Context, drafts []domain.ArticleDraft) ([]storage.InsertResult, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertSQL := `
		INSERT INTO news_articles
			(id, title, content, summary, source_name, source_url, author,
			 published_at, image_url, category, country_code, latitude, longitude,
			 sentiment_score, importance_score, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		ON CONFLICT (source_url) DO NOTHING
		RETURNING id, created_at
	`

	now := time.Now().UTC()
	results := make([]storage.InsertResult, 0, len(drafts))
	for i, d := range drafts {
		var metadataJSON []byte
		if d.Meta != nil {
			metadataJSON, err = json.Marshal(d.Meta)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal metadata for draft %d: %w", i, err)
			}
		}

		var id uuid.UUID
		var createdAt time.Time
		err = tx.QueryRow(ctx, insertSQL,
			uuid.New(),
			d.Title,
			d.Content,
			d.Summary,
			d.SourceName,
			d.SourceURL,
			nullString(d.Author),
			d.PublishedAt,
			nullString(d.ImageURL),
			nullString(string(d.Category)),
			nullString(d.CountryCode),
			d.Latitude,
			d.Longitude,
			d.SentimentScore,
			d.ImportanceScore,
			metadataJSON,
			now,
		).Scan(&id, &createdAt)
		if errors.Is(err, pgx.ErrNoRows) {
			results = append(results, storage.InsertResult{Outcome: storage.DuplicateKey})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert article: %w", err)
		}

		art := domain.Article{ID: id, ArticleDraft: d, CreatedAt: createdAt, UpdatedAt: createdAt}
		results = append(results, storage.InsertResult{Outcome: storage.Inserted, Article: art})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit insert transaction: %w", err)
	}
	return results, nil
}

func (s *ArticleStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM news_articles WHERE id = $1`, id)

	art, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("failed to get article %s: %w", id, err)
	}
	return art, nil
}

func (s *ArticleStore) List(ctx context.Context, filter storage.ListFilter, limit, offset int) ([]domain.Article, int64, error) {
	var where []string
	var args []any

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.CountryCode != "" {
		args = append(args, filter.CountryCode)
		where = append(where, fmt.Sprintf("country_code = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM news_articles`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`SELECT %s FROM news_articles%s
		ORDER BY published_at DESC, created_at ASC
		LIMIT $%d OFFSET $%d`, articleColumns, whereClause, len(args)-1, len(args))

	articles, err := s.queryArticles(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (s *ArticleStore) Search(ctx context.Context, query string, limit, offset int) ([]domain.Article, error) {
	pattern := "%" + escapeLike(query) + "%"
	searchSQL := `SELECT ` + articleColumns + ` FROM news_articles
		WHERE title ILIKE $1 OR summary ILIKE $1 OR content ILIKE $1
		ORDER BY published_at DESC, created_at ASC
		LIMIT $2 OFFSET $3`

	return s.queryArticles(ctx, searchSQL, pattern, limit, offset)
}

func (s *ArticleStore) ListLocated(ctx context.Context) ([]domain.Article, error) {
	locatedSQL := `SELECT ` + articleColumns + ` FROM news_articles
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY published_at DESC, created_at ASC`

	return s.queryArticles(ctx, locatedSQL)
}

func (s *ArticleStore) UpdateByID(ctx context.Context, id uuid.UUID, patch storage.ArticlePatch) (domain.Article, error) {
	var sets []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.CountryCode != nil {
		add("country_code", *patch.CountryCode)
	}
	if patch.Latitude != nil {
		add("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitude", *patch.Longitude)
	}
	if patch.SentimentScore != nil {
		add("sentiment_score", *patch.SentimentScore)
	}
	if patch.ImportanceScore != nil {
		add("importance_score", *patch.ImportanceScore)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	updateSQL := fmt.Sprintf(`UPDATE news_articles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), articleColumns)

	row := s.db.QueryRow(ctx, updateSQL, args...)
	art, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("failed to update article %s: %w", id, err)
	}
	return art, nil
}

func (s *ArticleStore) Stats(ctx context.Context) (storage.ArticleStats, error) {
	stats := storage.ArticleStats{ByCategory: make(map[domain.Category]int64)}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM news_articles`).Scan(&stats.Total); err != nil {
		return storage.ArticleStats{}, fmt.Errorf("failed to count articles: %w", err)
	}

	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM news_articles WHERE published_at >= $1`,
		time.Now().UTC().Add(-24*time.Hour),
	).Scan(&stats.Recent); err != nil {
		return storage.ArticleStats{}, fmt.Errorf("failed to count recent articles: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT category, COUNT(*) FROM news_articles WHERE category IS NOT NULL GROUP BY category`)
	if err != nil {
		return storage.ArticleStats{}, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat string
		var count int64
		if err := rows.Scan(&cat, &count); err != nil {
			return storage.ArticleStats{}, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ByCategory[domain.Category(cat)] = count
	}
	if err := rows.Err(); err != nil {
		return storage.ArticleStats{}, fmt.Errorf("error iterating category counts: %w", err)
	}
	return stats, nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, sql string, args ...any) ([]domain.Article, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}
	return articles, nil
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var art domain.Article
	var author, imageURL, category, countryCode *string
	var metadataJSON []byte

	err := row.Scan(
		&art.ID,
		&art.Title,
		&art.Content,
		&art.Summary,
		&art.SourceName,
		&art.SourceURL,
		&author,
		&art.PublishedAt,
		&imageURL,
		&category,
		&countryCode,
		&art.Latitude,
		&art.Longitude,
		&art.SentimentScore,
		&art.ImportanceScore,
		&metadataJSON,
		&art.CreatedAt,
		&art.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}

	if author != nil {
		art.Author = *author
	}
	if imageURL != nil {
		art.ImageURL = *imageURL
	}
	if category != nil {
		art.Category = domain.Category(*category)
	}
	if countryCode != nil {
		art.CountryCode = *countryCode
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &art.Meta); err != nil {
			return domain.Article{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return art, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

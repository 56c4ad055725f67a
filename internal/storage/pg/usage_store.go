package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grasp-news/grasp/internal/storage"
)

// UsageStore implements storage.UsageStore on Postgres. The upsert relies on
// the unique constraint over (provider, endpoint, day) so concurrent
// increments to the same triple never lose updates.
type UsageStore struct {
	db *pgxpool.Pool
}

func NewUsageStore(pool *ConnectionPool) *UsageStore {
	return &UsageStore{db: pool.conn}
}

func (s *UsageStore) Upsert(ctx context.Context, provider, endpoint string, day time.Time, delta int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO api_usage_logs (provider, endpoint, day, requests_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, endpoint, day)
		DO UPDATE SET requests_count = api_usage_logs.requests_count + EXCLUDED.requests_count
	`, provider, endpoint, day, delta)
	if err != nil {
		return fmt.Errorf("failed to upsert usage record: %w", err)
	}
	return nil
}

func (s *UsageStore) ListRange(ctx context.Context, from, to time.Time) ([]storage.UsageRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT provider, endpoint, day, requests_count
		FROM api_usage_logs
		WHERE day >= $1 AND day <= $2
		ORDER BY day DESC, provider ASC, endpoint ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var records []storage.UsageRecord
	for rows.Next() {
		var rec storage.UsageRecord
		if err := rows.Scan(&rec.Provider, &rec.Endpoint, &rec.Day, &rec.Requests); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}
	return records, nil
}

package factory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/grasp-news/grasp/internal/storage"
	"github.com/grasp-news/grasp/internal/storage/memory"
	"github.com/grasp-news/grasp/internal/storage/pg"
)

type Type string

const (
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StorageConfig struct {
	Type Type
	Pg   *pg.PoolConfig
}

// Stores bundles the concrete backends behind the store interfaces.
type Stores struct {
	Articles storage.ArticleStore
	Usage    storage.UsageStore
	Close    func()
	Health   HealthChecker
}

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type okHealthChecker struct{}

func (okHealthChecker) Healthy(context.Context) bool { return true }

func LoadEnv() (*StorageConfig, error) {
	storageType := Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		storageType = PG
	}
	if storageType != PG && storageType != InMem {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf("invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType, []Type{PG, InMem})
	}

	var pgCfg *pg.PoolConfig
	if storageType == PG {
		pgCfg = &pg.PoolConfig{
			ConnStr: os.Getenv("PG_CONNECTION_STRING"),
		}
		if pgCfg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
	}

	return &StorageConfig{
		Type: storageType,
		Pg:   pgCfg,
	}, nil
}

func NewStores(ctx context.Context, cfg *StorageConfig) (*Stores, error) {
	switch cfg.Type {
	case PG:
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pg connection pool: %w", err)
		}
		return &Stores{
			Articles: pg.NewArticleStore(pool),
			Usage:    pg.NewUsageStore(pool),
			Close:    pool.Close,
			Health:   pg.NewHealthChecker(pool),
		}, nil
	case InMem:
		store := memory.NewStore()
		return &Stores{
			Articles: store,
			Usage:    store,
			Close:    func() {},
			Health:   okHealthChecker{},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

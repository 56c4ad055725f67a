package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/grasp-news/grasp/internal/ingest"
	"github.com/grasp-news/grasp/internal/ledger"
	"github.com/grasp-news/grasp/internal/provider"
	"github.com/grasp-news/grasp/internal/storage/factory"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stores, err := factory.NewStores(ctx, &cfg.StorageConfig)
	if err != nil {
		slog.Error("failed to create stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	usageLedger := ledger.New(stores.Usage)

	adapters, err := provider.BuildAdapters(&cfg.ProviderConfig, usageLedger)
	if err != nil {
		slog.Error("failed to build provider adapters", "error", err)
		os.Exit(1)
	}

	writer := ingest.NewWriter(stores.Articles)
	orch := ingest.NewOrchestrator(adapters, writer, nil)

	orch.RunCycle(ctx)

	if cfg.IntervalSeconds <= 0 {
		return
	}

	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	slog.Info("ingestion worker looping", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ingestion worker stopping")
			return
		case <-ticker.C:
			orch.RunCycle(ctx)
		}
	}
}

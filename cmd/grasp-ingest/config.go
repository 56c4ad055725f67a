package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/grasp-news/grasp/internal/provider"
	"github.com/grasp-news/grasp/internal/storage/factory"
	"github.com/grasp-news/grasp/pkg/config/env"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type GraspIngestConfig struct {
	StorageConfig  factory.StorageConfig
	ProviderConfig provider.Config

	// IntervalSeconds > 0 makes the worker loop, 0 runs one cycle and exits.
	IntervalSeconds int
}

func (as *AppConfig) Load() (*GraspIngestConfig, error) {

	err := env.LoadDotEnv(as.ENV, "cmd/grasp-ingest/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	providerCfg, err := provider.LoadEnv()
	if err != nil {
		slog.Error("Failed to load provider configuration from environment", "error", err)
		return nil, err
	}

	interval := 0
	if raw := os.Getenv("INGEST_INTERVAL_SECONDS"); raw != "" {
		interval, err = strconv.Atoi(raw)
		if err != nil || interval < 0 {
			slog.Error("Invalid INGEST_INTERVAL_SECONDS environment variable value", "value", raw)
			return nil, fmt.Errorf("invalid INGEST_INTERVAL_SECONDS value: %s", raw)
		}
	}

	return &GraspIngestConfig{
		StorageConfig:   *storageCfg,
		ProviderConfig:  *providerCfg,
		IntervalSeconds: interval,
	}, nil
}

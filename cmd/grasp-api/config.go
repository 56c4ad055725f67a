package main

import (
	"log/slog"
	"os"

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

type GraspAPIConfig struct {
	StorageConfig  factory.StorageConfig
	ProviderConfig provider.Config
}

func (as *AppConfig) Load() (*GraspAPIConfig, error) {

	err := env.LoadDotEnv(as.ENV, "cmd/grasp-api/.env")
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

	return &GraspAPIConfig{
		StorageConfig:  *storageCfg,
		ProviderConfig: *providerCfg,
	}, nil
}

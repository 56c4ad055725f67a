// Package main Grasp News API
// @title Grasp News API
// @version 1.0
// @description News aggregation service: multi-source ingestion, deduplicated storage and article queries
// @contact.name API Support
// @contact.email support@grasp.news
// @BasePath /
package main

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	_ "github.com/grasp-news/grasp/docs"
	"github.com/grasp-news/grasp/internal/ingest"
	"github.com/grasp-news/grasp/internal/ledger"
	"github.com/grasp-news/grasp/internal/provider"
	"github.com/grasp-news/grasp/internal/router"
	"github.com/grasp-news/grasp/internal/server"
	"github.com/grasp-news/grasp/internal/storage/factory"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig("cmd/grasp-api/.env")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
		return
	}

	s := server.New(sCfg, nil).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupOpenApi("/swagger/*")

	stores, err := factory.NewStores(s.Context(), &cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create stores", "error", err)
		os.Exit(1)
		return
	}

	s.WithHealthChecker(stores.Health).SetupHealthChecks("/health")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "Grasp News API is running")
	})

	usageLedger := ledger.New(stores.Usage)

	adapters, err := provider.BuildAdapters(&cfg.ProviderConfig, usageLedger)
	if err != nil {
		slog.Error("Failed to build provider adapters", "error", err)
		os.Exit(1)
		return
	}

	writer := ingest.NewWriter(stores.Articles)
	orch := ingest.NewOrchestrator(adapters, writer, nil)

	router.NewArticlesRouter(s.Echo, stores.Articles).Bind()
	router.NewIngestRouter(s.Echo, orch).Bind()
	router.NewUsageRouter(s.Echo, usageLedger).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
		stores.Close()
	}()

	err = s.Start()
	if err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}

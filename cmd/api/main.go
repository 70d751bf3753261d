package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mfreitas/lucre/internal/analytics"
	"github.com/mfreitas/lucre/internal/config"
	"github.com/mfreitas/lucre/internal/database"
	"github.com/mfreitas/lucre/internal/history"
	historyStore "github.com/mfreitas/lucre/internal/history/store"
	lucreHttp "github.com/mfreitas/lucre/internal/http"
	reportHandler "github.com/mfreitas/lucre/internal/http/report"
	snapshotHandler "github.com/mfreitas/lucre/internal/http/snapshot"
	"github.com/mfreitas/lucre/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := historyStore.EnsureSchema(context.Background(), db); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	var (
		historyService   = history.NewService(historyStore.New(db))
		analyticsService = analytics.NewService(historyService)
		reportService    = report.NewService(historyService)
	)

	var (
		reportH   = reportHandler.NewHandler(reportService, cfg.MetricsTargets())
		snapshotH = snapshotHandler.NewHandler(historyService, analyticsService)
	)

	router := lucreHttp.New(reportH, snapshotH, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "port", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

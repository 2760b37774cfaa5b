package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/user/announcement-crawler/internal/adapter/jsonfile"
	"github.com/user/announcement-crawler/internal/adapter/postgres"
	"github.com/user/announcement-crawler/internal/delivery/http/handler"
	"github.com/user/announcement-crawler/internal/delivery/http/router"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/internal/usecase"
	"github.com/user/announcement-crawler/pkg/config"
	"github.com/user/announcement-crawler/pkg/logger"
	"github.com/user/announcement-crawler/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	// --- Logger ---
	log, err := logger.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Logger initialized", zap.String("level", cfg.LogLevel))

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	log.Info("Metrics initialized")

	ctx := context.Background()

	// --- Optional failure lookups ---
	var failures repository.CrawlFailureFinder
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("Unable to connect to database", zap.Error(err))
		}
		defer dbpool.Close()
		failures = postgres.NewCrawlFailureRepo(dbpool)
		log.Info("PostgreSQL connection pool established")
	}

	// --- Use Cases ---
	status := usecase.NewStatusReader(jsonfile.NewURLRecordRepo(cfg.URLListPath), failures, log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(status, log)
	httpRouter := router.New(apiHandler, m, reg, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort), zap.String("url_list_path", cfg.URLListPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}

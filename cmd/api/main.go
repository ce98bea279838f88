package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/doctorauto/patio-sync/api/routes"
	"github.com/doctorauto/patio-sync/internal/leads"
	syncsvc "github.com/doctorauto/patio-sync/internal/sync"
	"github.com/doctorauto/patio-sync/internal/vehicles"
	"github.com/doctorauto/patio-sync/pkg/config"
	"github.com/doctorauto/patio-sync/pkg/db"
	"github.com/doctorauto/patio-sync/pkg/logger"
	"github.com/doctorauto/patio-sync/pkg/metrics"
	"github.com/doctorauto/patio-sync/pkg/migrate"
	"github.com/doctorauto/patio-sync/pkg/redis"
	"github.com/doctorauto/patio-sync/pkg/trello"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	trelloClient, err := trello.NewClient(cfg.Trello)
	if err != nil {
		logg.Error(context.Background(), "failed to create trello client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	jobMetrics := metrics.NewJobMetrics(registry)

	vehicleRepo := vehicles.NewRepo(dbClient.DB(), dbClient)
	leadService := leads.NewService(leads.NewRepo(dbClient.DB()), trelloClient, cfg.Kommo, cfg.Trello, logg)
	syncService := syncsvc.NewService(trelloClient, vehicleRepo, logg)
	syncJob := syncsvc.NewJob(syncService, jobMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			LeadService: leadService,
			SyncJob:     syncJob,
			Registry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

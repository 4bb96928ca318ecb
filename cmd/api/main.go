package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arcadialabs/landgrid-backend/api/routes"
	"github.com/arcadialabs/landgrid-backend/internal/ledger"
	"github.com/arcadialabs/landgrid-backend/internal/regions"
	"github.com/arcadialabs/landgrid-backend/internal/registry"
	"github.com/arcadialabs/landgrid-backend/pkg/auth/session"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/db"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/metrics"
	"github.com/arcadialabs/landgrid-backend/pkg/migrate"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox"
	"github.com/arcadialabs/landgrid-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	if !cfg.Ledger.IsMock() {
		logg.Error(context.Background(), "live ledger transport is not wired in this build", nil)
		os.Exit(1)
	}
	ledgerClient := ledger.NewMockClient()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	queryMetrics := metrics.NewQueryMetrics(prometheus.DefaultRegisterer)
	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	registryService, err := registry.NewService(
		registry.NewRepository(dbClient.DB()),
		redisClient,
		ledgerClient,
		queryMetrics,
		logg,
		cfg.Registry,
		cfg.World,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create registry service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(
		ledger.NewRepository(dbClient.DB()),
		dbClient,
		ledgerClient,
		outboxService,
		redisClient,
		ledgerMetrics,
		logg,
		cfg.Ledger,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	regionsService, err := regions.NewService(
		regions.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		logg,
		cfg.World,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create regions service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			registryService,
			ledgerService,
			regionsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/omerfarooq187/pizza-pos-backend/api/routes"
	"github.com/omerfarooq187/pizza-pos-backend/internal/catalog"
	"github.com/omerfarooq187/pizza-pos-backend/internal/inventory"
	"github.com/omerfarooq187/pizza-pos-backend/internal/orders"
	"github.com/omerfarooq187/pizza-pos-backend/internal/reports"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/config"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos-api",
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

	if err := dbClient.EnsureSchema(context.Background(), logg); err != nil {
		logg.Error(context.Background(), "failed to prepare schema", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	posMetrics := metrics.NewPOSMetrics(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(
		inventory.NewRepository(dbClient.DB()),
		dbClient,
		logg,
		posMetrics,
		cfg.Inventory.HardBlock,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		orders.NewDraftStore(),
		catalogService,
		inventoryService,
		dbClient,
		logg,
		posMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(orders.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	exporter, err := reports.NewExporter(cfg.Reports, logg, posMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create report exporter", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"db":   cfg.DB.Path,
	})
	logg.Info(ctx, "starting pos api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			registry,
			catalogService,
			inventoryService,
			orderService,
			reportService,
			exporter,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "pos api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

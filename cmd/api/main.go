package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/autolenis/autolenis-backend/api"
	"github.com/autolenis/autolenis-backend/api/routes"
	"github.com/autolenis/autolenis-backend/internal/auctions"
	"github.com/autolenis/autolenis-backend/internal/audit"
	"github.com/autolenis/autolenis-backend/internal/bestprice"
	"github.com/autolenis/autolenis-backend/internal/deals"
	"github.com/autolenis/autolenis-backend/internal/inventory"
	"github.com/autolenis/autolenis-backend/internal/offers"
	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/db"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	"github.com/autolenis/autolenis-backend/pkg/metrics"
	"github.com/autolenis/autolenis-backend/pkg/migrate"
	"github.com/autolenis/autolenis-backend/pkg/outbox"
	"github.com/autolenis/autolenis-backend/pkg/redis"
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

	cfg.Service.Kind = "api"

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

	router, err := buildRouter(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, router, logg)
	if err := server.Run(ctx); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func buildRouter(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (http.Handler, error) {
	gormDB := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	auctionsRepo := auctions.NewRepository(gormDB)
	offersRepo := offers.NewRepository(gormDB)
	inventorySvc := inventory.NewService(gormDB)
	auditSvc := audit.NewService(gormDB, logg)

	auctionsSvc, err := auctions.NewService(auctionsRepo, offersRepo, dbClient, outboxSvc, logg)
	if err != nil {
		return nil, err
	}
	offersSvc, err := offers.NewService(
		offersRepo,
		auctionsRepo,
		inventorySvc,
		offers.NewValidator(cfg.Offers),
		dbClient,
		outboxSvc,
		auditSvc,
		logg,
	)
	if err != nil {
		return nil, err
	}
	dealsSvc, err := deals.NewService(deals.NewRepository(gormDB), inventorySvc, dbClient, outboxSvc, auditSvc, logg)
	if err != nil {
		return nil, err
	}
	bestpriceSvc, err := bestprice.NewService(
		bestprice.NewRepository(gormDB),
		offersRepo,
		auctionsRepo,
		inventorySvc,
		dealsSvc,
		dbClient,
		outboxSvc,
		metrics.NewRankingMetrics(prometheus.DefaultRegisterer),
		cfg.BestPrice,
		logg,
	)
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(cfg, logg, dbClient, redisClient, auctionsSvc, offersSvc, bestpriceSvc, dealsSvc), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/autolenis/autolenis-backend/internal/auctions"
	"github.com/autolenis/autolenis-backend/internal/audit"
	"github.com/autolenis/autolenis-backend/internal/bestprice"
	"github.com/autolenis/autolenis-backend/internal/cron"
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

const lockKeyFormat = "al:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	gormDB := dbClient.DB()
	outboxRepo := outbox.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outboxRepo, logg)

	auctionsRepo := auctions.NewRepository(gormDB)
	offersRepo := offers.NewRepository(gormDB)
	inventorySvc := inventory.NewService(gormDB)
	auditSvc := audit.NewService(gormDB, logg)

	auctionsSvc, err := auctions.NewService(auctionsRepo, offersRepo, dbClient, outboxSvc, logg)
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

	expiryJob, err := cron.NewAuctionExpiryJob(cron.AuctionExpiryJobParams{
		Logger:    logg,
		Auctions:  auctionsRepo,
		Closer:    auctionsSvc,
		Ranker:    bestpriceSvc,
		BatchSize: cfg.Cron.SweepBatchSize,
	})
	if err != nil {
		return nil, err
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    outboxRepo,
		RetentionDays: cfg.Cron.OutboxRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(expiryJob, retentionJob), nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

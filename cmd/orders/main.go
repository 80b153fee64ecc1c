package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/cache"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/events"
	"github.com/nikolayk812/storefront/internal/handlers"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/server"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := initDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initDatabase: %w", err)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var orderOpts []repository.OrderOption
	if cfg.Kafka.Enabled() {
		orderOpts = append(orderOpts, repository.WithOutbox(cfg.Kafka.OrdersTopic))
	}

	serviceOpts := []service.Option{
		service.WithMetrics(m),
		service.WithTotalTolerance(cfg.Orders.TotalTolerance),
	}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, cache errors will be bypassed", zap.Error(err))
		}

		serviceOpts = append(serviceOpts, service.WithCache(cache.NewRedisOrderCache(rdb, cfg.Redis.TTL, logger)))
	}

	orderService := service.NewOrderService(
		repository.NewOrder(pool, orderOpts...),
		repository.NewCatalog(pool),
		repository.NewStats(pool),
		cfg.Currency(),
		logger,
		serviceOpts...,
	)

	h := handlers.NewHandlers(orderService, cfg.Currency(), pool, logger)
	srv := server.New(cfg, h, m, reg, logger)

	var wg sync.WaitGroup

	if cfg.Kafka.Enabled() {
		publisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer func() { _ = publisher.Close() }()

		relay := events.NewRelay(repository.NewOutbox(pool), publisher, logger,
			events.WithPollInterval(cfg.Kafka.PollInterval),
			events.WithBatchSize(cfg.Kafka.BatchSize),
			events.WithRelayMetrics(m),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	logger.Info("service configuration",
		zap.String("port", cfg.Server.Port),
		zap.String("currency", cfg.Currency().String()),
		zap.Bool("cache_enabled", cfg.Redis.Enabled()),
		zap.Bool("events_enabled", cfg.Kafka.Enabled()),
		zap.Bool("auth_enabled", cfg.Auth.Enabled()))

	select {
	case err := <-serverErr:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server exited")

	return nil
}

func initDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	if cfg.Migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db.Migrate: %w", err)
		}
	}

	if cfg.Seed {
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db.Seed: %w", err)
		}
	}

	logger.Info("database connected",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Bool("migrated", cfg.Migrate),
		zap.Bool("seeded", cfg.Seed))

	return pool, nil
}

func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("zapcore.ParseLevel: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openmohaa/bracket-api/internal/config"
	"github.com/openmohaa/bracket-api/internal/handlers"
	"github.com/openmohaa/bracket-api/internal/logic"
	"github.com/openmohaa/bracket-api/internal/store"
	"github.com/openmohaa/bracket-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params, err := config.LoadModelParams(cfg.ModelParamsPath)
	if err != nil {
		return err
	}

	// Postgres
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer ch.Close()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	cache := store.NewRedisCache(rdb, cfg.CacheTTL)
	results := store.NewResultWriter(ch, cfg.BatchSize)

	predictor, err := logic.NewLogisticPredictor(params.Predictor)
	if err != nil {
		return fmt.Errorf("build predictor: %w", err)
	}

	forecast := logic.NewForecastService(logic.ForecastConfig{
		Source:      store.NewPostgresSource(pg),
		Cache:       cache,
		Predictor:   predictor,
		Rating:      params.Rating,
		Aggregation: params.Aggregation,
		DefaultRuns: params.DefaultRuns,
		SimWorkers:  cfg.SimWorkers,
		Logger:      logger,
	})

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		JobTimeout:  cfg.JobTimeout,
		Simulator:   forecast,
		Results:     results,
		Jobs:        cache,
		Logger:      logger,
	})
	pool.Start(ctx)
	defer pool.Stop()

	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Forecast:   forecast,
		Dependencies: map[string]handlers.Pinger{
			"postgres":   pg,
			"clickhouse": results,
			"redis":      handlers.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: h.Routes(handlers.RouterConfig{
			AllowedOrigins:     cfg.AllowedOrigins,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			RateLimitBurst:     cfg.RateLimitBurst,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("HTTP server listening", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	sugar.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

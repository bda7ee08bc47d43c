// Command worker runs the periodic obligation generation sweep.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/config"
	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/postgres"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/redis"
	"github.com/complyhq/compliance-engine/internal/infrastructure/messaging/kafka"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	if err := run(*configPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      cfg.Logging.OutputPaths,
		ErrorOutputPaths: cfg.Logging.ErrorOutputPaths,
	})
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []compliance.Option{compliance.WithMetrics(prometheus.NewEngineMetrics())}

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, cache invalidation disabled", logging.Err(err))
	} else {
		defer rdb.Close()
		opts = append(opts, compliance.WithCache(redis.NewScoreCache(rdb, cfg.Redis.ScoreTTL, logger)))
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		opts = append(opts, compliance.WithPublisher(producer))
	}

	service := compliance.NewService(
		catalog.NewDefaultRegistry(),
		repositories.NewEntityRepository(db),
		repositories.NewObligationRepository(db),
		logger,
		opts...,
	)

	sweep := func() {
		start := time.Now()
		result, err := service.GenerateForAll(ctx, 0)
		if err != nil {
			logger.Error("sweep failed", logging.Err(err))
			return
		}
		logger.Info("sweep finished",
			logging.Int("entities", result.Entities),
			logging.Int("failed", len(result.Failed)),
			logging.Duration("duration", time.Since(start)))
	}

	sweep()
	if once {
		return nil
	}

	ticker := time.NewTicker(cfg.Engine.GenerationInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			sweep()
		}
	}
}

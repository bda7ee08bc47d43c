// Command apiserver runs the compliance engine REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/config"
	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/postgres"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/redis"
	"github.com/complyhq/compliance-engine/internal/infrastructure/messaging/kafka"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/complyhq/compliance-engine/internal/interfaces/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	migrateOnly := flag.Bool("migrate", false, "run migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnly bool) error {
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
	logger = logger.Named("apiserver")

	if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
		return err
	}
	if migrateOnly {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := prometheus.NewEngineMetrics()

	opts := []compliance.Option{compliance.WithMetrics(metrics)}

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, health scores will not be cached", logging.Err(err))
	} else {
		defer rdb.Close()
		opts = append(opts, compliance.WithCache(redis.NewScoreCache(rdb, cfg.Redis.ScoreTTL, logger)))
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		opts = append(opts, compliance.WithPublisher(producer))
	}

	entities := repositories.NewEntityRepository(db)
	obligations := repositories.NewObligationRepository(db)
	service := compliance.NewService(catalog.NewDefaultRegistry(), entities, obligations, logger, opts...)

	handler := httpiface.NewRouter(httpiface.RouterDeps{
		Service:        service,
		Entities:       entities,
		DB:             db,
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
		Config:         cfg,
		Version:        version,
		Logger:         logger,
	})
	server := httpiface.NewServer(cfg.Server, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.String("addr", cfg.Server.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

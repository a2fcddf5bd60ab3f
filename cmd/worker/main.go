// Command worker consumes engagement events from Kafka and counts them
// into the Redis scoreboards read by the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	httpserver "github.com/ben-daghir/hercap/internal/interfaces/http"
	"github.com/ben-daghir/hercap/internal/interfaces/http/handlers"
	"github.com/ben-daghir/hercap/internal/platform"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// Build-time variables injected via ldflags.
var version = "dev"

const (
	defaultHealthPort = 8081
	maxRetries        = 3
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (env and defaults when empty)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics")
	flag.Parse()

	cfg, err := config.Load(config.WithConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := platform.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting hercap worker",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.Topic),
		logging.String("group", cfg.Kafka.GroupID))

	if err := run(ctx, cfg, *healthPort, logger); err != nil {
		logger.Error("worker failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, healthPort int, logger logging.Logger) error {
	if !cfg.Kafka.Enabled || !cfg.Redis.Enabled {
		return errors.New(errors.ErrCodeValidation, "worker requires kafka.enabled and redis.enabled")
	}

	collector, metrics, err := platform.NewMetrics(cfg.Metrics, logger)
	if err != nil {
		return err
	}

	infra, err := platform.Open(cfg, logger, false)
	if err != nil {
		return err
	}
	defer infra.Close()

	recorder := engagement.NewRecorder(redis.NewScoreboard(infra.Redis), logger, metrics)

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topics:  []string{cfg.Kafka.Topic},
		RetryConfig: kafka.RetryConfig{
			MaxRetries: maxRetries,
		},
	}, logger)
	if err != nil {
		return err
	}
	consumer.Subscribe(cfg.Kafka.Topic, recorder.HandleMessage)

	health := handlers.NewHealthHandler(version, handlers.NewChecker("redis", infra.Redis.Ping))
	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:    health,
		Logger:           logger,
		MetricsCollector: collector,
	})
	srvCfg := cfg.Server
	srvCfg.Port = healthPort
	srv := httpserver.NewServer(srvCfg, router, logger)

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("waiting for the in-flight message")
		if err := consumer.Close(); err != nil {
			logger.Warn("kafka consumer close error", logging.Err(err))
		}
		consumed, processed, failed := consumer.Stats()
		logger.Info("consumer drained",
			logging.Int64("consumed", consumed),
			logging.Int64("processed", processed),
			logging.Int64("failed", failed))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return g.Wait()
}

//Personal.AI order the ending

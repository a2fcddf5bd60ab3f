// Command apiserver serves the portfolio API, interactive view sessions and
// the gRPC health service.
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
	"github.com/ben-daghir/hercap/internal/application/interaction"
	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/ben-daghir/hercap/internal/interfaces/grpc"
	httpserver "github.com/ben-daghir/hercap/internal/interfaces/http"
	"github.com/ben-daghir/hercap/internal/interfaces/http/handlers"
	"github.com/ben-daghir/hercap/internal/interfaces/http/middleware"
	"github.com/ben-daghir/hercap/internal/platform"
)

// Build-time variables injected via ldflags.
var version = "dev"

const eventSource = "hercap-apiserver"

func main() {
	configPath := flag.String("config", "", "path to configuration file (env and defaults when empty)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	flag.Parse()

	overrides := map[string]interface{}{}
	if *httpPort > 0 {
		overrides["server.port"] = *httpPort
	}
	if *grpcPort > 0 {
		overrides["grpc.port"] = *grpcPort
	}
	cfg, err := config.Load(config.WithConfigPath(*configPath), config.WithOverrides(overrides))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := platform.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *configPath != "" {
		watchConfig(*configPath, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting hercap api server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Any("grpc_enabled", cfg.GRPC.Enabled))

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api server failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("api server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	collector, metrics, err := platform.NewMetrics(cfg.Metrics, logger)
	if err != nil {
		return err
	}

	infra, err := platform.Open(cfg, logger, true)
	if err != nil {
		return err
	}
	defer infra.Close()

	if infra.Producer != nil {
		ensureTopics(ctx, cfg.Kafka, logger)
	}

	loader, err := platform.NewFeedLoader(cfg.Feed, infra, logger, metrics)
	if err != nil {
		return err
	}
	world := platform.LoadWorld(ctx, cfg.Geometry, infra, logger)

	store := portfolioapp.NewStore(loader, logger)
	store.Start(ctx)
	svc := portfolioapp.NewService(store, nil, logger)

	var publisher engagement.Publisher = engagement.NopPublisher{}
	if infra.Producer != nil {
		publisher = engagement.NewKafkaPublisher(infra.Producer, cfg.Kafka.Topic, eventSource, logger, metrics)
	}
	factory := interaction.NewControllerFactory(svc, world, cfg.Globe, cfg.Sector)
	manager := interaction.NewManager(cfg.Session, factory,
		interaction.WithPublisher(publisher),
		interaction.WithLogger(logger),
		interaction.WithMetrics(metrics))

	checkers := []handlers.HealthChecker{handlers.FeedChecker(store)}
	var engagementHandler *handlers.EngagementHandler
	if infra.Redis != nil {
		checkers = append(checkers, handlers.NewChecker("redis", infra.Redis.Ping))
		recorder := engagement.NewRecorder(redis.NewScoreboard(infra.Redis), logger, metrics)
		engagementHandler = handlers.NewEngagementHandler(recorder, logger)
	}
	health := handlers.NewHealthHandler(version, checkers...)

	streamCfg := handlers.DefaultStreamConfig()
	streamCfg.AllowedOrigins = cfg.Server.CORSOrigins

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.Server.CORSOrigins
	corsCfg.AllowWildcard = true

	rlCfg := middleware.DefaultRateLimitConfig()
	if cfg.Server.RateLimitRPS > 0 {
		rlCfg.RequestsPerSecond = cfg.Server.RateLimitRPS
	}
	if cfg.Server.RateLimitBurst > 0 {
		rlCfg.Burst = cfg.Server.RateLimitBurst
	}
	rateLimit := middleware.NewRateLimitMiddleware(rlCfg)
	defer rateLimit.Stop()

	router := httpserver.NewRouter(httpserver.RouterConfig{
		PortfolioHandler:    handlers.NewPortfolioHandler(svc, logger),
		SessionHandler:      handlers.NewSessionHandler(manager, factory, logger, metrics),
		StreamHandler:       handlers.NewStreamHandler(manager, streamCfg, logger),
		EngagementHandler:   engagementHandler,
		HealthHandler:       health,
		CORSMiddleware:      middleware.NewCORSMiddleware(corsCfg),
		LoggingMiddleware:   middleware.NewLoggingMiddleware(logger, metrics, middleware.DefaultLoggingConfig()),
		RateLimitMiddleware: rateLimit,
		Logger:              logger,
		MetricsCollector:    collector,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(&cfg.GRPC,
			grpcserver.WithLogger(logger),
			grpcserver.WithMetrics(metrics),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout))
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.Run(gctx) })
	g.Go(srv.Start)
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
		g.Go(func() error {
			grpcSrv.WatchReadiness(gctx, health.Ready)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var firstErr error
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", logging.Err(err))
			firstErr = err
		}
		if grpcSrv != nil {
			if err := grpcSrv.Stop(shutdownCtx); err != nil {
				logger.Error("grpc server shutdown error", logging.Err(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	})
	return g.Wait()
}

// ensureTopics creates the engagement topic.  Brokers with auto-creation
// enabled make this a no-op, so failures are only logged.
func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	if len(cfg.Brokers) == 0 {
		return
	}
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg.Topic)); err != nil {
		logger.Warn("failed to ensure kafka topics", logging.Err(err))
	}
}

// watchConfig applies log level changes from the config file without a
// restart. Other sections need a restart to take effect.
func watchConfig(path string, logger logging.Logger) {
	err := config.Watch(path, func(c *config.Config) {
		level, err := logging.ParseLevel(c.Log.Level)
		if err != nil {
			logger.Warn("ignoring reloaded log level", logging.Err(err))
			return
		}
		if logging.SetLevel(logger, level) {
			logger.Info("configuration reloaded", logging.String("log_level", level.String()))
		}
	}, func(err error) {
		logger.Warn("configuration reload rejected", logging.Err(err))
	})
	if err != nil {
		logger.Warn("configuration watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending

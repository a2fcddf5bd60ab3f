// Package platform turns the loaded configuration into the shared
// infrastructure clients every hercap binary needs.
package platform

import (
	"context"

	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/feed"
	"github.com/ben-daghir/hercap/internal/infrastructure/geometry"
	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/internal/infrastructure/storage/minio"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// Infrastructure holds the optional clients enabled in configuration.
// Disabled ones stay nil.
type Infrastructure struct {
	Redis    *redis.Client
	MinIO    *minio.MinIOClient
	Objects  minio.ObjectRepository
	Producer *kafka.Producer
}

// Close releases every open client.
func (i *Infrastructure) Close() {
	if i.Producer != nil {
		_ = i.Producer.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.MinIO != nil {
		_ = i.MinIO.Close()
	}
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       logging.Level(cfg.Level),
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
}

// NewMetrics registers the application metrics.  When metrics are disabled
// the collector discards samples and serves no endpoint.
func NewMetrics(cfg config.MetricsConfig, log logging.Logger) (prometheus.MetricsCollector, *prometheus.AppMetrics, error) {
	if !cfg.Enabled {
		return nil, prometheus.NewNoopAppMetrics(), nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "metrics collector")
	}
	return collector, prometheus.NewAppMetrics(collector), nil
}

// Open connects the enabled clients.  withProducer is false for processes
// that only consume events.
func Open(cfg *config.Config, log logging.Logger, withProducer bool) (*Infrastructure, error) {
	infra := &Infrastructure{}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&redis.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		}, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = client
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Region:          cfg.MinIO.Region,
			Bucket:          cfg.MinIO.Bucket,
		}, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.MinIO = client
		infra.Objects = minio.NewMinIORepository(client, log)
	}

	if cfg.Kafka.Enabled && withProducer {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, log)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Producer = producer
	}

	return infra, nil
}

// objects returns the repository as the narrow getter, or nil.  A nil
// repository must not become a non-nil interface.
func (i *Infrastructure) objects() minio.ObjectRepository {
	if i == nil || i.Objects == nil {
		return nil
	}
	return i.Objects
}

// NewFeedLoader builds the configured feed source, caching raw bodies in
// Redis when both Redis and a cache TTL are configured.
func NewFeedLoader(cfg config.FeedConfig, infra *Infrastructure, log logging.Logger, metrics *prometheus.AppMetrics) (*feed.Loader, error) {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	var getter feed.ObjectGetter
	if objs := infra.objects(); objs != nil {
		getter = objs
	}
	source, err := feed.NewSource(cfg, getter)
	if err != nil {
		return nil, err
	}
	if infra != nil && infra.Redis != nil && cfg.CacheTTL > 0 {
		cache := redis.NewRedisCache(infra.Redis, log)
		lock := redis.NewMutex(infra.Redis, "feed-refresh", log)
		source = feed.NewCachedSource(source, cache, cfg.CacheTTL, log,
			feed.WithRefreshLock(lock),
			feed.WithCacheMetrics(metrics))
	}
	return feed.NewLoader(source, log, feed.WithLoaderMetrics(metrics)), nil
}

// LoadWorld reads the configured world geometry.  A source that cannot be
// read leaves the world empty and the globe is drawn without land.
func LoadWorld(ctx context.Context, cfg config.GeometryConfig, infra *Infrastructure, log logging.Logger) *geometry.World {
	if log == nil {
		log = logging.NewNopLogger()
	}
	var getter geometry.ObjectGetter
	if objs := infra.objects(); objs != nil {
		getter = objs
	}
	world, err := geometry.NewLoader(cfg, getter, log).Load(ctx)
	if err != nil {
		log.Warn("world geometry unavailable, drawing globe without land",
			logging.String("source", cfg.Source), logging.Err(err))
		return &geometry.World{}
	}
	return world
}

//Personal.AI order the ending

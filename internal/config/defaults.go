package config

import "time"

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultGRPCPort   = 9090

	// DefaultFeedURL is the published CSV export of the portfolio sheet.
	DefaultFeedURL = "https://docs.google.com/spreadsheets/d/1Oz3B95FhB8ytGJvPKKk2T25ZRpl9GqUePBLDUwq2iRE/gviz/tq?tqx=out:csv&sheet=Herald_Capital_Portfolio"
	DefaultFeedSource  = "http"
	DefaultFeedTimeout = 15 * time.Second
	DefaultUserAgent   = "hercap-feed/1.0"

	// DefaultGeometryURL is the world-atlas 1:110m land and country topology.
	DefaultGeometryURL = "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json"
	DefaultGeometrySource = "http"

	DefaultGlobeWidth     = 600
	DefaultGlobeHeight    = 600
	DefaultGlobeScale     = 280
	DefaultGlobeLongitude = -30
	DefaultGlobeLatitude  = -20

	DefaultSectorWidth  = 1000
	DefaultSectorHeight = 600
	DefaultOwnerLabel   = "HerCap"

	DefaultMaxSessions   = 256
	DefaultIdleTimeout   = 10 * time.Minute
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultInboxSize     = 64

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "hercap:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "hercap"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaTopic   = "portfolio.engagement"
	DefaultKafkaGroupID = "hercap-worker"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "hercap"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller are left unchanged.  It must
// be called after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 1 << 20
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 50
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 100
	}

	// gRPC
	if cfg.GRPC.Host == "" {
		cfg.GRPC.Host = DefaultServerHost
	}
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}

	// Feed
	if cfg.Feed.Source == "" {
		cfg.Feed.Source = DefaultFeedSource
	}
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = DefaultFeedURL
	}
	if cfg.Feed.Timeout == 0 {
		cfg.Feed.Timeout = DefaultFeedTimeout
	}
	if cfg.Feed.UserAgent == "" {
		cfg.Feed.UserAgent = DefaultUserAgent
	}

	// Geometry
	if cfg.Geometry.Source == "" {
		cfg.Geometry.Source = DefaultGeometrySource
	}
	if cfg.Geometry.URL == "" {
		cfg.Geometry.URL = DefaultGeometryURL
	}

	// Globe / Sector
	if cfg.Globe.Width == 0 {
		cfg.Globe.Width = DefaultGlobeWidth
	}
	if cfg.Globe.Height == 0 {
		cfg.Globe.Height = DefaultGlobeHeight
	}
	if cfg.Globe.InitialScale == 0 {
		cfg.Globe.InitialScale = DefaultGlobeScale
	}
	// A zero camera angle is a legitimate explicit choice, so the initial
	// rotation defaults are applied by the viper defaults in loader.go only.
	if cfg.Sector.Width == 0 {
		cfg.Sector.Width = DefaultSectorWidth
	}
	if cfg.Sector.Height == 0 {
		cfg.Sector.Height = DefaultSectorHeight
	}
	if cfg.Sector.OwnerLabel == "" {
		cfg.Sector.OwnerLabel = DefaultOwnerLabel
	}

	// Session
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = DefaultMaxSessions
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Session.FrameInterval == 0 {
		cfg.Session.FrameInterval = DefaultFrameInterval
	}
	if cfg.Session.InboxSize == 0 {
		cfg.Session.InboxSize = DefaultInboxSize
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// MinIO
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}

	// Log / Metrics
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

//Personal.AI order the ending

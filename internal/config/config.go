// Package config defines all configuration structures for the hercap portfolio
// explorer.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// GRPCConfig holds the gRPC health endpoint parameters.
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"` // registers reflection
}

// FeedConfig selects where the portfolio spreadsheet export is read from.
type FeedConfig struct {
	Source    string        `mapstructure:"source"` // "http" | "file" | "minio"
	URL       string        `mapstructure:"url"`
	Path      string        `mapstructure:"path"`
	Object    string        `mapstructure:"object"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"` // 0 disables the raw-body cache
}

// GeometryConfig selects the world boundary GeoJSON drawn on the globe.
type GeometryConfig struct {
	Source string `mapstructure:"source"` // "none" | "file" | "http" | "minio"
	URL    string `mapstructure:"url"`
	Path   string `mapstructure:"path"`
	Object string `mapstructure:"object"`
}

// GlobeConfig holds the geographic view's viewport and initial camera.
type GlobeConfig struct {
	Width            float64 `mapstructure:"width"`
	Height           float64 `mapstructure:"height"`
	InitialScale     float64 `mapstructure:"initial_scale"`
	InitialLongitude float64 `mapstructure:"initial_longitude"`
	InitialLatitude  float64 `mapstructure:"initial_latitude"`
}

// SectorConfig holds the sector diagram's default dimensions.
type SectorConfig struct {
	Width      float64 `mapstructure:"width"`
	Height     float64 `mapstructure:"height"`
	OwnerLabel string  `mapstructure:"owner_label"`
}

// SessionConfig bounds the interactive viewer sessions.
type SessionConfig struct {
	MaxSessions   int           `mapstructure:"max_sessions"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	InboxSize     int           `mapstructure:"inbox_size"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds object storage parameters for feed and geometry objects.
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
}

// KafkaConfig holds the engagement event stream parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	GroupID      string        `mapstructure:"group_id"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// LogConfig holds logger parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Geometry GeometryConfig `mapstructure:"geometry"`
	Globe    GlobeConfig    `mapstructure:"globe"`
	Sector   SectorConfig   `mapstructure:"sector"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

var (
	validFeedSources     = map[string]bool{"http": true, "file": true, "minio": true}
	validGeometrySources = map[string]bool{"none": true, "file": true, "http": true, "minio": true}
	validLogLevels       = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats      = map[string]bool{"json": true, "console": true}
)

// Validate checks the configuration for required fields and value ranges.
// It returns the first violation found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.GRPC.Enabled && (c.GRPC.Port <= 0 || c.GRPC.Port > 65535) {
		return fmt.Errorf("config: grpc.port must be in [1, 65535], got %d", c.GRPC.Port)
	}

	if !validFeedSources[c.Feed.Source] {
		return fmt.Errorf("config: feed.source must be one of http|file|minio, got %q", c.Feed.Source)
	}
	switch c.Feed.Source {
	case "http":
		if c.Feed.URL == "" {
			return fmt.Errorf("config: feed.url is required when feed.source is http")
		}
	case "file":
		if c.Feed.Path == "" {
			return fmt.Errorf("config: feed.path is required when feed.source is file")
		}
	case "minio":
		if c.Feed.Object == "" {
			return fmt.Errorf("config: feed.object is required when feed.source is minio")
		}
		if !c.MinIO.Enabled {
			return fmt.Errorf("config: minio.enabled must be true when feed.source is minio")
		}
	}
	if c.Feed.CacheTTL > 0 && !c.Redis.Enabled {
		return fmt.Errorf("config: feed.cache_ttl requires redis.enabled")
	}

	if !validGeometrySources[c.Geometry.Source] {
		return fmt.Errorf("config: geometry.source must be one of none|file|http|minio, got %q", c.Geometry.Source)
	}
	if c.Geometry.Source == "minio" && !c.MinIO.Enabled {
		return fmt.Errorf("config: minio.enabled must be true when geometry.source is minio")
	}

	if c.Globe.Width <= 0 || c.Globe.Height <= 0 {
		return fmt.Errorf("config: globe.width and globe.height must be positive")
	}
	if c.Globe.InitialScale < 150 || c.Globe.InitialScale > 800 {
		return fmt.Errorf("config: globe.initial_scale must be in [150, 800], got %g", c.Globe.InitialScale)
	}
	if c.Globe.InitialLatitude < -90 || c.Globe.InitialLatitude > 90 {
		return fmt.Errorf("config: globe.initial_latitude must be in [-90, 90], got %g", c.Globe.InitialLatitude)
	}
	if c.Sector.Width <= 0 || c.Sector.Height <= 0 {
		return fmt.Errorf("config: sector.width and sector.height must be positive")
	}

	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("config: session.max_sessions must be >= 1")
	}
	if c.Session.FrameInterval <= 0 {
		return fmt.Errorf("config: session.frame_interval must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must not be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("config: log.level must be one of debug|info|warn|error, got %q", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("config: log.format must be json|console, got %q", c.Log.Format)
	}
	return nil
}

// HTTPAddr returns host:port for the HTTP listener.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

//Personal.AI order the ending

// Package config provides configuration loading, defaults, and validation for
// the hercap portfolio explorer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "HERCAP"

var (
	ErrConfigFileNotFound = errors.New("config: file not found")
	ErrConfigParseError   = errors.New("config: parse error")
	ErrConfigValidation   = errors.New("config: validation failed")
)

// LoadOption customises a Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path      string
	overrides map[string]interface{}
}

// WithConfigPath reads the YAML file at path before applying env overrides.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// WithOverrides sets explicit key/value pairs (dotted keys) that win over both
// the file and the environment.  Used by CLI flags and tests.
func WithOverrides(kv map[string]interface{}) LoadOption {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]interface{}, len(kv))
		}
		for k, v := range kv {
			o.overrides[k] = v
		}
	}
}

// newViper builds a pre-configured Viper instance: YAML file type, HERCAP_ env
// prefix, automatic env binding, and a key replacer that maps "." → "_" so
// that nested keys like "feed.url" resolve to "HERCAP_FEED_URL".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)
	return v
}

// setViperDefaults registers every key with viper.  AutomaticEnv only binds
// keys viper already knows about, so this is what makes HERCAP_* overrides
// work for settings absent from the file.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_size", 1<<20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 50)
	v.SetDefault("server.rate_limit_burst", 100)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.host", DefaultServerHost)
	v.SetDefault("grpc.port", DefaultGRPCPort)
	v.SetDefault("grpc.debug", false)

	v.SetDefault("feed.source", DefaultFeedSource)
	v.SetDefault("feed.url", DefaultFeedURL)
	v.SetDefault("feed.path", "")
	v.SetDefault("feed.object", "")
	v.SetDefault("feed.timeout", DefaultFeedTimeout.String())
	v.SetDefault("feed.user_agent", DefaultUserAgent)
	v.SetDefault("feed.cache_ttl", "0s")

	v.SetDefault("geometry.source", DefaultGeometrySource)
	v.SetDefault("geometry.url", DefaultGeometryURL)
	v.SetDefault("geometry.path", "")
	v.SetDefault("geometry.object", "")

	v.SetDefault("globe.width", DefaultGlobeWidth)
	v.SetDefault("globe.height", DefaultGlobeHeight)
	v.SetDefault("globe.initial_scale", DefaultGlobeScale)
	v.SetDefault("globe.initial_longitude", DefaultGlobeLongitude)
	v.SetDefault("globe.initial_latitude", DefaultGlobeLatitude)

	v.SetDefault("sector.width", DefaultSectorWidth)
	v.SetDefault("sector.height", DefaultSectorHeight)
	v.SetDefault("sector.owner_label", DefaultOwnerLabel)

	v.SetDefault("session.max_sessions", DefaultMaxSessions)
	v.SetDefault("session.idle_timeout", DefaultIdleTimeout.String())
	v.SetDefault("session.frame_interval", DefaultFrameInterval.String())
	v.SetDefault("session.inbox_size", DefaultInboxSize)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", DefaultRedisKeyPrefix)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", DefaultMinIOBucket)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.topic", DefaultKafkaTopic)
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)
}

// Load builds a Config from (in increasing precedence) defaults, the optional
// YAML file, HERCAP_* environment variables and explicit overrides, then
// validates it.
//
// Environment variable naming convention:
//
//	HERCAP_<SECTION>_<FIELD>   e.g.  HERCAP_FEED_URL, HERCAP_REDIS_ADDR
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper()
	if o.path != "" {
		if err := readFile(v, o.path); err != nil {
			return nil, err
		}
	}
	for k, val := range o.overrides {
		v.Set(k, val)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromFile is shorthand for Load(WithConfigPath(path)).
func LoadFromFile(path string) (*Config, error) {
	return Load(WithConfigPath(path))
}

// LoadFromEnv builds a Config from HERCAP_* environment variables and
// defaults, with no config file.
func LoadFromEnv() (*Config, error) {
	return Load()
}

func readFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrConfigFileNotFound, path, err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrConfigParseError, path, err)
	}
	return nil
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed Config
// whenever the file is modified.  Only hot-reloadable settings (log level,
// rate limits, session bounds) should be applied by the callback.  A change
// that fails to parse or validate is reported through onError and does not
// reach onChange.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	if err := readFile(v, configPath); err != nil {
		return err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending

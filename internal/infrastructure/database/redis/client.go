// Package redis provides the Redis-backed pieces of hercap: a raw feed body
// cache, a cross-process refresh mutex and the engagement scoreboard.
package redis

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeServiceUnavailable, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "redis connection failed")
)

// RedisConfig mirrors go-redis options plus the hercap key prefix. Zero
// values are replaced with defaults on construction.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

func (c *RedisConfig) withDefaults() {
	setDur := func(d *time.Duration, v time.Duration) {
		if *d == 0 {
			*d = v
		}
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	setDur(&c.DialTimeout, 5*time.Second)
	setDur(&c.ReadTimeout, 3*time.Second)
	setDur(&c.WriteTimeout, 3*time.Second)
	setDur(&c.MinRetryBackoff, 8*time.Millisecond)
	setDur(&c.MaxRetryBackoff, 512*time.Millisecond)
	if c.KeyPrefix == "" {
		c.KeyPrefix = "hercap:"
	}
}

func (c *RedisConfig) options() *redis.Options {
	return &redis.Options{
		Addr:            c.Addr,
		Username:        c.Username,
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.PoolSize,
		MinIdleConns:    c.MinIdleConns,
		DialTimeout:     c.DialTimeout,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		MaxRetries:      c.MaxRetries,
		MinRetryBackoff: c.MinRetryBackoff,
		MaxRetryBackoff: c.MaxRetryBackoff,
	}
}

// Client guards a go-redis client with a closed flag and exposes only the
// commands hercap issues.
type Client struct {
	rdb    redis.UniversalClient
	config *RedisConfig
	logger logging.Logger
	closed atomic.Bool
}

// NewClient dials Redis and fails fast when the server does not answer PING
// within the dial timeout.
func NewClient(cfg *RedisConfig, log logging.Logger) (*Client, error) {
	cfg.withDefaults()
	rdb := redis.NewClient(cfg.options())
	client := NewClientFromUniversal(rdb, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}
	client.logger.Info("redis connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return client, nil
}

// NewClientFromUniversal wraps an existing go-redis client, as tests do with
// redismock.
func NewClientFromUniversal(rdb redis.UniversalClient, cfg *RedisConfig, log logging.Logger) *Client {
	if cfg == nil {
		cfg = &RedisConfig{}
	}
	cfg.withDefaults()
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, config: cfg, logger: log.Named("redis")}
}

// Key joins parts with ':' under the configured prefix.
func (c *Client) Key(parts ...string) string {
	return c.config.KeyPrefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("redis close failed", logging.Err(err))
		return err
	}
	c.logger.Info("redis closed")
	return nil
}

// Universal returns the wrapped client for script execution.
func (c *Client) Universal() redis.UniversalClient {
	return c.rdb
}

type settable interface{ SetErr(error) }

// guard fails cmd with ErrClientClosed and reports true once the client is
// closed.
func guard[T settable](c *Client, cmd T) (T, bool) {
	if !c.closed.Load() {
		return cmd, false
	}
	cmd.SetErr(ErrClientClosed)
	return cmd, true
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if cmd, closed := guard(c, redis.NewStringCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if cmd, closed := guard(c, redis.NewStatusCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.Set(ctx, key, value, ttl)
}

func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	if cmd, closed := guard(c, redis.NewBoolCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.SetNX(ctx, key, value, ttl)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if cmd, closed := guard(c, redis.NewIntCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.Del(ctx, keys...)
}

func (c *Client) PTTL(ctx context.Context, key string) *redis.DurationCmd {
	if cmd, closed := guard(c, redis.NewDurationCmd(ctx, time.Millisecond)); closed {
		return cmd
	}
	return c.rdb.PTTL(ctx, key)
}

func (c *Client) ZIncrBy(ctx context.Context, key string, by float64, member string) *redis.FloatCmd {
	if cmd, closed := guard(c, redis.NewFloatCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.ZIncrBy(ctx, key, by, member)
}

func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd {
	if cmd, closed := guard(c, redis.NewZSliceCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.ZRevRangeWithScores(ctx, key, start, stop)
}

func (c *Client) ZScore(ctx context.Context, key, member string) *redis.FloatCmd {
	if cmd, closed := guard(c, redis.NewFloatCmd(ctx)); closed {
		return cmd
	}
	return c.rdb.ZScore(ctx, key, member)
}

//Personal.AI order the ending

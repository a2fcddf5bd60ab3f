//go:build integration

// Package integration exercises hercap against a real Redis started with
// testcontainers.  Set HERCAP_INTEGRATION_TEST=1 to run; set
// HERCAP_TEST_REDIS_ADDR to reuse an existing server instead of a container.
package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/application/interaction"
	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/feed"
	"github.com/ben-daghir/hercap/internal/infrastructure/messaging/kafka"
	httpserver "github.com/ben-daghir/hercap/internal/interfaces/http"
	"github.com/ben-daghir/hercap/internal/interfaces/http/handlers"
	"github.com/ben-daghir/hercap/internal/testutil"
	"github.com/ben-daghir/hercap/pkg/client"
)

const (
	// EnvIntegrationEnabled controls whether integration tests run.
	EnvIntegrationEnabled = "HERCAP_INTEGRATION_TEST"

	// EnvRedisAddr points the tests at an existing Redis.
	EnvRedisAddr = "HERCAP_TEST_REDIS_ADDR"

	// SetupTimeout bounds container startup.
	SetupTimeout = 60 * time.Second
)

// SkipIfNoIntegration skips the calling test when the integration flag is unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// redisAddr returns the address of a Redis server for this test, starting a
// container when none is configured.
func redisAddr(t *testing.T) string {
	t.Helper()
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		return addr
	}

	ctx, cancel := context.WithTimeout(context.Background(), SetupTimeout)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(SetupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return host + ":" + port.Port()
}

// newRedis connects to the test Redis with a per-test key prefix so tests
// sharing a server do not see each other's keys.
func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	SkipIfNoIntegration(t)

	c, err := redis.NewClient(&redis.RedisConfig{
		Addr:      redisAddr(t),
		KeyPrefix: "hercap:it:" + t.Name() + ":",
	}, testutil.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c
}

// loopback hands published records straight to a consumer handler, standing
// in for the broker between the API server and the worker.
type loopback struct {
	handler kafka.MessageHandler
	offset  int64
}

func (l *loopback) Publish(ctx context.Context, msg *kafka.ProducerMessage) error {
	l.offset++
	return l.handler(ctx, &kafka.Message{
		Topic:     msg.Topic,
		Offset:    l.offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   msg.Headers,
		Timestamp: msg.Timestamp,
	})
}

// stack is an API server wired the way cmd/apiserver wires it, over the
// feed fixture and a real Redis.
type stack struct {
	Server    *httptest.Server
	Client    *client.Client
	Recorder  *engagement.Recorder
	Publisher engagement.Publisher
	Log       *testutil.MockLogger
}

func newStack(t *testing.T) *stack {
	t.Helper()
	rc := newRedis(t)
	log := testutil.NewMockLogger()

	cache := redis.NewRedisCache(rc, log)
	source := feed.NewCachedSource(feed.NewFileSource(testutil.FeedFixturePath()), cache, time.Minute, log,
		feed.WithRefreshLock(redis.NewMutex(rc, "feed-refresh", log)))
	store := portfolioapp.NewStore(feed.NewLoader(source, log), log)
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	svc := portfolioapp.NewService(store, nil, log)

	recorder := engagement.NewRecorder(redis.NewScoreboard(rc), log, nil)
	publisher := engagement.NewKafkaPublisher(&loopback{handler: recorder.HandleMessage}, "", "hercap-it", log, nil)

	factory := interaction.NewControllerFactory(svc, nil,
		config.GlobeConfig{
			Width:            config.DefaultGlobeWidth,
			Height:           config.DefaultGlobeHeight,
			InitialScale:     config.DefaultGlobeScale,
			InitialLongitude: config.DefaultGlobeLongitude,
			InitialLatitude:  config.DefaultGlobeLatitude,
		},
		config.SectorConfig{
			Width:      config.DefaultSectorWidth,
			Height:     config.DefaultSectorHeight,
			OwnerLabel: config.DefaultOwnerLabel,
		})
	manager := interaction.NewManager(config.SessionConfig{MaxSessions: 4}, factory,
		interaction.WithPublisher(publisher),
		interaction.WithLogger(log))
	t.Cleanup(manager.Shutdown)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		PortfolioHandler:  handlers.NewPortfolioHandler(svc, log),
		SessionHandler:    handlers.NewSessionHandler(manager, factory, log, nil),
		EngagementHandler: handlers.NewEngagementHandler(recorder, log),
		HealthHandler: handlers.NewHealthHandler("integration",
			handlers.FeedChecker(store),
			handlers.NewChecker("redis", rc.Ping)),
		Logger: log,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := client.NewClient(srv.URL, client.WithRetryMax(0))
	require.NoError(t, err)

	return &stack{Server: srv, Client: c, Recorder: recorder, Publisher: publisher, Log: log}
}

//Personal.AI order the ending

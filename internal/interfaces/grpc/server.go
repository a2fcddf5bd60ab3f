package grpc

import (
	"context"
	"net"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// FeedService is the health service name that tracks portfolio readiness.
// The empty name tracks the process as a whole.
const FeedService = "hercap.feed"

const (
	defaultGracefulTimeout = 10 * time.Second
	defaultProbeInterval   = 2 * time.Second
)

var defaultKeepaliveParams = keepalive.ServerParameters{
	MaxConnectionIdle:     15 * time.Minute,
	MaxConnectionAge:      30 * time.Minute,
	MaxConnectionAgeGrace: 5 * time.Second,
	Time:                  5 * time.Minute,
	Timeout:               1 * time.Second,
}

// ReadinessProbe reports whether the service can answer requests.
type ReadinessProbe func(ctx context.Context) bool

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger          logging.Logger
	metrics         *prometheus.AppMetrics
	gracefulTimeout time.Duration
	probeInterval   time.Duration
}

func WithLogger(l logging.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(o *serverOptions) { o.metrics = m }
}

func WithGracefulTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// WithProbeInterval sets how often WatchReadiness polls its probe.
func WithProbeInterval(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.probeInterval = d
		}
	}
}

// Server exposes the standard gRPC health service.  FeedService starts
// NOT_SERVING and follows the readiness probe once WatchReadiness runs.
type Server struct {
	grpcServer   *grpc.Server
	listener     net.Listener
	opts         *serverOptions
	healthServer *health.Server
	mu           sync.Mutex
	started      bool
}

// NewServer binds the listener and registers health and, in debug mode,
// reflection.
func NewServer(cfg *config.GRPCConfig, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.InvalidParam("grpc config must not be nil")
	}
	sopts := &serverOptions{
		gracefulTimeout: defaultGracefulTimeout,
		probeInterval:   defaultProbeInterval,
	}
	for _, o := range opts {
		o(sopts)
	}
	if sopts.logger == nil {
		sopts.logger = logging.NewNopLogger()
	}
	sopts.logger = sopts.logger.Named("grpc")

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "grpc listen failed").WithDetail(addr)
	}

	gs := grpc.NewServer(
		grpc.KeepaliveParams(defaultKeepaliveParams),
		grpc.ChainUnaryInterceptor(
			recoverUnary(sopts.logger),
			observeUnary(sopts.logger, sopts.metrics),
		),
		grpc.ChainStreamInterceptor(recoverStream(sopts.logger)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(FeedService, healthpb.HealthCheckResponse_NOT_SERVING)

	if cfg.Debug {
		reflection.Register(gs)
		sopts.logger.Info("grpc reflection registered")
	}

	return &Server{
		grpcServer:   gs,
		listener:     lis,
		opts:         sopts,
		healthServer: hs,
	}, nil
}

// Start serves until Stop.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeConflict, "grpc server already started")
	}
	s.started = true
	s.mu.Unlock()

	s.opts.logger.Info("grpc server listening", logging.String("addr", s.listener.Addr().String()))
	if err := s.grpcServer.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return errors.Wrap(err, errors.ErrCodeInternal, "grpc server failed")
	}
	return nil
}

// SetReady flips FeedService between SERVING and NOT_SERVING.
func (s *Server) SetReady(ready bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus(FeedService, st)
}

// WatchReadiness polls probe until ctx ends, mirroring its answer into
// FeedService.
func (s *Server) WatchReadiness(ctx context.Context, probe ReadinessProbe) {
	ticker := time.NewTicker(s.opts.probeInterval)
	defer ticker.Stop()

	last := false
	for {
		ready := probe(ctx)
		if ready != last {
			s.opts.logger.Info("feed readiness changed", logging.Any("ready", ready))
		}
		s.SetReady(ready)
		last = ready

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop marks everything NOT_SERVING, then stops gracefully, forcing the
// stop when the graceful period runs out.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return s.listener.Close()
	}

	s.opts.logger.Info("grpc server stopping")
	s.healthServer.Shutdown()

	gracefulCtx, cancel := context.WithTimeout(ctx, s.opts.gracefulTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.opts.logger.Info("grpc server stopped")
	case <-gracefulCtx.Done():
		s.opts.logger.Warn("grpc graceful stop timed out, forcing stop")
		s.grpcServer.Stop()
	}
	return nil
}

// Addr is the bound address, useful with port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// recoverPanic turns a handler panic into codes.Internal.
func recoverPanic(logger logging.Logger, method string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	logger.Error("grpc handler panicked",
		logging.String("method", method),
		logging.Any("panic", r),
		logging.String("stack", string(debug.Stack())))
	*err = status.Error(codes.Internal, "internal server error")
}

func recoverUnary(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer recoverPanic(logger, info.FullMethod, &err)
		return handler(ctx, req)
	}
}

func recoverStream(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer recoverPanic(logger, info.FullMethod, &err)
		return handler(srv, ss)
	}
}

// observeUnary logs every call and records it in m when set. Health checks
// log at debug since load balancers poll them constantly.
func observeUnary(logger logging.Logger, m *prometheus.AppMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		took := time.Since(start)
		code := status.Code(err).String()

		log := logger.Info
		if isHealthCheck(info.FullMethod) {
			log = logger.Debug
		}
		log("grpc request",
			logging.String("method", info.FullMethod),
			logging.String("code", code),
			logging.Duration("duration", took))

		if m != nil {
			service, method := splitMethodName(info.FullMethod)
			prometheus.RecordGRPCRequest(m, service, method, code, took)
		}
		return resp, err
	}
}

func isHealthCheck(method string) bool {
	return strings.HasPrefix(method, "/"+healthpb.Health_ServiceDesc.ServiceName+"/")
}

// splitMethodName splits "/package.Service/Method".
func splitMethodName(fullMethod string) (service, method string) {
	service, method, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if !ok {
		return "unknown", service
	}
	return service, method
}

//Personal.AI order the ending

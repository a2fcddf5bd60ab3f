package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Feed Layer
	FeedLoadsTotal     CounterVec
	FeedLoadDuration   HistogramVec
	FeedRowsTotal      CounterVec
	FeedCompanies      GaugeVec
	FeedCacheHitsTotal CounterVec

	// Interactive sessions
	SessionsActive      GaugeVec
	SessionEventsTotal  CounterVec
	FramesRenderedTotal CounterVec
	RenderDuration      HistogramVec
	MomentumLoopsTotal  CounterVec

	// gRPC health endpoint
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Engagement stream
	EngagementPublishedTotal CounterVec
	EngagementConsumedTotal  CounterVec

	// System Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultFeedDurationBuckets   = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultRenderDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1}
	DefaultSizeBuckets           = []float64{100, 1000, 10000, 100000, 1000000}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// Feed
	m.FeedLoadsTotal = collector.RegisterCounter("feed_loads_total", "Portfolio feed load attempts", "source", "status")
	m.FeedLoadDuration = collector.RegisterHistogram("feed_load_duration_seconds", "Portfolio feed fetch and parse duration", DefaultFeedDurationBuckets, "source")
	m.FeedRowsTotal = collector.RegisterCounter("feed_rows_total", "Feed data rows by outcome", "outcome")
	m.FeedCompanies = collector.RegisterGauge("feed_companies", "Companies in the loaded portfolio")
	m.FeedCacheHitsTotal = collector.RegisterCounter("feed_cache_total", "Raw feed cache lookups", "result")

	// Sessions
	m.SessionsActive = collector.RegisterGauge("sessions_active", "Open interactive sessions", "view")
	m.SessionEventsTotal = collector.RegisterCounter("session_events_total", "Input events dispatched to sessions", "view", "kind")
	m.FramesRenderedTotal = collector.RegisterCounter("frames_rendered_total", "Scenes rendered for sessions", "view")
	m.RenderDuration = collector.RegisterHistogram("render_duration_seconds", "Scene construction and encoding duration", DefaultRenderDurationBuckets, "view", "format")
	m.MomentumLoopsTotal = collector.RegisterCounter("momentum_loops_total", "Momentum animations started on the globe")

	// gRPC
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	// Engagement
	m.EngagementPublishedTotal = collector.RegisterCounter("engagement_published_total", "Engagement events published", "type", "status")
	m.EngagementConsumedTotal = collector.RegisterCounter("engagement_consumed_total", "Engagement events consumed by the worker", "type", "status")

	// System Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// NewNoopAppMetrics returns AppMetrics backed by NewNoopCollector.
func NewNoopAppMetrics() *AppMetrics {
	return NewAppMetrics(NewNoopCollector())
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordFeedLoad records one feed load attempt.  accepted and skipped are the
// row counts from the parse report and are ignored when err is non-nil.
func RecordFeedLoad(metrics *AppMetrics, source string, duration time.Duration, accepted, skipped int, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.FeedLoadsTotal.WithLabelValues(source, status).Inc()
	metrics.FeedLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		return
	}
	metrics.FeedRowsTotal.WithLabelValues("accepted").Add(float64(accepted))
	metrics.FeedRowsTotal.WithLabelValues("skipped").Add(float64(skipped))
	metrics.FeedCompanies.WithLabelValues().Set(float64(accepted))
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordFeedCache(metrics *AppMetrics, hit bool) {
	if hit {
		metrics.FeedCacheHitsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.FeedCacheHitsTotal.WithLabelValues("miss").Inc()
	}
}

func RecordRender(metrics *AppMetrics, view, format string, duration time.Duration) {
	metrics.FramesRenderedTotal.WithLabelValues(view).Inc()
	metrics.RenderDuration.WithLabelValues(view, format).Observe(duration.Seconds())
}

func RecordEngagement(metrics *AppMetrics, direction, eventType string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	if direction == "consumed" {
		metrics.EngagementConsumedTotal.WithLabelValues(eventType, status).Inc()
		return
	}
	metrics.EngagementPublishedTotal.WithLabelValues(eventType, status).Inc()
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending

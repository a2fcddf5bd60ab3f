package feed

import (
	"context"
	"time"

	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// Loader fetches and parses the feed.  It holds no state between calls; the
// fire-once behaviour lives in the application store.
type Loader struct {
	source  Source
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

type LoaderOption func(*Loader)

func WithLoaderMetrics(m *prometheus.AppMetrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

func NewLoader(source Source, log logging.Logger, opts ...LoaderOption) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	l := &Loader{
		source:  source,
		logger:  log.Named("feed"),
		metrics: prometheus.NewNoopAppMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the parsed companies.  Malformed rows are dropped silently.
func (l *Loader) Load(ctx context.Context) ([]portfolio.Company, error) {
	companies, _, err := l.LoadWithReport(ctx)
	return companies, err
}

// LoadWithReport is Load plus the parse report.
func (l *Loader) LoadWithReport(ctx context.Context) ([]portfolio.Company, ParseReport, error) {
	start := time.Now()
	body, err := l.source.Fetch(ctx)
	if err != nil {
		prometheus.RecordFeedLoad(l.metrics, l.source.Name(), time.Since(start), 0, 0, err)
		prometheus.RecordError(l.metrics, "feed", string(errors.GetCode(err)))
		l.logger.Error("Error fetching portfolio data",
			logging.String("source", l.source.Name()),
			logging.Err(err))
		return nil, ParseReport{}, err
	}

	companies, report := Parse(string(body))
	elapsed := time.Since(start)
	prometheus.RecordFeedLoad(l.metrics, l.source.Name(), elapsed, report.Accepted, report.Skipped, nil)

	l.logger.Info("portfolio feed loaded",
		logging.String("source", l.source.Name()),
		logging.Int("rows", report.Rows),
		logging.Int("accepted", report.Accepted),
		logging.Int("skipped", report.Skipped),
		logging.Duration("elapsed", elapsed))
	return companies, report, nil
}

// NewSource builds the Source selected by cfg.  objects may be nil unless
// cfg.Source is "minio".
func NewSource(cfg config.FeedConfig, objects ObjectGetter) (Source, error) {
	switch cfg.Source {
	case "", "http":
		return NewHTTPSource(cfg.URL, WithTimeout(cfg.Timeout), WithUserAgent(userAgentOrDefault(cfg.UserAgent))), nil
	case "file":
		if cfg.Path == "" {
			return nil, errors.InvalidParam("feed.path is required for the file source")
		}
		return NewFileSource(cfg.Path), nil
	case "minio":
		if objects == nil {
			return nil, errors.InvalidParam("feed source minio needs an object store")
		}
		return NewObjectSource(objects, cfg.Object), nil
	}
	return nil, errors.InvalidParam("unknown feed source: " + cfg.Source)
}

func userAgentOrDefault(ua string) string {
	if ua == "" {
		return defaultUserAgent
	}
	return ua
}

//Personal.AI order the ending

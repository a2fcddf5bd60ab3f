package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/prometheus"
	"github.com/ben-daghir/hercap/internal/interfaces/http/handlers"
	"github.com/ben-daghir/hercap/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers leave their routes unmounted.
type RouterConfig struct {
	// Handlers
	PortfolioHandler  *handlers.PortfolioHandler
	SessionHandler    *handlers.SessionHandler
	StreamHandler     *handlers.StreamHandler
	EngagementHandler *handlers.EngagementHandler
	HealthHandler     *handlers.HealthHandler

	// Middleware
	CORSMiddleware      *middleware.CORSMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the route tree: global middleware, public probes and
// metrics, and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.RateLimitMiddleware != nil {
		r.Use(cfg.RateLimitMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerPortfolioRoutes(api, cfg.PortfolioHandler)
		registerSessionRoutes(api, cfg.SessionHandler, cfg.StreamHandler)
		registerEngagementRoutes(api, cfg.EngagementHandler)
	})

	return r
}

// registerPortfolioRoutes mounts the read-only portfolio views.
func registerPortfolioRoutes(r chi.Router, h *handlers.PortfolioHandler) {
	if h == nil {
		return
	}
	r.Get("/portfolio", h.Portfolio)
	r.Get("/stages", h.Stages)
	r.Get("/sectors", h.Sectors)
	r.Route("/companies", func(cr chi.Router) {
		cr.Get("/", h.ListCompanies)
		cr.Get("/names", h.Names)
		cr.Get("/{companyID}", h.GetCompany)
	})
}

// registerSessionRoutes mounts stateless renders and the interactive
// session resources.
func registerSessionRoutes(r chi.Router, h *handlers.SessionHandler, stream *handlers.StreamHandler) {
	if h == nil {
		return
	}
	r.Get("/render/{view}", h.Render)
	r.Route("/sessions", func(sr chi.Router) {
		sr.Get("/", h.List)
		sr.Post("/", h.Create)

		sr.Route("/{sessionID}", func(item chi.Router) {
			item.Delete("/", h.Delete)
			item.Post("/input", h.Input)
			item.Get("/scene", h.Scene)
			if stream != nil {
				item.Get("/stream", stream.Stream)
			}
		})
	})
}

func registerEngagementRoutes(r chi.Router, h *handlers.EngagementHandler) {
	if h == nil {
		return
	}
	r.Get("/engagement", h.Top)
}

//Personal.AI order the ending

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// PortfolioHandler serves the read-only portfolio views.
type PortfolioHandler struct {
	svc    portfolioapp.Service
	logger logging.Logger
}

func NewPortfolioHandler(svc portfolioapp.Service, logger logging.Logger) *PortfolioHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PortfolioHandler{svc: svc, logger: logger.Named("http.portfolio")}
}

// Portfolio handles GET /portfolio.  It always answers 200 with the
// {data, loading, error} snapshot so a page can render its loading and
// failure states.
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Portfolio(r.Context()))
}

// ListCompanies handles GET /companies with optional stage, category, q,
// sort=name, offset and limit parameters.
func (h *PortfolioHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	input, err := parseListInput(r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	page, err := h.svc.ListCompanies(r.Context(), input)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseListInput(r *http.Request) (*portfolioapp.ListInput, error) {
	q := r.URL.Query()
	stage, err := parseStageParam(q.Get("stage"))
	if err != nil {
		return nil, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return nil, err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	return &portfolioapp.ListInput{
		Stage:      stage,
		Category:   strings.TrimSpace(q.Get("category")),
		Name:       strings.TrimSpace(q.Get("q")),
		Offset:     offset,
		Limit:      limit,
		SortByName: q.Get("sort") == "name",
	}, nil
}

// parseStageParam accepts a stage name in any case; "" and "all" mean no
// filter.
func parseStageParam(v string) (portfolio.Stage, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return "", nil
	}
	for _, st := range portfolio.Stages {
		if strings.EqualFold(v, string(st)) {
			return st, nil
		}
	}
	return "", errors.InvalidParam("unknown stage").WithDetail(v)
}

// Names handles GET /companies/names?pages=N: the first N pages of the
// alphabetical list plus the remaining count.
func (h *PortfolioHandler) Names(w http.ResponseWriter, r *http.Request) {
	pages, err := queryInt(r, "pages", 1)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	page, err := h.svc.NameView(r.Context(), pages)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PortfolioHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "companyID")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeAppError(w, h.logger, errors.InvalidParam("invalid company id").WithDetail(raw))
		return
	}
	c, err := h.svc.GetCompany(r.Context(), id)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *PortfolioHandler) Stages(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Stages(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stages": counts})
}

// Sectors handles GET /sectors: categories ranked by weighted score.
func (h *PortfolioHandler) Sectors(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.Sectors(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sectors": scores})
}

//Personal.AI order the ending

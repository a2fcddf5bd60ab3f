package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/application/interaction"
	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

type staticFetcher struct {
	companies []portfolio.Company
	err       error
}

func (f staticFetcher) Load(context.Context) ([]portfolio.Company, error) { return f.companies, f.err }

func testCompanies() []portfolio.Company {
	return []portfolio.Company{
		{ID: 1, Name: "Aurelia", Stage: portfolio.StageEarly, Location: "New York, NY", Primary: "Fintech", Secondary: portfolio.OptionalString("AI"), Website: portfolio.OptionalString("https://aurelia.example")},
		{ID: 2, Name: "Bloom", Stage: portfolio.StageGrowth, Location: "San Francisco, CA", Primary: "Climate", Tertiary: portfolio.OptionalString("AI")},
		{ID: 3, Name: "Cadence", Stage: portfolio.StageAngel, Location: "London, United Kingdom", Primary: "Media", Secondary: portfolio.OptionalString("AI")},
	}
}

func loadedStore(t *testing.T, f staticFetcher) *portfolioapp.Store {
	t.Helper()
	store := portfolioapp.NewStore(f, nil)
	_, _ = store.Load(context.Background())
	return store
}

func readyService(t *testing.T) portfolioapp.Service {
	t.Helper()
	return portfolioapp.NewService(loadedStore(t, staticFetcher{companies: testCompanies()}), nil, nil)
}

func testFactory(svc portfolioapp.Service) interaction.Factory {
	return interaction.NewControllerFactory(svc, nil,
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
}

// newManager uses a real frame timer so streamed frames arrive without a
// manual clock.
func newManager(t *testing.T, svc portfolioapp.Service, max int) *interaction.Manager {
	t.Helper()
	m := interaction.NewManager(config.SessionConfig{MaxSessions: max}, testFactory(svc),
		interaction.WithScheduler(interaction.NewTimerScheduler(time.Millisecond)))
	t.Cleanup(m.Shutdown)
	return m
}

// do serves one request through a chi router built by routes.
func do(t *testing.T, routes func(chi.Router), method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	routes(r)
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	return resp.Code
}

//Personal.AI order the ending

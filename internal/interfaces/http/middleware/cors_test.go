package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func corsRequest(h http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, "/api/v1/sessions", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	if preflight {
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	h.ServeHTTP(w, r)
	return w
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://hercap.example"}
	h := CORS(cfg)(okHandler())

	w := corsRequest(h, http.MethodOptions, "https://hercap.example", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://hercap.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_SimpleRequest(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://hercap.example"}
	h := CORS(cfg)(okHandler())

	w := corsRequest(h, http.MethodGet, "https://HERCAP.example", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://HERCAP.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Frame-Seq")
	assert.Equal(t, []string{"Origin"}, w.Header().Values("Vary"))
}

func TestCORS_DisallowedAndMissingOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://hercap.example"}
	h := CORS(cfg)(okHandler())

	w := corsRequest(h, http.MethodGet, "https://evil.example", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// A disallowed preflight reaches the router, which answers it.
	w = corsRequest(h, http.MethodOptions, "https://evil.example", true)
	assert.Equal(t, "ok", w.Body.String())

	w = corsRequest(h, http.MethodGet, "", false)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcards(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	w := corsRequest(CORS(cfg)(okHandler()), http.MethodGet, "https://any.example", false)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	cfg.AllowCredentials = true
	w = corsRequest(CORS(cfg)(okHandler()), http.MethodGet, "https://any.example", false)
	assert.Equal(t, "https://any.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	cfg = DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*.hercap.example"}
	cfg.AllowWildcard = true
	h := CORS(cfg)(okHandler())
	assert.Equal(t, "https://www.hercap.example",
		corsRequest(h, http.MethodGet, "https://www.hercap.example", false).Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, corsRequest(h, http.MethodGet, "https://hercap.example.evil", false).Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.AllowedMethods, http.MethodDelete)
}

//Personal.AI order the ending

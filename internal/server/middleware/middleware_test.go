package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/pkg/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func bufferLogger() (*zerolog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	return &logger, buf
}

func TestChainOrder(t *testing.T) {
	var calls []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(mark("outer"), mark("inner"))(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestRequestID(t *testing.T) {
	logger, buf := bufferLogger()
	var seen string
	h := RequestID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		logging.FromContext(r.Context()).Info().Msg("handled")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matrix", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-42", seen)
}

func TestLogger(t *testing.T) {
	logger, buf := bufferLogger()
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/api/v1/tools"`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestRecovery(t *testing.T) {
	logger, buf := bufferLogger()
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "Panic recovered")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		config     CORSConfig
		origin     string
		wantOrigin string
	}{
		{"allow all", DefaultCORSConfig(), "https://ome.github.io", "*"},
		{"allowed origin", CORSConfig{AllowedOrigins: []string{"https://ome.github.io"}}, "https://ome.github.io", "https://ome.github.io"},
		{"other origin", CORSConfig{AllowedOrigins: []string{"https://ome.github.io"}}, "https://evil.example", ""},
		{"wildcard entry", CORSConfig{AllowedOrigins: []string{"*"}}, "https://x.example", "https://x.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/matrix", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.config)(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/reload", nil)
		req.Header.Set("Origin", "https://ome.github.io")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		CORS(DefaultCORSConfig())(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestAuth(t *testing.T) {
	logger, _ := bufferLogger()
	config := AuthConfig{
		Enabled:        true,
		APIKey:         "s3cret",
		HeaderName:     "X-API-Key",
		ProtectedPaths: []string{"/api/v1/reload"},
	}
	tests := []struct {
		name    string
		config  AuthConfig
		path    string
		headers map[string]string
		want    int
	}{
		{"public path", config, "/api/v1/matrix", nil, http.StatusOK},
		{"missing key", config, "/api/v1/reload", nil, http.StatusUnauthorized},
		{"wrong key", config, "/api/v1/reload", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", config, "/api/v1/reload", map[string]string{"X-API-Key": "s3cret"}, http.StatusOK},
		{"bearer key", config, "/api/v1/reload/", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
		{"disabled", AuthConfig{ProtectedPaths: config.ProtectedPaths}, "/api/v1/reload", nil, http.StatusOK},
		{"enabled without key", AuthConfig{Enabled: true, ProtectedPaths: config.ProtectedPaths}, "/api/v1/reload", map[string]string{"X-API-Key": ""}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			Auth(tt.config, logger)(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	logger, buf := bufferLogger()
	h := RateLimit(NewRateLimiter(2, logger))(okHandler())

	send := func(addr, forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/versions", nil)
		req.RemoteAddr = addr
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001", ""))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5003", "192.0.2.7, 10.0.0.1"))
	assert.Contains(t, buf.String(), "Rate limit exceeded")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:443"
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req))
}

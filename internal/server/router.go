package server

import (
	"net/http"
	"strings"

	"github.com/lubianat/ome-ngff-tools/internal/server/handlers"
	"github.com/lubianat/ome-ngff-tools/internal/server/middleware"
	"github.com/lubianat/ome-ngff-tools/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(s.client, s.cache, s.logger, s.startTime)
	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// only restricts a handler to one method.
func only(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		fn(w, r)
	}
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := strings.TrimSuffix(s.config.PathPrefix, "/")

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/health", only(http.MethodGet, h.HandleHealth))
	if prefix != "" {
		mux.HandleFunc(prefix+"/health", only(http.MethodGet, h.HandleHealth))
	}
	mux.HandleFunc(prefix+"/ready", only(http.MethodGet, h.HandleReady))

	mux.HandleFunc(prefix+"/versions", only(http.MethodGet, h.HandleVersions))
	mux.HandleFunc(prefix+"/matrix", only(http.MethodGet, h.HandleMatrix))
	mux.HandleFunc(prefix+"/matrix/", only(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/matrix/"))
		switch len(parts) {
		case 0:
			h.HandleMatrix(w, r)
		case 1:
			h.HandleMatrixVersion(w, r, parts[0])
		default:
			response.NotFound(w, "Not found", r.URL.Path)
		}
	}))
	mux.HandleFunc(prefix+"/tools", only(http.MethodGet, h.HandleTools))
	mux.HandleFunc(prefix+"/tests", only(http.MethodGet, h.HandleTests))

	// Admin endpoints
	mux.HandleFunc(prefix+"/reload", only(http.MethodPost, h.HandleReload))
	mux.HandleFunc(prefix+"/stats", only(http.MethodGet, h.HandleStats))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Not found", r.URL.Path)
	})
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config
	prefix := strings.TrimSuffix(cfg.PathPrefix, "/")

	if cfg.RateLimit > 0 {
		handler = middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, s.logger))(handler)
	}

	if cfg.AuthEnabled {
		handler = middleware.Auth(middleware.AuthConfig{
			Enabled:        true,
			APIKey:         cfg.APIKey,
			HeaderName:     cfg.AuthHeader,
			ProtectedPaths: []string{prefix + "/reload", prefix + "/stats"},
		}, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Request IDs, logging and recovery are always on
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.RequestID(s.logger),
	)(handler)
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

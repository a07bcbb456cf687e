package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/lubianat/ome-ngff-tools/internal/server/response"
)

// HandleReload handles POST /api/v1/reload: drops the cache and rebuilds the
// matrix from the source.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	h.logger.Info().Str("source", h.client.Source()).Msg("cache cleared, rebuilding matrix")

	m, err := h.matrix(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, map[string]any{
		"status": "reloaded",
		"stats":  m.Stats,
	})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
		},
		"source": h.client.Source(),
		"cache":  h.cache.GetStats(),
	})
}

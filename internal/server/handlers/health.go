package handlers

import (
	"net/http"

	"github.com/lubianat/ome-ngff-tools/internal/server/response"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "ngffmatrix-api",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready. The service is ready once a matrix
// can be built from its source.
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	m, err := h.matrix(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("matrix not available")
		response.ServiceUnavailable(w, "Matrix not available")
		return
	}

	response.OK(w, map[string]any{
		"status": "ready",
		"source": h.client.Source(),
		"stats":  m.Stats,
		"cache":  h.cache.GetStats(),
	})
}

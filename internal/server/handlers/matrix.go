package handlers

import (
	"net/http"

	"github.com/lubianat/ome-ngff-tools/internal/server/filter"
	"github.com/lubianat/ome-ngff-tools/internal/server/response"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

// VersionSummary is one row of the version list.
type VersionSummary struct {
	Version  string `json:"version"`
	Features int    `json:"features"`
	Results  int    `json:"results"`
}

// HandleVersions handles GET /api/v1/versions: versions newest first with
// feature and result counts.
func (h *Handlers) HandleVersions(w http.ResponseWriter, r *http.Request) {
	m, err := h.matrix(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	out := make([]VersionSummary, 0, len(m.Sections))
	for _, s := range m.Sections {
		results := 0
		for _, e := range s.Entries {
			results += len(e.Results)
		}
		out = append(out, VersionSummary{Version: s.Version, Features: len(s.Entries), Results: results})
	}
	response.OK(w, map[string]any{
		"versions": out,
		"count":    len(out),
	})
}

// HandleMatrix handles GET /api/v1/matrix. Query parameters tool, status and
// feature narrow every section.
func (h *Handlers) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseEntryFilter(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	m, err := h.matrix(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, f.Matrix(m))
}

// HandleMatrixVersion handles GET /api/v1/matrix/{version}.
func (h *Handlers) HandleMatrixVersion(w http.ResponseWriter, r *http.Request, version string) {
	f, err := filter.ParseEntryFilter(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	m, err := h.matrix(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	section, ok := m.Section(version)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("version", version))
		return
	}
	response.OK(w, map[string]any{
		"version": section.Version,
		"columns": f.Columns(m.Columns),
		"entries": f.Apply(section.Entries),
	})
}

// HandleTools handles GET /api/v1/tools: the matrix columns in display order.
func (h *Handlers) HandleTools(w http.ResponseWriter, r *http.Request) {
	m, err := h.matrix(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, map[string]any{
		"tools": m.Columns,
		"count": len(m.Columns),
	})
}

// HandleTests handles GET /api/v1/tests: the newest result per feature and
// tool across the dated test documents.
func (h *Handlers) HandleTests(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseEntryFilter(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	entries, err := h.tests(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	entries = f.Apply(entries)
	response.OK(w, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// Package filter parses query parameters that narrow matrix and test entries.
package filter

import (
	"net/http"
	"strings"

	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// EntryFilter selects entries and the tool columns they carry.
type EntryFilter struct {
	// Tools keeps only these tool columns, matched by normalized id.
	Tools []string
	// Statuses keeps entries where at least one kept tool has one of these statuses.
	Statuses []matrix.Status
	// Feature keeps entries whose slug or name contains this text.
	Feature string
}

// ParseEntryFilter reads tool, status and feature from the query. tool and
// status accept comma-separated lists.
func ParseEntryFilter(r *http.Request) (EntryFilter, error) {
	q := r.URL.Query()
	return New(splitList(q.Get("tool")), splitList(q.Get("status")), q.Get("feature"))
}

// New builds a filter, rejecting unknown statuses. Empty tool and status
// values are ignored.
func New(tools, statuses []string, feature string) (EntryFilter, error) {
	f := EntryFilter{Feature: strings.TrimSpace(feature)}
	for _, t := range tools {
		if t = strings.TrimSpace(t); t != "" {
			f.Tools = append(f.Tools, t)
		}
	}
	for _, s := range statuses {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		status := matrix.Status(strings.ToLower(s))
		if !status.Valid() {
			return EntryFilter{}, errors.NewValidationError("status", s,
				"must be one of supported, fails, ignored, missing")
		}
		f.Statuses = append(f.Statuses, status)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsZero reports whether the filter keeps everything.
func (f EntryFilter) IsZero() bool {
	return len(f.Tools) == 0 && len(f.Statuses) == 0 && f.Feature == ""
}

// KeepTool reports whether the column of toolID is kept.
func (f EntryFilter) KeepTool(toolID string) bool {
	if len(f.Tools) == 0 {
		return true
	}
	key := matrix.NormalizeKey(toolID)
	for _, t := range f.Tools {
		if matrix.NormalizeKey(t) == key {
			return true
		}
	}
	return false
}

// Apply returns the kept entries with their results and tool metadata
// narrowed to the kept tools. The input is not modified.
func (f EntryFilter) Apply(entries []matrix.Entry) []matrix.Entry {
	if f.IsZero() {
		return entries
	}
	needle := strings.ToLower(f.Feature)
	out := make([]matrix.Entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Slug), needle) &&
			!strings.Contains(strings.ToLower(e.DisplayName()), needle) {
			continue
		}
		kept := f.narrow(e)
		if len(f.Statuses) > 0 && !f.matchesStatus(kept) {
			continue
		}
		out = append(out, kept)
	}
	return out
}

func (f EntryFilter) narrow(e matrix.Entry) matrix.Entry {
	if len(f.Tools) == 0 {
		return e
	}
	results := make(map[string]matrix.ResultCell)
	for id, cell := range e.Results {
		if f.KeepTool(id) {
			results[id] = cell
		}
	}
	meta := make(map[string]matrix.ToolMeta)
	for id, m := range e.ToolMeta {
		if f.KeepTool(id) {
			meta[id] = m
		}
	}
	e.Results = results
	e.ToolMeta = meta
	return e
}

// matchesStatus checks the tool metadata, where missing results are
// classified too.
func (f EntryFilter) matchesStatus(e matrix.Entry) bool {
	for _, m := range e.ToolMeta {
		for _, s := range f.Statuses {
			if m.Status == s {
				return true
			}
		}
	}
	return false
}

// Columns keeps the matrix columns of kept tools.
func (f EntryFilter) Columns(columns []matrix.Column) []matrix.Column {
	if len(f.Tools) == 0 {
		return columns
	}
	out := make([]matrix.Column, 0, len(columns))
	for _, c := range columns {
		if f.KeepTool(c.Tool.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Matrix returns a copy of m with every section and the columns narrowed.
// The stats of the full matrix are kept.
func (f EntryFilter) Matrix(m *matrix.Matrix) *matrix.Matrix {
	if m == nil || f.IsZero() {
		return m
	}
	out := &matrix.Matrix{
		Versions: m.Versions,
		Columns:  f.Columns(m.Columns),
		Sections: make([]matrix.Section, 0, len(m.Sections)),
		Stats:    m.Stats,
	}
	for _, s := range m.Sections {
		out.Sections = append(out.Sections, matrix.Section{Version: s.Version, Entries: f.Apply(s.Entries)})
	}
	return out
}

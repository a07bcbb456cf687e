package matrix

import (
	"context"

	"github.com/lubianat/ome-ngff-tools/pkg/logging"
)

// Inputs are the decoded documents a versioned matrix is built from.
type Inputs struct {
	// Features is the feature catalog.
	Features any
	// ToolFiles are the per-tool test files.
	ToolFiles []Document
	// Viewers is the canonical viewer list fixing the column order. When it
	// yields no tools, the tools of ToolFiles in file order are used instead.
	Viewers any
	// ToolRef supplies tool test instructions missing from the tool records.
	ToolRef any
}

// Column is one tool column of the matrix.
type Column struct {
	Tool         Tool   `json:"tool" yaml:"tool"`
	Label        string `json:"label" yaml:"label"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// Section is the table of one version.
type Section struct {
	Version string  `json:"version" yaml:"version"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Stats summarizes a matrix.
type Stats struct {
	Versions int `json:"versions" yaml:"versions"`
	Tools    int `json:"tools" yaml:"tools"`
	Features int `json:"features" yaml:"features"`
	Results  int `json:"results" yaml:"results"`
}

// Matrix is the versioned feature by tool compatibility matrix.
type Matrix struct {
	Versions []string  `json:"versions" yaml:"versions"`
	Columns  []Column  `json:"columns" yaml:"columns"`
	Sections []Section `json:"sections" yaml:"sections"`
	Stats    Stats     `json:"stats" yaml:"stats"`
}

// Section returns the section of version.
func (m *Matrix) Section(version string) (Section, bool) {
	if m == nil {
		return Section{}, false
	}
	for _, s := range m.Sections {
		if s.Version == version {
			return s, true
		}
	}
	return Section{}, false
}

// ToolIDs returns the column tool ids in order.
func (m *Matrix) ToolIDs() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		out[i] = c.Tool.ID
	}
	return out
}

// Build assembles the versioned matrix: versions from the feature catalog,
// results from the tool files, columns ordered by the viewer list.
func Build(ctx context.Context, in Inputs) *Matrix {
	logger := logging.FromContext(ctx)

	catalog := BuildVersions(ctx, in.Features)
	tools, results := CollectResults(ctx, catalog, in.ToolFiles)

	var viewers []Tool
	for _, m := range NormalizeToolList(in.Viewers) {
		viewers = append(viewers, ToolFromMap(m))
	}
	if len(viewers) == 0 {
		viewers = tools.Tools()
	}
	order := BuildToolOrder(viewers, tools)
	refs := BuildToolRefIndex(in.ToolRef)

	out := &Matrix{
		Versions: append([]string(nil), catalog.Order...),
		Columns:  make([]Column, 0, len(order)),
	}
	for _, id := range order {
		tool, _ := tools.Get(id)
		instructions := tool.TestInstructions
		if instructions == "" {
			for _, v := range viewers {
				if NormalizeKey(v.ID) == NormalizeKey(id) && v.TestInstructions != "" {
					instructions = v.TestInstructions
					break
				}
			}
		}
		if instructions == "" {
			if ref, ok := refs.Lookup(id); ok {
				instructions = ref.TestInstructions
			}
		}
		out.Columns = append(out.Columns, Column{Tool: tool, Label: tool.DisplayName(), Instructions: instructions})
	}

	features := make(map[string]bool)
	for _, version := range catalog.Order {
		bucket, _ := catalog.Bucket(version)
		for _, fe := range bucket.Features {
			features[NormalizeKey(fe.Slug)] = true
		}
		out.Sections = append(out.Sections, Section{
			Version: version,
			Entries: BindVersion(bucket, order, tools, results),
		})
	}
	out.Stats = Stats{
		Versions: len(catalog.Order),
		Tools:    len(order),
		Features: len(features),
		Results:  results.Len(),
	}

	logger.Debug().
		Int("versions", out.Stats.Versions).
		Int("tools", out.Stats.Tools).
		Int("features", out.Stats.Features).
		Msg("built compatibility matrix")
	return out
}

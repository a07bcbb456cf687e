package matrix

import (
	"context"
	"path"
	"regexp"
	"time"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
)

// ToolFile is a per-tool test file: the tool's own record and its tests keyed
// by test id.
type ToolFile struct {
	Path  string
	Info  *document.Map
	Tests *document.Map
}

var yamlExt = regexp.MustCompile(`(?i)\.ya?ml$`)

// DeriveToolID returns the id of a tool record: its id, else its name, else the
// file name without a .yml/.yaml extension. Empty when none is available.
func DeriveToolID(info *document.Map, filePath string) string {
	if id := info.String("id"); id != "" {
		return id
	}
	if name := info.String("name"); name != "" {
		return name
	}
	if filePath == "" {
		return ""
	}
	return yamlExt.ReplaceAllString(path.Base(filePath), "")
}

// ParseToolFile reads a decoded tool file. Files with tool_info or test_info
// keys are split accordingly. Otherwise a list contributes its first tool
// record and a mapping is the tool record itself. The tool record always ends
// up with an id when one can be derived. ok is false for an empty document.
func ParseToolFile(raw any, filePath string) (tf *ToolFile, ok bool) {
	if !document.Truthy(raw) {
		return nil, false
	}
	tf = &ToolFile{Path: filePath, Tests: document.NewMap()}

	m, isMap := document.AsMap(raw)
	switch {
	case isMap && (document.Truthy(m.Value("tool_info")) || document.Truthy(m.Value("test_info"))):
		tf.Info, _ = m.Map("tool_info")
		if tests, ok := m.Map("test_info"); ok {
			tf.Tests = tests
		}
	case isMap:
		tf.Info = m
	default:
		if tools := NormalizeToolList(raw); len(tools) > 0 {
			tf.Info = tools[0]
		}
	}

	id := DeriveToolID(tf.Info, filePath)
	if tf.Info == nil {
		tf.Info = document.NewMap()
		if id != "" {
			tf.Info.Set("id", id)
			tf.Info.Set("name", id)
		}
		return tf, true
	}
	tf.Info = tf.Info.Clone()
	if id != "" && !document.Truthy(tf.Info.Value("id")) {
		tf.Info.Set("id", id)
	}
	return tf, true
}

// MergeToolInfo overlays primary on fallback. The id comes from primary, then
// fallback; the name defaults to the id.
func MergeToolInfo(primary, fallback *document.Map) *document.Map {
	merged := fallback.Clone().Assign(primary)
	if !document.Truthy(merged.Value("id")) {
		id := primary.String("id")
		if id == "" {
			id = fallback.String("id")
		}
		if id != "" {
			merged.Set("id", id)
		}
	}
	if !document.Truthy(merged.Value("name")) && merged.String("id") != "" {
		merged.Set("name", merged.String("id"))
	}
	return merged
}

// ToolSet is the set of tools known from tool files, in first-seen order.
type ToolSet struct {
	order []string
	byID  map[string]*document.Map
	byKey map[string]string
}

// NewToolSet creates an empty tool set.
func NewToolSet() *ToolSet {
	return &ToolSet{byID: make(map[string]*document.Map), byKey: make(map[string]string)}
}

// Add records a tool. A tool seen before keeps its fields; the new record only
// fills its gaps. Records without an id are ignored.
func (s *ToolSet) Add(info *document.Map) string {
	id := info.String("id")
	if id == "" {
		return ""
	}
	if existing, ok := s.byID[id]; ok {
		s.byID[id] = MergeToolInfo(existing, info)
		return id
	}
	s.order = append(s.order, id)
	s.byID[id] = MergeToolInfo(info, nil)
	if key := NormalizeKey(id); key != "" {
		if _, taken := s.byKey[key]; !taken {
			s.byKey[key] = id
		}
	}
	return id
}

// IDs returns the tool ids in first-seen order.
func (s *ToolSet) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of tools.
func (s *ToolSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get returns the tool with exactly this id.
func (s *ToolSet) Get(id string) (Tool, bool) {
	if s == nil {
		return Tool{}, false
	}
	info, ok := s.byID[id]
	if !ok {
		return Tool{}, false
	}
	return ToolFromMap(info), true
}

// Match returns the id of the tool whose normalized id equals that of key.
func (s *ToolSet) Match(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	id, ok := s.byKey[NormalizeKey(key)]
	return id, ok
}

// Tools returns every tool in first-seen order.
func (s *ToolSet) Tools() []Tool {
	out := make([]Tool, 0, s.Len())
	for _, id := range s.IDs() {
		t, _ := s.Get(id)
		out = append(out, t)
	}
	return out
}

// Cell is a tool's result for one feature of one version, with the test it
// came from.
type Cell struct {
	Result ResultCell
	Test   Provenance
	day    time.Time
}

// newer reports whether a test dated day with number replaces c.
func (c Cell) newer(day time.Time, number int) bool {
	if day.Equal(c.day) {
		return number > c.Test.Number
	}
	return day.After(c.day)
}

// ResultSet holds the cells collected from tool files by version, tool and
// canonical feature slug.
type ResultSet struct {
	cells map[string]map[string]map[string]Cell
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{cells: make(map[string]map[string]map[string]Cell)}
}

// Get returns the cell for (version, tool, slug).
func (r *ResultSet) Get(version, toolID, slug string) (Cell, bool) {
	if r == nil {
		return Cell{}, false
	}
	c, ok := r.cells[version][toolID][slug]
	return c, ok
}

// Len returns the number of cells.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, byTool := range r.cells {
		for _, bySlug := range byTool {
			n += len(bySlug)
		}
	}
	return n
}

// offer stores cell unless a newer one is already held for the same key.
func (r *ResultSet) offer(version, toolID, slug string, cell Cell) {
	byTool, ok := r.cells[version]
	if !ok {
		byTool = make(map[string]map[string]Cell)
		r.cells[version] = byTool
	}
	bySlug, ok := byTool[toolID]
	if !ok {
		bySlug = make(map[string]Cell)
		byTool[toolID] = bySlug
	}
	if existing, ok := bySlug[slug]; ok && !existing.newer(cell.day, cell.Test.Number) {
		return
	}
	bySlug[slug] = cell
}

// CollectResults reads per-tool test files against a version catalog.
//
// Every test's per-version result blocks are normalized and each feature is
// resolved through that version's aliases; results for unknown versions or
// features are dropped. For a given (version, tool, feature) the result of
// the newest test wins, and among tests of the same day the one with the
// highest test number. Tools are returned in file order.
func CollectResults(ctx context.Context, catalog *VersionCatalog, files []Document) (*ToolSet, *ResultSet) {
	logger := logging.FromContext(ctx)
	tools := NewToolSet()
	results := NewResultSet()

	for _, file := range files {
		tf, ok := ParseToolFile(file.Raw, file.FileName)
		if !ok {
			logger.Debug().Str("file", file.FileName).Msg("skipping empty tool file")
			continue
		}
		toolID := tools.Add(tf.Info)
		if toolID == "" {
			logger.Warn().Str("file", file.FileName).Msg("tool file has no usable id")
			continue
		}

		tf.Tests.Range(func(testID string, raw any) bool {
			test, ok := document.AsMap(raw)
			if !ok {
				return true
			}
			number := ParseTestNumber(testID)
			day := DayStamp(test.Value("date"), "")
			blocks, _ := test.Map("features")
			blocks.Range(func(version string, block any) bool {
				bucket, ok := catalog.Bucket(version)
				if !ok {
					logger.Debug().
						Str("tool", toolID).
						Str("test", testID).
						Str("version", version).
						Msg("dropping results for unknown version")
					return true
				}
				NormalizeResultBlock(block).Range(func(slug string, result any) bool {
					entry, ok := bucket.Lookup(slug)
					if !ok {
						logger.Debug().
							Str("tool", toolID).
							Str("version", version).
							Str("feature", slug).
							Msg("dropping result for unknown feature")
						return true
					}
					cell, _ := CellFromValue(result)
					results.offer(version, toolID, entry.Slug, Cell{
						Result: cell,
						day:    day,
						Test: Provenance{
							SourceFile:         file.FileName,
							TestID:             testID,
							Number:             number,
							Date:               test.String("date"),
							Notes:              test.String("notes"),
							ToolVersion:        test.String("tool_version"),
							AdditionalVersions: test.Value("additional_versions"),
						},
					})
					return true
				})
				return true
			})
			return true
		})
	}
	return tools, results
}

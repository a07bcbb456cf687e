package matrix

import (
	"encoding/json"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

// Result field names. Nothing else on a record is part of a result cell.
const (
	FieldSupported        = "supported"
	FieldOpens            = "opens"
	FieldNotes            = "notes"
	FieldIssueURL         = "issue_url"
	FieldViewerURL        = "viewer_url"
	FieldViewerURLPostfix = "viewer_url_postfix"
)

// ResultFields lists the known result field names in canonical order.
var ResultFields = []string{
	FieldSupported,
	FieldOpens,
	FieldNotes,
	FieldIssueURL,
	FieldViewerURL,
	FieldViewerURLPostfix,
}

// IsResultField reports whether key is one of ResultFields. Case-sensitive.
func IsResultField(key string) bool {
	for _, f := range ResultFields {
		if f == key {
			return true
		}
	}
	return false
}

// Tristate is a boolean that may be unknown.
type Tristate int8

const (
	// Unknown is neither true nor false.
	Unknown Tristate = iota
	// Yes is literal true or "yes"/"true".
	Yes
	// No is literal false or "no"/"false".
	No
)

// ParseTristate coerces a decoded value. Strings are matched case-insensitively
// against yes/true and no/false; any other non-boolean value is Unknown.
func ParseTristate(v any) Tristate {
	switch {
	case document.IsTrue(v):
		return Yes
	case document.IsFalse(v):
		return No
	default:
		return Unknown
	}
}

// Value returns true, false or nil.
func (t Tristate) Value() any {
	switch t {
	case Yes:
		return true
	case No:
		return false
	default:
		return nil
	}
}

// MarshalJSON encodes Unknown as null.
func (t Tristate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}

// MarshalYAML encodes Unknown as null.
func (t Tristate) MarshalYAML() (any, error) {
	return t.Value(), nil
}

// ResultCell is one tool's outcome for one feature.
type ResultCell struct {
	Supported        Tristate `json:"supported,omitempty" yaml:"supported,omitempty"`
	Opens            Tristate `json:"opens,omitempty" yaml:"opens,omitempty"`
	Notes            string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	IssueURL         string   `json:"issue_url,omitempty" yaml:"issue_url,omitempty"`
	ViewerURL        string   `json:"viewer_url,omitempty" yaml:"viewer_url,omitempty"`
	ViewerURLPostfix string   `json:"viewer_url_postfix,omitempty" yaml:"viewer_url_postfix,omitempty"`
}

// CellFromValue decodes a result cell from a mapping, reading only the known
// result fields. ok is false when v is not a mapping.
func CellFromValue(v any) (cell ResultCell, ok bool) {
	m, ok := document.AsMap(v)
	if !ok {
		return ResultCell{}, false
	}
	return ResultCell{
		Supported:        ParseTristate(m.Value(FieldSupported)),
		Opens:            ParseTristate(m.Value(FieldOpens)),
		Notes:            m.String(FieldNotes),
		IssueURL:         m.String(FieldIssueURL),
		ViewerURL:        m.String(FieldViewerURL),
		ViewerURLPostfix: m.String(FieldViewerURLPostfix),
	}, true
}

// Feature is one entry of the feature catalog.
type Feature struct {
	Slug        string `json:"slug" yaml:"slug"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SampleURL   string `json:"sample_url,omitempty" yaml:"sample_url,omitempty"`
	SampleName  string `json:"sample_name,omitempty" yaml:"sample_name,omitempty"`
	SampleHTML  string `json:"sample_html,omitempty" yaml:"sample_html,omitempty"`
	HowToTest   string `json:"how_to_test,omitempty" yaml:"how_to_test,omitempty"`
}

// FeatureFromMap reads a feature record. Instructions come from how_to_test,
// falling back to test_instructions.
func FeatureFromMap(m *document.Map) Feature {
	howTo := NormalizeInstructions(m.Value("how_to_test"))
	if howTo == "" {
		howTo = NormalizeInstructions(m.Value("test_instructions"))
	}
	return Feature{
		Slug:        m.String("slug"),
		Name:        m.String("name"),
		Description: m.String("description"),
		SampleURL:   m.String("sample_url"),
		SampleName:  m.String("sample_name"),
		SampleHTML:  m.String("sample_html"),
		HowToTest:   howTo,
	}
}

// DisplayName is the name, or the slug when the feature has none.
func (f Feature) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Slug
}

// WithFallback fills the empty fields of f from ref.
func (f Feature) WithFallback(ref Feature) Feature {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&f.Slug, ref.Slug)
	fill(&f.Name, ref.Name)
	fill(&f.Description, ref.Description)
	fill(&f.SampleURL, ref.SampleURL)
	fill(&f.SampleName, ref.SampleName)
	fill(&f.SampleHTML, ref.SampleHTML)
	fill(&f.HowToTest, ref.HowToTest)
	return f
}

// Tool is a viewer or library the matrix reports on. Fields keeps every
// attribute of the source record, including the ones without a typed field.
type Tool struct {
	ID               string
	Name             string
	Label            string
	ViewerURL        string
	ViewerURLPostfix string
	TestInstructions string
	WiderCol         bool
	Fields           *document.Map
}

// ToolFromMap reads a tool record.
func ToolFromMap(m *document.Map) Tool {
	return Tool{
		ID:               m.String("id"),
		Name:             m.String("name"),
		Label:            m.String("label"),
		ViewerURL:        m.String(FieldViewerURL),
		ViewerURLPostfix: m.String(FieldViewerURLPostfix),
		TestInstructions: NormalizeInstructions(m.Value("test_instructions")),
		WiderCol:         document.Truthy(m.Value("widercol")),
		Fields:           m.Clone(),
	}
}

// DisplayName is the label, then the name, then the id.
func (t Tool) DisplayName() string {
	switch {
	case t.Label != "":
		return t.Label
	case t.Name != "":
		return t.Name
	default:
		return t.ID
	}
}

// Map returns the tool's attributes with id and name set.
func (t Tool) Map() *document.Map {
	out := document.NewMap()
	out.Set("id", t.ID)
	if t.Name != "" {
		out.Set("name", t.Name)
	}
	t.Fields.Range(func(k string, v any) bool {
		if k != "id" && k != "name" {
			out.Set(k, v)
		}
		return true
	})
	if t.TestInstructions != "" {
		out.Set("test_instructions", t.TestInstructions)
	}
	return out
}

// MarshalJSON writes the tool's attribute map.
func (t Tool) MarshalJSON() ([]byte, error) {
	return t.Map().MarshalJSON()
}

// MarshalYAML writes the tool's attribute map.
func (t Tool) MarshalYAML() (any, error) {
	return t.Map().MarshalYAML()
}

// Provenance records which test produced a result cell.
type Provenance struct {
	SourceFile         string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	TestID             string `json:"id,omitempty" yaml:"id,omitempty"`
	Number             int    `json:"number" yaml:"number"`
	Date               string `json:"date,omitempty" yaml:"date,omitempty"`
	Author             string `json:"author,omitempty" yaml:"author,omitempty"`
	Notes              string `json:"notes,omitempty" yaml:"notes,omitempty"`
	ToolVersion        string `json:"tool_version,omitempty" yaml:"tool_version,omitempty"`
	AdditionalVersions any    `json:"additional_versions,omitempty" yaml:"additional_versions,omitempty"`
}

// HasDetails reports whether there is version or note information worth
// showing next to a cell.
func (p *Provenance) HasDetails() bool {
	return p != nil && (p.ToolVersion != "" || document.Truthy(p.AdditionalVersions) || p.Notes != "")
}

// FeatureVersion identifies a feature within a version bucket.
type FeatureVersion struct {
	Slug    string `json:"slug" yaml:"slug"`
	Version string `json:"version" yaml:"version"`
}

// ToolMeta accompanies one cell of an entry.
type ToolMeta struct {
	Tool      Tool            `json:"tool" yaml:"tool"`
	Test      *Provenance     `json:"test" yaml:"test"`
	Feature   *FeatureVersion `json:"feature,omitempty" yaml:"feature,omitempty"`
	Status    Status          `json:"status" yaml:"status"`
	ViewerURL string          `json:"viewer_url,omitempty" yaml:"viewer_url,omitempty"`
}

// Entry is one output row: a feature with its per-tool results.
type Entry struct {
	Slug     string                `json:"slug" yaml:"slug"`
	Feature  Feature               `json:"feature" yaml:"feature"`
	Results  map[string]ResultCell `json:"results" yaml:"results"`
	ToolMeta map[string]ToolMeta   `json:"tool_meta" yaml:"tool_meta"`
}

// DisplayName is the feature's display name, or the entry slug.
func (e Entry) DisplayName() string {
	if e.Feature.Name != "" {
		return e.Feature.Name
	}
	return e.Slug
}

// Result returns the cell for tool, if any.
func (e Entry) Result(tool string) (ResultCell, bool) {
	cell, ok := e.Results[tool]
	return cell, ok
}

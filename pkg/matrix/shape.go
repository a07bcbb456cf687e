package matrix

import (
	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

// TestWrapperKey names the container some test documents nest their record under.
const TestWrapperKey = "feature_test"

// NormalizeToolList turns a list whose items are either full records with an
// id or single-key shorthands ({<id>: {...}} or {<id>: null}) into records that
// all carry an id. Anything that is not a list yields an empty result; items
// that are not mappings, or are empty, are skipped.
func NormalizeToolList(v any) []*document.Map {
	list, ok := document.AsList(v)
	if !ok {
		return nil
	}
	out := make([]*document.Map, 0, len(list))
	for _, item := range list {
		m, ok := document.AsMap(item)
		if !ok {
			continue
		}
		if document.Truthy(m.Value("id")) {
			out = append(out, m)
			continue
		}
		if entry, ok := expandShorthand(m); ok {
			out = append(out, entry)
		}
	}
	return out
}

// expandShorthand unfolds {<key>: body} into {id: body.id or key, ...body}.
func expandShorthand(m *document.Map) (*document.Map, bool) {
	keys := m.Keys()
	if len(keys) == 0 {
		return nil, false
	}
	key := keys[0]
	body, ok := m.Map(key)
	if !ok {
		return document.MapOf("id", key), true
	}
	entry := document.NewMap()
	entry.Set("id", key)
	entry.Assign(body)
	if !document.Truthy(entry.Value("id")) {
		entry.Set("id", key)
	}
	return entry, true
}

// UnwrapTest finds the test record inside a decoded test document. A mapping
// with a feature_test key is unwrapped; a list yields the first item exposing
// feature_test; any other mapping is the record itself. ok is false when no
// record can be found.
func UnwrapTest(v any) (*document.Map, bool) {
	if !document.Truthy(v) {
		return nil, false
	}
	if m, ok := document.AsMap(v); ok {
		if inner := m.Value(TestWrapperKey); document.Truthy(inner) {
			return document.AsMap(inner)
		}
		return m, true
	}
	list, ok := document.AsList(v)
	if !ok {
		return nil, false
	}
	for _, item := range list {
		m, ok := document.AsMap(item)
		if !ok {
			continue
		}
		if inner := m.Value(TestWrapperKey); document.Truthy(inner) {
			return document.AsMap(inner)
		}
	}
	return nil, false
}

// ExtractResultFields copies the known result fields present on m.
func ExtractResultFields(m *document.Map) *document.Map {
	out := document.NewMap()
	for _, f := range ResultFields {
		if v, ok := m.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out
}

// NormalizeResultBlock turns a per-version result block into slug → result
// mapping. Three encodings are accepted:
//
//   - a list of {feature: <slug>, ...result} records
//   - a flattened single feature: result fields next to exactly one other key
//     whose value is absent, not a mapping, or an empty mapping
//   - a mapping of slug → result mapping
//
// In the last case result-field keys at the top level are ignored and slugs
// whose value is not a mapping map to an empty result.
func NormalizeResultBlock(v any) *document.Map {
	out := document.NewMap()
	if !document.Truthy(v) {
		return out
	}
	if list, ok := document.AsList(v); ok {
		for _, item := range list {
			m, ok := document.AsMap(item)
			if !ok || !document.Truthy(m.Value("feature")) {
				continue
			}
			result := m.Clone()
			result.Delete("feature")
			out.Set(m.String("feature"), result)
		}
		return out
	}
	block, ok := document.AsMap(v)
	if !ok {
		return out
	}

	var slugs []string
	hasResultFields := false
	for _, k := range block.Keys() {
		if IsResultField(k) {
			hasResultFields = true
			continue
		}
		slugs = append(slugs, k)
	}

	if hasResultFields && len(slugs) == 1 {
		candidate, isMap := block.Map(slugs[0])
		if !isMap || candidate.Len() == 0 {
			out.Set(slugs[0], ExtractResultFields(block))
			return out
		}
	}

	for _, slug := range slugs {
		if result, ok := block.Map(slug); ok {
			out.Set(slug, result)
		} else {
			out.Set(slug, document.NewMap())
		}
	}
	return out
}

// NormalizeResultTable turns the top-level results of a dated test document
// into slug → tool → result. Accepted encodings:
//
//   - a list mixing {feature, tools} and {tool, features} groups; a {feature}
//     item without tools makes that feature current for following {tools} items
//   - a mapping keyed by feature slug, recognised when any key is a slug of
//     features; it is returned unchanged
//   - a mapping keyed by tool id, which is transposed
//
// Anything else yields an empty table.
func NormalizeResultTable(v any, features *document.Map) *document.Map {
	out := document.NewMap()
	if !document.Truthy(v) {
		return out
	}

	if list, ok := document.AsList(v); ok {
		current := ""
		for _, item := range list {
			entry, ok := document.AsMap(item)
			if !ok {
				continue
			}
			if document.Truthy(entry.Value("feature")) {
				current = entry.String("feature")
				if !out.Has(current) {
					out.Set(current, document.NewMap())
				}
			}
			if tools, ok := entry.Map("tools"); ok && current != "" {
				out.Set(current, tools.Clone())
			}
			if document.Truthy(entry.Value("tool")) {
				if byFeature, ok := entry.Map("features"); ok {
					setTransposed(out, entry.String("tool"), byFeature)
				}
			}
		}
		return out
	}

	table, ok := document.AsMap(v)
	if !ok {
		return out
	}
	for _, k := range table.Keys() {
		if features.Has(k) {
			return table
		}
	}
	for _, toolID := range table.Keys() {
		byFeature, ok := table.Map(toolID)
		if !ok {
			continue
		}
		setTransposed(out, toolID, byFeature)
	}
	return out
}

// setTransposed writes every slug → result of one tool into the slug-keyed table.
func setTransposed(table *document.Map, toolID string, byFeature *document.Map) {
	byFeature.Range(func(slug string, result any) bool {
		row, ok := table.Map(slug)
		if !ok {
			row = document.NewMap()
			table.Set(slug, row)
		}
		row.Set(toolID, result)
		return true
	})
}

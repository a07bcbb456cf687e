// Package document models the loosely-typed values produced by decoding the
// YAML and JSON documents that feed the compatibility matrix. Mappings keep
// the key order they were written in, sequences are []any and scalars keep the
// Go type the decoder chose for them.
//
// Every value handed to pkg/matrix goes through From first, so the matrix code
// only ever has to deal with *Map, []any and scalars.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Map is an insertion-ordered string-keyed mapping.
// The zero value and a nil *Map are both usable as empty read-only maps.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a map from alternating key/value arguments.
// Keys are coerced with String; a trailing key without value maps to nil.
func MapOf(kv ...any) *Map {
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		m.Set(String(kv[i]), From(v))
	}
	return m
}

// Set stores value under key. An existing key keeps its position.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil || m.values == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil.
func (m *Map) Value(key string) any {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present, even with a nil value.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for every entry in order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (m *Map) Clone() *Map {
	out := NewMap()
	m.Range(func(k string, v any) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// Assign copies every entry of src into m, overwriting existing keys.
func (m *Map) Assign(src *Map) *Map {
	src.Range(func(k string, v any) bool {
		m.Set(k, v)
		return true
	})
	return m
}

// String returns the string form of the value stored under key.
func (m *Map) String(key string) string {
	return String(m.Value(key))
}

// Map returns the nested mapping stored under key.
func (m *Map) Map(key string) (*Map, bool) {
	return AsMap(m.Value(key))
}

// MarshalJSON writes the entries in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshaling key %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the entries in insertion order.
func (m *Map) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, m.Len())
	m.Range(func(k string, v any) bool {
		out = append(out, yaml.MapItem{Key: k, Value: v})
		return true
	})
	return out, nil
}

// Decode parses a YAML (or JSON) document into canonical values.
// An empty document decodes to nil.
func Decode(data []byte) (any, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	return From(raw), nil
}

// From converts decoder output into canonical values: yaml.MapSlice and Go maps
// become *Map, slices become []any. Go maps are ordered by key since they carry
// no order of their own. Applying From to its own output is a no-op.
func From(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *Map:
		if t == nil {
			return nil
		}
		out := NewMap()
		t.Range(func(k string, val any) bool {
			out.Set(k, From(val))
			return true
		})
		return out
	case yaml.MapSlice:
		out := NewMap()
		for _, item := range t {
			out.Set(String(item.Key), From(item.Value))
		}
		return out
	case map[string]any:
		out := NewMap()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, From(t[k]))
		}
		return out
	case map[any]any:
		out := NewMap()
		keys := make([]string, 0, len(t))
		byKey := make(map[string]any, len(t))
		for k, val := range t {
			sk := String(k)
			keys = append(keys, sk)
			byKey[sk] = val
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, From(byKey[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = From(item)
		}
		return out
	case []*Map:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = From(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = From(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// AsMap returns v as a mapping. A *Map is returned as is, so writes through
// the result are visible to the holder of v; other mapping types are converted.
func AsMap(v any) (*Map, bool) {
	if m, ok := v.(*Map); ok {
		return m, m != nil
	}
	m, ok := From(v).(*Map)
	return m, ok
}

// AsList returns v as a sequence. A []any is returned as is.
func AsList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	l, ok := From(v).([]any)
	return l, ok
}

// String coerces a scalar to its string form. nil is the empty string.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case float32:
		return formatFloat(float64(t))
	case float64:
		return formatFloat(t)
	case time.Time:
		if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v would count as set in a loosely-typed document:
// nil, false, zero numbers and empty strings are not.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case *Map:
		return t != nil
	default:
		return true
	}
}

// IsTrue reports whether v is literal true or the string "yes"/"true" in any case.
func IsTrue(v any) bool {
	if s, ok := v.(string); ok {
		s = strings.ToLower(s)
		return s == "yes" || s == "true"
	}
	b, ok := v.(bool)
	return ok && b
}

// IsFalse reports whether v is literal false or the string "no"/"false" in any case.
func IsFalse(v any) bool {
	if s, ok := v.(string); ok {
		s = strings.ToLower(s)
		return s == "no" || s == "false"
	}
	b, ok := v.(bool)
	return ok && !b
}

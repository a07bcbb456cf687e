package matrix

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

// decode parses an inline YAML fixture.
func decode(t *testing.T, src string) any {
	t.Helper()
	v, err := document.Decode([]byte(src))
	require.NoError(t, err)
	return v
}

// decodeMap parses an inline YAML fixture that must be a mapping.
func decodeMap(t *testing.T, src string) *document.Map {
	t.Helper()
	m, ok := document.AsMap(decode(t, src))
	require.True(t, ok, "fixture is not a mapping")
	return m
}

// plain converts ordered maps to Go maps so fixtures compare without regard to key order.
func plain(v any) any {
	switch t := v.(type) {
	case *document.Map:
		out := make(map[string]any, t.Len())
		t.Range(func(k string, val any) bool {
			out[k] = plain(val)
			return true
		})
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsKeyOrder(t *testing.T) {
	data := []byte(`
zeta: 1
alpha:
  - beta: true
  - gamma
mid: null
`)
	v, err := Decode(data)
	require.NoError(t, err)

	m, ok := AsMap(v)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	assert.True(t, m.Has("mid"))
	assert.Nil(t, m.Value("mid"))

	list, ok := AsList(m.Value("alpha"))
	require.True(t, ok)
	require.Len(t, list, 2)
	first, ok := AsMap(list[0])
	require.True(t, ok)
	assert.Equal(t, true, first.Value("beta"))
	assert.Equal(t, "gamma", list[1])
}

func TestDecodeJSON(t *testing.T) {
	v, err := Decode([]byte(`["a.yml", "b.yml"]`))
	require.NoError(t, err)
	list, ok := AsList(v)
	require.True(t, ok)
	assert.Equal(t, []any{"a.yml", "b.yml"}, list)
}

func TestDecodeEmpty(t *testing.T) {
	v, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("a: [1, 2"))
	assert.Error(t, err)
}

func TestFromGoMapsIsSortedAndIdempotent(t *testing.T) {
	raw := map[string]any{
		"b": map[string]any{"y": 1, "x": 2},
		"a": []any{map[string]any{"k": "v"}},
	}
	once := From(raw)
	twice := From(once)

	m, ok := AsMap(once)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	nested, ok := m.Map("b")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, nested.Keys())

	assert.Equal(t, once, twice)
}

func TestMapSetDelete(t *testing.T) {
	m := MapOf("a", 1, "b", 2, "c", 3)
	m.Set("a", 10)
	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.Equal(t, 10, m.Value("a"))
	assert.Equal(t, 2, m.Len())

	var empty *Map
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Has("a"))
	assert.Nil(t, empty.Keys())
}

func TestMapJSONOrder(t *testing.T) {
	m := MapOf("z", 1, "a", MapOf("y", true, "b", nil))
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":true,"b":null}}`, string(out))
}

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{uint64(4), "4"},
		{int64(-2), "-2"},
		{0.5, "0.5"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, String(tt.in))
	}
}

func TestBooleanCoercion(t *testing.T) {
	tests := []struct {
		in      any
		isTrue  bool
		isFalse bool
	}{
		{true, true, false},
		{false, false, true},
		{"Yes", true, false},
		{"TRUE", true, false},
		{"no", false, true},
		{"False", false, true},
		{"maybe", false, false},
		{1, false, false},
		{0, false, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.isTrue, IsTrue(tt.in), "IsTrue(%v)", tt.in)
		assert.Equal(t, tt.isFalse, IsFalse(tt.in), "IsFalse(%v)", tt.in)
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(uint64(0)))
	assert.True(t, Truthy(NewMap()))
	assert.True(t, Truthy([]any{}))
	assert.True(t, Truthy("x"))
}

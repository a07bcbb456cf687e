package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

type toolRow struct {
	ID        string `json:"id"`
	ViewerURL string `json:"viewer_url,omitempty"`
	Hidden    string `json:"-"`
	internal  string
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{" wide ", FormatWide, false},
		{"", "", false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestFormatIsTable(t *testing.T) {
	assert.True(t, FormatTable.IsTable())
	assert.True(t, FormatWide.IsTable())
	assert.True(t, Format("").IsTable())
	assert.False(t, FormatJSON.IsTable())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, map[string]string{"url": "https://example.org/?a=1&b=2"}))
	assert.Contains(t, buf.String(), "a=1&b=2")

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string][]string{"versions": {"0.5", "0.4"}}))
	var decoded map[string][]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"0.5", "0.4"}, decoded["versions"])
}

func TestTableFormatterData(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Title:   "OME-NGFF 0.5",
		Headers: []string{"Feature", "napari"},
		Rows:    [][]string{{"Multiscale images", "✓"}},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
	out := buf.String()
	assert.Contains(t, out, "OME-NGFF 0.5\n")
	assert.Contains(t, out, "Multiscale images")
	assert.Contains(t, out, "✓")
}

func TestTableFormatterReflection(t *testing.T) {
	var buf bytes.Buffer
	rows := []toolRow{{ID: "napari", ViewerURL: "https://napari.org", Hidden: "secret", internal: "x"}}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, rows))
	out := strings.ToUpper(buf.String())
	assert.Contains(t, out, "VIEWER URL")
	assert.Contains(t, out, "NAPARI")
	assert.NotContains(t, out, "SECRET")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, &rows[0]))
	assert.Contains(t, strings.ToUpper(buf.String()), "PROPERTY")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"tools": 3}))
	assert.JSONEq(t, `{"tools":3}`, buf.String())
}

type wideAware struct{}

func (wideAware) TableData(wide bool) table.Data {
	if wide {
		return table.Data{Headers: []string{"Wide"}}
	}
	return table.Data{Headers: []string{"Narrow"}}
}

func TestRender(t *testing.T) {
	layout := wideAware{}.TableData

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatWide, nil, layout))
	assert.Contains(t, strings.ToUpper(buf.String()), "WIDE")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, wideAware{}))
	assert.Contains(t, strings.ToUpper(buf.String()), "NARROW")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatJSON, []string{"0.5"}, layout))
	assert.JSONEq(t, `["0.5"]`, buf.String())
}

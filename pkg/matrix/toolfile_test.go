package matrix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

const toolCatalogFixture = `
- slug: multiscales
  name: Multiscales
  sample_url: /samples/ms.zarr
  versions:
    "0.4": {}
    "0.5":
      aliases: [multiscale, pyramid]
- slug: labels
  name: Labels
`

func TestDeriveToolID(t *testing.T) {
	tests := []struct {
		name string
		info *document.Map
		path string
		want string
	}{
		{"id", document.MapOf("id", "napari", "name", "Napari"), "x.yml", "napari"},
		{"name", document.MapOf("name", "Napari"), "x.yml", "Napari"},
		{"file stem", nil, "data/tools/napari.YML", "napari"},
		{"yaml extension", document.NewMap(), "vizarr.yaml", "vizarr"},
		{"other extension kept", nil, "tools/avivator.json", "avivator.json"},
		{"nothing", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveToolID(tt.info, tt.path))
		})
	}
}

func TestParseToolFile(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		path      string
		wantID    string
		wantName  string
		wantTests int
	}{
		{
			name:      "tool and test info",
			src:       "tool_info:\n  name: napari\ntest_info:\n  test-1:\n    features: {}\n",
			path:      "data/tools/other.yml",
			wantID:    "napari",
			wantName:  "napari",
			wantTests: 1,
		},
		{
			name:      "test info only",
			src:       "test_info:\n  test-1: {}\n  test-2: {}\n",
			path:      "data/tools/vizarr.yml",
			wantID:    "vizarr",
			wantName:  "vizarr",
			wantTests: 2,
		},
		{
			name:     "shorthand list",
			src:      "- avivator:\n    name: Avivator\n",
			path:     "a.yml",
			wantID:   "avivator",
			wantName: "Avivator",
		},
		{
			name:     "bare mapping",
			src:      "name: Fiji\nlabel: Fiji (MoBIE)\n",
			path:     "fiji.yml",
			wantID:   "Fiji",
			wantName: "Fiji",
		},
		{
			name:     "scalar",
			src:      "placeholder\n",
			path:     "data/tools/a-template.yml",
			wantID:   "a-template",
			wantName: "a-template",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf, ok := ParseToolFile(decode(t, tt.src), tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.path, tf.Path)
			assert.Equal(t, tt.wantID, tf.Info.String("id"))
			assert.Equal(t, tt.wantName, tf.Info.String("name"))
			assert.Equal(t, tt.wantTests, tf.Tests.Len())
		})
	}

	_, ok := ParseToolFile(nil, "empty.yml")
	assert.False(t, ok)
}

func TestParseToolFileDoesNotModifyInput(t *testing.T) {
	raw := decodeMap(t, "tool_info:\n  name: napari\n")
	_, ok := ParseToolFile(raw, "x.yml")
	require.True(t, ok)
	info, _ := raw.Map("tool_info")
	assert.False(t, info.Has("id"))
}

func TestMergeToolInfo(t *testing.T) {
	merged := MergeToolInfo(
		document.MapOf("id", "a", "label", "A"),
		document.MapOf("id", "b", "name", "B", "viewer_url", "https://b/"),
	)
	assert.Equal(t, map[string]any{"id": "a", "label": "A", "name": "B", "viewer_url": "https://b/"}, plain(merged))

	assert.Equal(t, map[string]any{"id": "x", "name": "x"}, plain(MergeToolInfo(document.MapOf("id", "x"), nil)))
	assert.Equal(t, map[string]any{"id": "y", "name": "y"}, plain(MergeToolInfo(nil, document.MapOf("id", "y"))))
	assert.Zero(t, MergeToolInfo(nil, nil).Len())
}

func TestToolSet(t *testing.T) {
	s := NewToolSet()
	assert.Equal(t, "napari", s.Add(document.MapOf("id", "napari", "name", "napari")))
	assert.Equal(t, "Vizarr", s.Add(document.MapOf("id", "Vizarr")))
	assert.Equal(t, "napari", s.Add(document.MapOf("id", "napari", "name", "Other", "label", "Napari viewer")))
	assert.Empty(t, s.Add(document.MapOf("name", "no id")))

	assert.Equal(t, []string{"napari", "Vizarr"}, s.IDs())
	tool, ok := s.Get("napari")
	require.True(t, ok)
	assert.Equal(t, "napari", tool.Name)
	assert.Equal(t, "Napari viewer", tool.Label)

	id, ok := s.Match("vizarr")
	require.True(t, ok)
	assert.Equal(t, "Vizarr", id)

	_, ok = s.Get("vizarr")
	assert.False(t, ok, "Get is exact")
}

func napariFile(t *testing.T, tests string) Document {
	t.Helper()
	return testDoc(t, "data/tools/napari.yml", "tool_info:\n  id: napari\n  name: napari\ntest_info:\n"+tests)
}

const napariTest1 = `
  test-1:
    tool_version: "0.4.19"
    features:
      "0.5":
        multiscale: {supported: false}
        labels: {supported: true}
        unknown: {supported: true}
      "0.9":
        multiscales: {supported: true}
`

const napariTest2 = `
  test-2:
    tool_version: "0.5.0"
    notes: retested
    features:
      "0.5":
        - feature: pyramid
          supported: true
          notes: fixed
`

func TestCollectResults(t *testing.T) {
	catalog := BuildVersions(context.Background(), decode(t, toolCatalogFixture))

	for name, tests := range map[string]string{
		"ascending":  napariTest1 + napariTest2,
		"descending": napariTest2 + napariTest1,
	} {
		t.Run(name, func(t *testing.T) {
			tools, results := CollectResults(context.Background(), catalog, []Document{napariFile(t, tests)})
			assert.Equal(t, []string{"napari"}, tools.IDs())
			assert.Equal(t, 2, results.Len())

			cell, ok := results.Get("0.5", "napari", "multiscales")
			require.True(t, ok)
			assert.Equal(t, Yes, cell.Result.Supported)
			assert.Equal(t, "fixed", cell.Result.Notes)
			assert.Equal(t, "test-2", cell.Test.TestID)
			assert.Equal(t, 2, cell.Test.Number)
			assert.Equal(t, "0.5.0", cell.Test.ToolVersion)
			assert.Equal(t, "retested", cell.Test.Notes)
			assert.Equal(t, "data/tools/napari.yml", cell.Test.SourceFile)

			cell, ok = results.Get("0.5", "napari", "labels")
			require.True(t, ok)
			assert.Equal(t, "test-1", cell.Test.TestID)

			_, ok = results.Get("0.9", "napari", "multiscales")
			assert.False(t, ok)
		})
	}
}

func TestCollectResultsNewerDateWins(t *testing.T) {
	catalog := BuildVersions(context.Background(), decode(t, toolCatalogFixture))
	file := napariFile(t, `
  test-1:
    date: 2026-02-01
    features:
      "0.4":
        multiscales: {opens: true}
  test-9:
    features:
      "0.4":
        multiscales: {opens: false}
`)
	_, results := CollectResults(context.Background(), catalog, []Document{file})
	cell, ok := results.Get("0.4", "napari", "multiscales")
	require.True(t, ok)
	assert.Equal(t, "test-1", cell.Test.TestID)
	assert.Equal(t, Yes, cell.Result.Opens)
}

func TestCollectResultsSkipsBadInput(t *testing.T) {
	catalog := BuildVersions(context.Background(), decode(t, toolCatalogFixture))
	files := []Document{
		{FileName: "data/tools/empty.yml"},
		testDoc(t, "data/tools/vizarr.yml", `
test_info:
  test-1: not a mapping
  test-2:
    features:
      "0.5":
        supported: true
        labels:
`),
		testDoc(t, "data/tools/napari.yml", "tool_info:\n  id: napari\n  label: Napari\n"),
		testDoc(t, "data/tools/napari-copy.yml", "tool_info:\n  id: napari\n  label: Copy\n  widercol: true\n"),
	}
	tools, results := CollectResults(context.Background(), catalog, files)
	assert.Equal(t, []string{"vizarr", "napari"}, tools.IDs())

	napari, _ := tools.Get("napari")
	assert.Equal(t, "Napari", napari.Label)
	assert.True(t, napari.WiderCol)

	cell, ok := results.Get("0.5", "vizarr", "labels")
	require.True(t, ok, "flattened block resolves to its only feature")
	assert.Equal(t, Yes, cell.Result.Supported)
	assert.Equal(t, 1, results.Len())
}

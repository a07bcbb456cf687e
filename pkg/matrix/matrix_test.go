package matrix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixInputs(t *testing.T) Inputs {
	t.Helper()
	return Inputs{
		Features: decode(t, toolCatalogFixture),
		ToolFiles: []Document{
			testDoc(t, "data/tools/napari.yml", `
tool_info:
  id: napari
  name: napari
test_info:
  test-1:
    features:
      "0.5":
        pyramid: {supported: true}
      "0.4":
        multiscales: {opens: false}
`),
			testDoc(t, "data/tools/avivator.yml", `
tool_info:
  id: avivator
  label: Avivator
test_info:
  test-1:
    features:
      "0.5":
        labels: {opens: true}
`),
			testDoc(t, "data/tools/extra.yml", "tool_info:\n  id: extra\n"),
		},
		Viewers: decode(t, `
- avivator:
    test_instructions: [drag the URL in]
- id: napari
`),
		ToolRef: decode(t, `
- id: napari
  test_instructions: napari ome-zarr-url
`),
	}
}

func TestBuild(t *testing.T) {
	m := Build(context.Background(), matrixInputs(t))

	assert.Equal(t, []string{"0.5", "0.4"}, m.Versions)
	assert.Equal(t, []string{"avivator", "napari", "extra"}, m.ToolIDs())
	assert.Equal(t, Stats{Versions: 2, Tools: 3, Features: 2, Results: 3}, m.Stats)

	require.Len(t, m.Columns, 3)
	assert.Equal(t, "Avivator", m.Columns[0].Label)
	assert.Equal(t, "drag the URL in", m.Columns[0].Instructions)
	assert.Equal(t, "napari ome-zarr-url", m.Columns[1].Instructions)
	assert.Empty(t, m.Columns[2].Instructions)

	v05, ok := m.Section("0.5")
	require.True(t, ok)
	require.Len(t, v05.Entries, 2)
	assert.Equal(t, StatusIgnored, v05.Entries[0].ToolMeta["avivator"].Status)
	assert.Equal(t, StatusSupported, v05.Entries[1].ToolMeta["napari"].Status)

	v04, ok := m.Section("0.4")
	require.True(t, ok)
	assert.Equal(t, StatusFails, v04.Entries[1].ToolMeta["napari"].Status)

	_, ok = m.Section("0.3")
	assert.False(t, ok)
}

func TestBuildWithoutViewers(t *testing.T) {
	in := matrixInputs(t)
	in.Viewers = nil
	m := Build(context.Background(), in)
	assert.Equal(t, []string{"napari", "avivator", "extra"}, m.ToolIDs())
}

func TestBuildEmpty(t *testing.T) {
	m := Build(context.Background(), Inputs{})
	assert.Empty(t, m.Versions)
	assert.Empty(t, m.Columns)
	assert.Empty(t, m.Sections)
	assert.Equal(t, Stats{}, m.Stats)
}

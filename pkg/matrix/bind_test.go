package matrix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

func TestBuildToolOrder(t *testing.T) {
	tools := NewToolSet()
	tools.Add(document.MapOf("id", "zeta"))
	tools.Add(document.MapOf("id", "napari"))
	tools.Add(document.MapOf("id", "Avivator-Web", "name", "avivator web"))
	tools.Add(document.MapOf("id", "alpha"))

	viewers := []Tool{{ID: "NAPARI"}, {ID: "missing"}, {}, {ID: "zeta"}, {ID: "napari"}}
	assert.Equal(t, []string{"napari", "zeta", "alpha", "Avivator-Web"}, BuildToolOrder(viewers, tools))

	assert.Equal(t, []string{"alpha", "Avivator-Web", "napari", "zeta"}, BuildToolOrder(nil, tools))
	assert.Empty(t, BuildToolOrder(viewers, NewToolSet()))
}

func TestBindVersion(t *testing.T) {
	ctx := context.Background()
	catalog := BuildVersions(ctx, decode(t, toolCatalogFixture))
	tools, results := CollectResults(ctx, catalog, []Document{
		testDoc(t, "data/tools/napari.yml", `
tool_info:
  id: napari
  viewer_url: "napari://"
test_info:
  test-1:
    features:
      "0.5":
        multiscales: {supported: true}
`),
		testDoc(t, "data/tools/vizarr.yml", "tool_info:\n  id: vizarr\n"),
	})

	bucket, ok := catalog.Bucket("0.5")
	require.True(t, ok)
	order := []string{"napari", "vizarr", "ghost"}
	entries := BindVersion(bucket, order, tools, results)
	require.Len(t, entries, 2)
	assert.Equal(t, "labels", entries[0].Slug)
	assert.Equal(t, "multiscales", entries[1].Slug)

	ms := entries[1]
	assert.Len(t, ms.Results, 1)
	assert.Equal(t, Yes, ms.Results["napari"].Supported)
	require.Len(t, ms.ToolMeta, 3)

	napari := ms.ToolMeta["napari"]
	assert.Equal(t, StatusSupported, napari.Status)
	assert.Equal(t, "test-1", napari.Test.TestID)
	assert.Equal(t, &FeatureVersion{Slug: "multiscales", Version: "0.5"}, napari.Feature)
	assert.Equal(t, "napari:///samples/ms.zarr", napari.ViewerURL)

	vizarr := ms.ToolMeta["vizarr"]
	assert.Nil(t, vizarr.Test)
	assert.Equal(t, StatusMissing, vizarr.Status)
	assert.Equal(t, "vizarr", vizarr.Tool.Name)

	assert.Equal(t, Tool{ID: "ghost"}, ms.ToolMeta["ghost"].Tool)
	assert.Empty(t, entries[0].Results)

	assert.Nil(t, BindVersion(nil, order, tools, results))
}

package embedded_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/internal/embedded"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
	"github.com/lubianat/ome-ngff-tools/pkg/sources"
)

func TestDataLayout(t *testing.T) {
	layout := sources.DefaultLayout()
	for _, name := range []string{
		layout.Features,
		layout.Viewers,
		layout.FeatureRef,
		layout.ToolRef,
		layout.ToolsIndex,
		layout.TestsIndex,
	} {
		_, err := fs.Stat(embedded.Data(), name)
		assert.NoError(t, err, name)
	}
}

func TestTestsDirectoryEmbedded(t *testing.T) {
	logging.DisableLoggingForTest(t)
	loader := sources.NewLoader(&sources.FSReader{FS: embedded.Data()})

	list := loader.TestList(context.Background())
	assert.Equal(t, []string{
		"data/_tests/2026-01-26-14-00-00.yml",
		"data/_tests/2026-01-27-09-30-00.yml",
	}, list)
	for _, name := range list {
		_, err := fs.Stat(embedded.FS, embedded.Root+"/"+name)
		assert.NoError(t, err, name)
	}
}

func TestSampleMatrix(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	loader := sources.NewLoader(&sources.FSReader{FS: embedded.Data()})

	in, err := loader.MatrixInputs(ctx)
	require.NoError(t, err)
	require.Len(t, in.ToolFiles, 3)

	m := matrix.Build(ctx, in)
	assert.Equal(t, []string{"0.6.dev1", "0.5", "0.4"}, m.Versions)
	assert.Equal(t, []string{"napari", "vizarr", "avivator"}, m.ToolIDs())
	assert.Equal(t, matrix.Stats{Versions: 3, Tools: 3, Features: 5, Results: 9}, m.Stats)
	assert.Equal(t, "pip install napari-ome-zarr\nnapari --plugin napari-ome-zarr <url>", m.Columns[0].Instructions)

	section, ok := m.Section("0.5")
	require.True(t, ok)
	var names []string
	for _, e := range section.Entries {
		names = append(names, e.DisplayName())
	}
	assert.Equal(t, []string{"High-content screening", "Label images", "Multiscale images", "Rendering settings"}, names)

	multiscales := section.Entries[2]
	assert.Equal(t, matrix.StatusSupported, multiscales.ToolMeta["napari"].Status)
	assert.Equal(t, "0.6.0", multiscales.ToolMeta["napari"].Test.ToolVersion)
	assert.Equal(t, matrix.StatusMissing, multiscales.ToolMeta["avivator"].Status)

	older, ok := m.Section("0.4")
	require.True(t, ok)
	for _, e := range older.Entries {
		switch e.Slug {
		case "labels":
			assert.Equal(t, matrix.StatusIgnored, e.ToolMeta["napari"].Status)
		case "multiscales":
			assert.Equal(t,
				"https://hms-dbmi.github.io/vizarr/?source=https://uk1s3.embassy.ebi.ac.uk/idr/zarr/v0.4/idr0062A/6001240.zarr",
				e.ToolMeta["vizarr"].ViewerURL)
			assert.Equal(t,
				"https://avivator.gehlenborglab.org/?image_url=https://example.org/custom.zarr",
				e.ToolMeta["avivator"].ViewerURL)
		}
	}
}

func TestSampleTests(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	loader := sources.NewLoader(&sources.FSReader{FS: embedded.Data()})

	docs, err := loader.TestDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	entries := matrix.Aggregate(ctx, docs)
	require.Len(t, entries, 2)
	assert.Equal(t, "labels", entries[0].Slug)

	labels := entries[0]
	assert.Equal(t, matrix.StatusSupported, labels.ToolMeta["napari"].Status)
	assert.Equal(t, "test-4", labels.ToolMeta["napari"].Test.TestID)
	assert.Equal(t, matrix.StatusFails, labels.ToolMeta["vizarr"].Status)
	assert.Equal(t, "test-3", labels.ToolMeta["vizarr"].Test.TestID)
}

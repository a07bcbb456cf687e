package ngfftools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/internal/embedded"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
	"github.com/lubianat/ome-ngff-tools/pkg/sources"
)

func TestNewOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
		source  string
	}{
		{"default is embedded", nil, false, "fs:data"},
		{"data dir", []Option{WithDataDir("/srv/ngff")}, false, "dir:/srv/ngff"},
		{"base url", []Option{WithBaseURL("https://example.org/site")}, false, "https://example.org/site"},
		{"embedded forced", []Option{WithBaseURL("https://example.org"), WithEmbedded(true)}, false, "fs:data"},
		{"base url over data dir", []Option{WithDataDir("/srv"), WithBaseURL("http://localhost:4000")}, false, "http://localhost:4000"},
		{"reader wins", []Option{WithEmbedded(true), WithReader(&sources.DirReader{BasePath: "x"})}, false, "dir:x"},
		{"relative base url", []Option{WithBaseURL("example.org")}, true, ""},
		{"nil reader", []Option{WithReader(nil)}, true, ""},
		{"zero concurrency", []Option{WithConcurrency(0)}, true, ""},
		{"negative timeout", []Option{WithHTTPTimeout(-1)}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.source, c.Source())
		})
	}
}

func TestClientMatrixEmbedded(t *testing.T) {
	logging.DisableLoggingForTest(t)
	c, err := New()
	require.NoError(t, err)

	var built []*matrix.Matrix
	c.OnMatrixBuilt(func(m *matrix.Matrix) { built = append(built, m) })

	m, err := c.Matrix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0.6.dev1", "0.5", "0.4"}, m.Versions)
	assert.Equal(t, []string{"napari", "vizarr", "avivator"}, m.ToolIDs())
	require.Len(t, built, 1)
	assert.Same(t, m, built[0])
}

func TestClientTestsDefaultSource(t *testing.T) {
	logging.DisableLoggingForTest(t)
	c, err := New()
	require.NoError(t, err)

	entries, err := c.Tests(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "labels", entries[0].Slug)
	assert.Equal(t, "test-4", entries[0].ToolMeta["napari"].Test.TestID)
}

func TestClientTestsEnrichesFeatures(t *testing.T) {
	logging.DisableLoggingForTest(t)
	fsys := fstest.MapFS{
		"data/_tests/index.json": {Data: []byte(`["data/_tests/2026-02-01.yml"]`)},
		"data/_tests/2026-02-01.yml": {Data: []byte(`
id: test-7
features:
  labels: {}
results:
  labels:
    vizarr: {supported: true}
`)},
		"data/feature_ref.yml": {Data: []byte(`
- slug: labels
  name: Label images
  description: Segmentation masks stored next to the image.
`)},
	}
	c, err := New(WithReader(&sources.FSReader{FS: fsys}))
	require.NoError(t, err)

	var aggregated int
	c.OnTestsAggregated(func(entries []matrix.Entry) { aggregated = len(entries) })

	entries, err := c.Tests(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Segmentation masks stored next to the image.", entries[0].Feature.Description)
	assert.Equal(t, matrix.StatusSupported, entries[0].ToolMeta["vizarr"].Status)
	assert.Equal(t, 1, aggregated)
}

func TestClientDataDir(t *testing.T) {
	logging.DisableLoggingForTest(t)
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("data/features_new.yml", "- slug: multiscales\n  versions:\n    \"0.4\": {}\n")
	write("data/tools/index.json", `["data/tools/ome-zarr-py.yml"]`)
	write("data/tools/ome-zarr-py.yml", "test_info:\n  t1:\n    features:\n      \"0.4\":\n        multiscales: {supported: true}\n")

	c, err := New(WithDataDir(dir), WithConcurrency(1))
	require.NoError(t, err)

	m, err := c.Matrix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ome-zarr-py"}, m.ToolIDs())
	section, ok := m.Section("0.4")
	require.True(t, ok)
	require.Len(t, section.Entries, 1)
	assert.Equal(t, matrix.StatusSupported, section.Entries[0].ToolMeta["ome-zarr-py"].Status)
}

func TestClientBaseURL(t *testing.T) {
	logging.DisableLoggingForTest(t)
	var authHeaders []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("X-Token"))
		http.FileServer(http.FS(embedded.Data())).ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, err := New(WithBaseURL(srv.URL), WithAuth("secret", "X-Token"), WithConcurrency(1))
	require.NoError(t, err)

	m, err := c.Matrix(context.Background())
	require.NoError(t, err)
	assert.Len(t, m.Versions, 3)
	assert.NotEmpty(t, authHeaders)
	for _, h := range authHeaders {
		assert.Equal(t, "secret", h)
	}
}

func TestBucket(t *testing.T) {
	logging.DisableLoggingForTest(t)
	c, err := New(WithEmbedded(true))
	require.NoError(t, err)

	bucket, err := Bucket(context.Background(), c, "0.5")
	require.NoError(t, err)
	assert.Len(t, bucket.Features, 4)

	_, err = Bucket(context.Background(), c, "9.9")
	assert.True(t, errors.IsNotFound(err))
}

func TestClientMissingFeatures(t *testing.T) {
	logging.DisableLoggingForTest(t)
	c, err := New(WithReader(&sources.FSReader{FS: fstest.MapFS{}}))
	require.NoError(t, err)

	_, err = c.Matrix(context.Background())
	require.Error(t, err)
	_, err = c.Versions(context.Background())
	require.Error(t, err)
}

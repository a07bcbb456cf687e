// Package ngfftools builds the OME-NGFF tool compatibility matrix from a
// published data tree: a feature catalog, per-tool test files, a viewer list,
// reference files and dated test documents.
//
// The data tree can be a local directory, a site reachable over HTTP or the
// sample dataset compiled into the binary.
//
// Example usage:
//
//	client, err := ngfftools.New(ngfftools.WithBaseURL("https://ome.github.io/ome-ngff-tools"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := client.Matrix(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, section := range m.Sections {
//	    fmt.Println(section.Version, len(section.Entries))
//	}
package ngfftools

import (
	"context"
	"fmt"

	"github.com/lubianat/ome-ngff-tools/internal/embedded"
	"github.com/lubianat/ome-ngff-tools/internal/transport"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
	"github.com/lubianat/ome-ngff-tools/pkg/sources"
)

// Client builds matrices from one data tree.
type Client interface {
	// Matrix builds the versioned feature by tool matrix.
	Matrix(ctx context.Context) (*matrix.Matrix, error)

	// Tests aggregates the dated test documents, newest result first,
	// enriched with the feature reference.
	Tests(ctx context.Context) ([]matrix.Entry, error)

	// Versions returns the feature catalog split into version buckets.
	Versions(ctx context.Context) (*matrix.VersionCatalog, error)

	// OnMatrixBuilt registers a callback run after every matrix build.
	OnMatrixBuilt(MatrixBuiltHook)

	// OnTestsAggregated registers a callback run after every aggregation.
	OnTestsAggregated(TestsAggregatedHook)

	// Source describes where documents are read from.
	Source() string
}

type client struct {
	loader *sources.Loader
	hooks  *hooks
}

// New creates a Client. Without a source option the embedded sample dataset
// is used.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	var loaderOpts []sources.Option
	if cfg.layout != nil {
		loaderOpts = append(loaderOpts, sources.WithLayout(*cfg.layout))
	}
	if cfg.concurrency > 0 {
		loaderOpts = append(loaderOpts, sources.WithConcurrency(cfg.concurrency))
	}

	return &client{
		loader: sources.NewLoader(cfg.resolveReader(), loaderOpts...),
		hooks:  newHooks(),
	}, nil
}

// resolveReader picks the document source: an explicit reader, then the
// embedded dataset when forced, then a base URL, then a data directory, and
// finally the embedded dataset.
func (c *config) resolveReader() sources.Reader {
	switch {
	case c.reader != nil:
		return c.reader
	case c.useEmbedded:
		return embeddedReader()
	case c.baseURL != "":
		opts := []transport.Option{transport.WithTimeout(c.timeout), transport.WithAuth(c.auth)}
		if c.httpClient != nil {
			opts = append(opts, transport.WithHTTPClient(c.httpClient))
		}
		return sources.NewHTTPReader(c.baseURL, transport.New(opts...))
	case c.dataDir != "":
		return &sources.DirReader{BasePath: c.dataDir}
	default:
		return embeddedReader()
	}
}

func embeddedReader() sources.Reader {
	return &sources.FSReader{FS: embedded.FS, Root: embedded.Root}
}

// Matrix implements Client.
func (c *client) Matrix(ctx context.Context) (*matrix.Matrix, error) {
	ctx = logging.WithOperation(ctx, "matrix")
	in, err := c.loader.MatrixInputs(ctx)
	if err != nil {
		return nil, err
	}
	m := matrix.Build(ctx, in)
	logging.FromContext(ctx).Info().
		Str("source", c.Source()).
		Int("versions", m.Stats.Versions).
		Int("tools", m.Stats.Tools).
		Int("features", m.Stats.Features).
		Msg("matrix built")
	c.hooks.matrixBuilt(m)
	return m, nil
}

// Tests implements Client.
func (c *client) Tests(ctx context.Context) ([]matrix.Entry, error) {
	ctx = logging.WithOperation(ctx, "tests")
	docs, err := c.loader.TestDocuments(ctx)
	if err != nil {
		return nil, err
	}
	entries := matrix.Aggregate(ctx, docs)
	entries = matrix.EnrichFeatures(entries, matrix.BuildFeatureRefIndex(c.loader.FeatureRef(ctx)))
	logging.FromContext(ctx).Info().
		Str("source", c.Source()).
		Int("documents", len(docs)).
		Int("features", len(entries)).
		Msg("test results aggregated")
	c.hooks.testsAggregated(entries)
	return entries, nil
}

// Versions implements Client.
func (c *client) Versions(ctx context.Context) (*matrix.VersionCatalog, error) {
	features, err := c.loader.Features(ctx)
	if err != nil {
		return nil, err
	}
	return matrix.BuildVersions(ctx, features), nil
}

// OnMatrixBuilt implements Client.
func (c *client) OnMatrixBuilt(fn MatrixBuiltHook) {
	c.hooks.OnMatrixBuilt(fn)
}

// OnTestsAggregated implements Client.
func (c *client) OnTestsAggregated(fn TestsAggregatedHook) {
	c.hooks.OnTestsAggregated(fn)
}

// Source implements Client.
func (c *client) Source() string {
	return c.loader.Reader().String()
}

// Bucket returns the features of one version, or a NotFoundError.
func Bucket(ctx context.Context, c Client, version string) (*matrix.VersionBucket, error) {
	catalog, err := c.Versions(ctx)
	if err != nil {
		return nil, err
	}
	bucket, ok := catalog.Bucket(version)
	if !ok {
		return nil, errors.NewNotFoundError("version", version)
	}
	return bucket, nil
}

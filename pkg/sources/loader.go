package sources

import (
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// DefaultConcurrency is the number of documents fetched at once.
const DefaultConcurrency = 8

// Loader reads and decodes the documents of one data tree.
type Loader struct {
	reader      Reader
	layout      Layout
	concurrency int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLayout overrides document locations. Empty fields keep their defaults.
func WithLayout(layout Layout) Option {
	return func(l *Loader) {
		l.layout = layout.WithDefaults()
	}
}

// WithConcurrency sets how many documents are fetched at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// NewLoader creates a loader reading through r.
func NewLoader(r Reader, opts ...Option) *Loader {
	l := &Loader{
		reader:      r,
		layout:      DefaultLayout(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Layout returns the layout in use.
func (l *Loader) Layout() Layout {
	return l.layout
}

// Reader returns the underlying reader.
func (l *Loader) Reader() Reader {
	return l.reader
}

// Decode reads and decodes one YAML or JSON document.
func (l *Loader) Decode(ctx context.Context, name string) (any, error) {
	data, err := l.reader.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	v, err := document.Decode(data)
	if err != nil {
		return nil, errors.WrapParse(formatOf(name), name, err)
	}
	return v, nil
}

func formatOf(name string) string {
	if strings.EqualFold(path.Ext(name), ".json") {
		return "json"
	}
	return "yaml"
}

// Features decodes the feature catalog. Unlike the other documents it is
// required: without it there are no versions to build.
func (l *Loader) Features(ctx context.Context) (any, error) {
	v, err := l.Decode(ctx, l.layout.Features)
	if err != nil {
		return nil, errors.WrapResource("load", "feature catalog", l.layout.Features, err)
	}
	return v, nil
}

// FeatureRef decodes the feature reference list, or returns nil when it is
// not available.
func (l *Loader) FeatureRef(ctx context.Context) any {
	return l.optional(ctx, l.layout.FeatureRef, "feature reference not available")
}

// ToolRef decodes the tool reference list, or returns nil when it is not
// available.
func (l *Loader) ToolRef(ctx context.Context) any {
	return l.optional(ctx, l.layout.ToolRef, "tool reference not available")
}

// Viewers decodes the viewer list. When it is not available the tool records
// of toolFiles are used in their place.
func (l *Loader) Viewers(ctx context.Context, toolFiles []matrix.Document) any {
	v, err := l.Decode(ctx, l.layout.Viewers)
	if err == nil {
		return v
	}
	logging.FromContext(ctx).Warn().
		Err(err).
		Str("document", l.layout.Viewers).
		Msg("viewers file not available, falling back to tool data")

	viewers := make([]any, 0, len(toolFiles))
	for _, doc := range toolFiles {
		if tf, ok := matrix.ParseToolFile(doc.Raw, doc.FileName); ok {
			viewers = append(viewers, tf.Info)
		}
	}
	return viewers
}

func (l *Loader) optional(ctx context.Context, name, msg string) any {
	v, err := l.Decode(ctx, name)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("document", name).Msg(msg)
		return nil
	}
	return v
}

// ToolList returns the tool file paths named by the tools index: a non-empty
// list, or a mapping with a non-empty tools list. Otherwise the default tool
// files are returned.
func (l *Loader) ToolList(ctx context.Context) []string {
	v, err := l.Decode(ctx, l.layout.ToolsIndex)
	if err == nil {
		if paths := stringList(v); len(paths) > 0 {
			return paths
		}
		if m, ok := document.AsMap(v); ok {
			if paths := stringList(m.Value("tools")); len(paths) > 0 {
				return paths
			}
		}
	}
	logging.FromContext(ctx).Warn().
		Err(err).
		Str("document", l.layout.ToolsIndex).
		Msg("tools index not available, using default tool files")
	return append([]string(nil), l.layout.DefaultToolFiles...)
}

// TestList returns the dated test document paths named by the tests index,
// which must be a non-empty list. Otherwise the default test files are returned.
func (l *Loader) TestList(ctx context.Context) []string {
	v, err := l.Decode(ctx, l.layout.TestsIndex)
	if err == nil {
		if paths := stringList(v); len(paths) > 0 {
			return paths
		}
	}
	logging.FromContext(ctx).Warn().
		Err(err).
		Str("document", l.layout.TestsIndex).
		Msg("test index not available, using default test files")
	return append([]string(nil), l.layout.DefaultTestFiles...)
}

func stringList(v any) []string {
	list, ok := document.AsList(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := document.String(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ToolFiles fetches every tool file named by ToolList.
func (l *Loader) ToolFiles(ctx context.Context) ([]matrix.Document, error) {
	return l.FetchAll(ctx, l.ToolList(ctx))
}

// TestDocuments fetches every dated test document named by TestList.
func (l *Loader) TestDocuments(ctx context.Context) ([]matrix.Document, error) {
	return l.FetchAll(ctx, l.TestList(ctx))
}

// FetchAll reads and decodes documents concurrently and returns them in the
// order of names. Documents that cannot be read or decoded are logged and
// left out. The only error is the cancellation of ctx.
func (l *Loader) FetchAll(ctx context.Context, names []string) ([]matrix.Document, error) {
	logger := logging.FromContext(ctx)
	slots := make([]*matrix.Document, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, name := range names {
		g.Go(func() error {
			raw, err := l.Decode(gctx, name)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn().Err(err).Str("document", name).Msg("skipping document")
				return nil
			}
			slots[i] = &matrix.Document{FileName: name, Raw: raw}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}

	docs := make([]matrix.Document, 0, len(names))
	for _, doc := range slots {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	logger.Debug().Int("requested", len(names)).Int("loaded", len(docs)).Msg("fetched documents")
	return docs, nil
}

// MatrixInputs loads everything matrix.Build needs.
func (l *Loader) MatrixInputs(ctx context.Context) (matrix.Inputs, error) {
	features, err := l.Features(ctx)
	if err != nil {
		return matrix.Inputs{}, err
	}
	toolFiles, err := l.ToolFiles(ctx)
	if err != nil {
		return matrix.Inputs{}, err
	}
	return matrix.Inputs{
		Features:  features,
		ToolFiles: toolFiles,
		Viewers:   l.Viewers(ctx, toolFiles),
		ToolRef:   l.ToolRef(ctx),
	}, nil
}

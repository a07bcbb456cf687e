// Package sources reads the documents the compatibility matrix is built from.
// A Reader fetches raw bytes from a local directory, any fs.FS (such as the
// embedded sample dataset) or an HTTP base URL. A Loader knows the layout of
// the data tree, decodes documents, applies the fallbacks for missing indexes
// and fetches document sets concurrently.
package sources

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lubianat/ome-ngff-tools/internal/transport"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

// Reader fetches a document by its slash-separated path relative to the data root.
type Reader interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
	String() string
}

// cleanPath rejects paths that would escape the data root.
func cleanPath(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") || !fs.ValidPath(clean) {
		return "", errors.NewValidationError("path", name, "outside the data root")
	}
	return clean, nil
}

// DirReader reads documents from a directory on disk.
type DirReader struct {
	BasePath string
}

// ReadFile implements Reader.
func (r *DirReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.BasePath, filepath.FromSlash(clean)))
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return data, nil
}

func (r *DirReader) String() string {
	return "dir:" + r.BasePath
}

// FSReader reads documents from an fs.FS below Root.
type FSReader struct {
	FS   fs.FS
	Root string
}

// ReadFile implements Reader.
func (r *FSReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanPath(name)
	if err != nil {
		return nil, err
	}
	full := clean
	if r.Root != "" && r.Root != "." {
		full = path.Join(r.Root, clean)
	}
	data, err := fs.ReadFile(r.FS, full)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return data, nil
}

func (r *FSReader) String() string {
	if r.Root == "" {
		return "fs"
	}
	return "fs:" + r.Root
}

// HTTPReader reads documents below a base URL. Absolute http(s) URLs are
// fetched as they are.
type HTTPReader struct {
	BaseURL string
	Client  *transport.Client
}

// NewHTTPReader creates an HTTPReader. A nil client gets the transport defaults.
func NewHTTPReader(baseURL string, client *transport.Client) *HTTPReader {
	if client == nil {
		client = transport.New()
	}
	return &HTTPReader{BaseURL: baseURL, Client: client}
}

// ReadFile implements Reader.
func (r *HTTPReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return r.Client.Get(ctx, r.URL(name))
}

// URL returns the address name is fetched from.
func (r *HTTPReader) URL(name string) string {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	return strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(name, "/")
}

func (r *HTTPReader) String() string {
	return r.BaseURL
}

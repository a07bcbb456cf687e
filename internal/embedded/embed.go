// Package embedded carries a small sample data tree so the CLI and server
// work without a checkout of the published data.
package embedded

import (
	"embed"
	"io/fs"
)

// FS holds the sample data tree under data/. The all: prefix keeps the
// underscore-prefixed _tests directory.
//
//go:embed all:data
var FS embed.FS

// Root is the directory of FS that mirrors the root of a published site.
const Root = "data"

// Data returns the sample tree rooted like a published site, so paths such as
// data/features_new.yml resolve directly.
func Data() fs.FS {
	sub, err := fs.Sub(FS, Root)
	if err != nil {
		panic(err)
	}
	return sub
}

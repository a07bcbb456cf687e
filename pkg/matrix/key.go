package matrix

import (
	"regexp"
	"strings"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey lower-cases the string form of v and strips everything outside
// [a-z0-9], so "OME-Zarr", "ome_zarr" and "OMEZARR" compare equal.
func NormalizeKey(v any) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(document.String(v)), "")
}

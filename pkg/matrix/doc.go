// Package matrix reconciles the loosely structured compatibility-test documents
// of the OME-NGFF tools site into one normalized feature × tool × version matrix.
//
// The package works on values already decoded by pkg/document. Malformed
// shapes are never an error here: every entry point degrades to an empty
// collection and drops what it cannot identify, logging the reason at debug
// level through the logger carried by the context.
//
// The pieces, leaf first:
//
//	NormalizeKey            alias-insensitive identifier comparison
//	NormalizeToolList       list of {id, ...} or {<id>: {...}} records
//	NormalizeResultBlock    per-version result blocks of a tool file
//	NormalizeResultTable    top-level "results" of a dated test document
//	AliasIndex              first-wins alias lookup for features and tools
//	BuildVersions           feature catalog → per-version feature buckets
//	Aggregate               dated test documents → newest-wins result table
//	CollectResults          per-tool test files → per-version result cells
//	BindVersion             bucket × tool order × results → renderable entries
package matrix

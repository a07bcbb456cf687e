package matrix

import (
	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

// AliasIndex maps normalized aliases to entries. Entries are stored under a
// primary key (the first alias they claimed) and every alias points at exactly
// one primary key. An alias, once claimed, is never reassigned: later entries
// simply do not get it.
type AliasIndex[T any] struct {
	primaries []string
	entries   map[string]T
	aliases   map[string]string
}

// NewAliasIndex creates an empty index.
func NewAliasIndex[T any]() *AliasIndex[T] {
	return &AliasIndex[T]{
		entries: make(map[string]T),
		aliases: make(map[string]string),
	}
}

// Claimed reports whether alias already resolves to an entry.
func (ix *AliasIndex[T]) Claimed(alias string) bool {
	_, ok := ix.aliases[NormalizeKey(alias)]
	return ok
}

// Register stores entry under every alias not already claimed. The entry is
// kept only if it claims at least one alias; the return value says whether it did.
func (ix *AliasIndex[T]) Register(entry T, aliases ...string) bool {
	primary := ""
	for _, alias := range aliases {
		key := NormalizeKey(alias)
		if key == "" {
			continue
		}
		if _, taken := ix.aliases[key]; taken {
			continue
		}
		if primary == "" {
			primary = key
			ix.primaries = append(ix.primaries, key)
			ix.entries[key] = entry
		}
		ix.aliases[key] = primary
	}
	return primary != ""
}

// Add stores entry under primary and its aliases, unless primary is already
// claimed, in which case nothing is stored and Add returns false.
func (ix *AliasIndex[T]) Add(primary string, entry T, aliases ...string) bool {
	key := NormalizeKey(primary)
	if key == "" {
		return false
	}
	if _, taken := ix.aliases[key]; taken {
		return false
	}
	return ix.Register(entry, append([]string{primary}, aliases...)...)
}

// Lookup resolves one alias.
func (ix *AliasIndex[T]) Lookup(alias string) (T, bool) {
	var zero T
	if ix == nil {
		return zero, false
	}
	primary, ok := ix.aliases[NormalizeKey(alias)]
	if !ok {
		return zero, false
	}
	return ix.entries[primary], true
}

// Resolve tries each key in turn and returns the first match. Empty keys are skipped.
func (ix *AliasIndex[T]) Resolve(keys ...string) (T, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if entry, ok := ix.Lookup(k); ok {
			return entry, true
		}
	}
	var zero T
	return zero, false
}

// Primary returns the primary key alias resolves to.
func (ix *AliasIndex[T]) Primary(alias string) (string, bool) {
	if ix == nil {
		return "", false
	}
	p, ok := ix.aliases[NormalizeKey(alias)]
	return p, ok
}

// Entries returns the stored entries in registration order.
func (ix *AliasIndex[T]) Entries() []T {
	if ix == nil {
		return nil
	}
	out := make([]T, 0, len(ix.primaries))
	for _, p := range ix.primaries {
		out = append(out, ix.entries[p])
	}
	return out
}

// Len returns the number of stored entries.
func (ix *AliasIndex[T]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.primaries)
}

// BuildFeatureRefIndex indexes a feature reference list by slug and name.
// Anything that is not a list yields an empty index.
func BuildFeatureRefIndex(v any) *AliasIndex[Feature] {
	ix := NewAliasIndex[Feature]()
	list, ok := document.AsList(v)
	if !ok {
		return ix
	}
	for _, item := range list {
		m, ok := document.AsMap(item)
		if !ok {
			continue
		}
		ix.Register(FeatureFromMap(m), m.String("slug"), m.String("name"))
	}
	return ix
}

// BuildToolRefIndex indexes a tool reference list. Records with an id are
// indexed by it; single-key shorthands are indexed by both the derived id and
// the key.
func BuildToolRefIndex(v any) *AliasIndex[Tool] {
	ix := NewAliasIndex[Tool]()
	list, ok := document.AsList(v)
	if !ok {
		return ix
	}
	for _, item := range list {
		m, ok := document.AsMap(item)
		if !ok {
			continue
		}
		if document.Truthy(m.Value("id")) {
			ix.Register(ToolFromMap(m), m.String("id"))
			continue
		}
		entry, ok := expandShorthand(m)
		if !ok {
			continue
		}
		ix.Register(ToolFromMap(entry), entry.String("id"), m.Keys()[0])
	}
	return ix
}

package matrix

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
)

// unnamedFeature is the display name of a catalog record with neither name nor slug.
const unnamedFeature = "Unnamed feature"

// FeatureEntry is a feature as registered in one version bucket.
type FeatureEntry struct {
	Slug    string   `json:"slug" yaml:"slug"`
	Aliases []string `json:"aliases" yaml:"aliases"`
	Feature Feature  `json:"feature" yaml:"feature"`
}

// VersionBucket holds the features of one declared version.
type VersionBucket struct {
	Version  string         `json:"version" yaml:"version"`
	Features []FeatureEntry `json:"features" yaml:"features"`

	index *AliasIndex[FeatureEntry]
}

func newVersionBucket(version string) *VersionBucket {
	return &VersionBucket{Version: version, index: NewAliasIndex[FeatureEntry]()}
}

// add registers entry unless its slug is already claimed in this bucket.
func (b *VersionBucket) add(entry FeatureEntry) bool {
	if !b.index.Add(entry.Slug, entry, entry.Aliases...) {
		return false
	}
	b.Features = append(b.Features, entry)
	return true
}

// Lookup resolves a slug or alias to the bucket's feature.
func (b *VersionBucket) Lookup(alias string) (FeatureEntry, bool) {
	if b == nil {
		return FeatureEntry{}, false
	}
	return b.index.Lookup(alias)
}

// VersionCatalog is the feature catalog split into version buckets.
type VersionCatalog struct {
	Order   []string                  `json:"order" yaml:"order"`
	Buckets map[string]*VersionBucket `json:"buckets" yaml:"buckets"`
}

// Bucket returns the bucket for version.
func (c *VersionCatalog) Bucket(version string) (*VersionBucket, bool) {
	if c == nil {
		return nil, false
	}
	b, ok := c.Buckets[version]
	return b, ok
}

// BuildVersions merges a feature catalog with its per-version overrides into
// one bucket per declared version.
//
// Versions are those appearing as keys of any feature's versions mapping,
// ordered by CompareVersions. A feature without overrides (or with an empty
// mapping) is global: it is added to every bucket after all version-specific
// entries, and only when its slug is still unclaimed there. Each bucket is
// finally sorted by display name.
func BuildVersions(ctx context.Context, catalog any) *VersionCatalog {
	logger := logging.FromContext(ctx)
	out := &VersionCatalog{Buckets: make(map[string]*VersionBucket)}

	list, ok := document.AsList(catalog)
	if !ok {
		if catalog != nil {
			logger.Warn().Msg("feature catalog is not a list; no versions built")
		}
		return out
	}

	seen := make(map[string]bool)
	for _, item := range list {
		m, ok := document.AsMap(item)
		if !ok {
			continue
		}
		versions, _ := m.Map("versions")
		for _, v := range versions.Keys() {
			if !seen[v] {
				seen[v] = true
				out.Order = append(out.Order, v)
			}
		}
	}
	SortVersions(out.Order)
	for _, v := range out.Order {
		out.Buckets[v] = newVersionBucket(v)
	}

	var globals []Feature
	for _, item := range list {
		m, ok := document.AsMap(item)
		if !ok {
			continue
		}
		base := baseFeature(m)
		versions, ok := m.Map("versions")
		if !ok || versions.Len() == 0 {
			if base.Slug == "" {
				logger.Debug().Str("name", base.Name).Msg("dropping global feature without slug")
				continue
			}
			globals = append(globals, base)
			continue
		}
		versions.Range(func(version string, overrides any) bool {
			entry := newFeatureEntry(base, mergeOverrides(overrides))
			if entry.Slug == "" {
				logger.Debug().Str("version", version).Msg("dropping versioned feature without slug")
				return true
			}
			if !out.Buckets[version].add(entry) {
				logger.Debug().
					Str("version", version).
					Str("feature", entry.Slug).
					Msg("feature slug already claimed in version")
			}
			return true
		})
	}

	for _, version := range out.Order {
		bucket := out.Buckets[version]
		for _, base := range globals {
			bucket.add(newFeatureEntry(base, nil))
		}
		sortByName(bucket.Features, func(e FeatureEntry) string { return e.Feature.DisplayName() })
	}
	return out
}

// baseFeature reads the version-independent attributes of a catalog record.
func baseFeature(m *document.Map) Feature {
	f := FeatureFromMap(m)
	if f.Name == "" {
		f.Name = f.Slug
	}
	if f.Name == "" {
		f.Name = unnamedFeature
	}
	return f
}

// mergeOverrides flattens a version's override record. A list of records is
// merged left to right; anything other than a mapping or list is empty.
func mergeOverrides(v any) *document.Map {
	if list, ok := document.AsList(v); ok {
		merged := document.NewMap()
		for _, item := range list {
			if m, ok := document.AsMap(item); ok {
				merged.Assign(m)
			}
		}
		return merged
	}
	if m, ok := document.AsMap(v); ok {
		return m
	}
	return document.NewMap()
}

// newFeatureEntry layers overrides on base. The entry answers to the base slug,
// the override slug and every declared alias.
func newFeatureEntry(base Feature, overrides *document.Map) FeatureEntry {
	over := FeatureFromMap(overrides)
	slug := over.Slug
	if slug == "" {
		slug = base.Slug
	}

	candidates := []string{base.Slug, over.Slug}
	if aliases, ok := document.AsList(overrides.Value("aliases")); ok {
		for _, a := range aliases {
			candidates = append(candidates, document.String(a))
		}
	} else if s, ok := overrides.Value("aliases").(string); ok {
		candidates = append(candidates, s)
	}
	seen := make(map[string]bool)
	var aliases []string
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		aliases = append(aliases, c)
	}

	feature := over.WithFallback(base)
	feature.Slug = slug
	if feature.Name == "" {
		feature.Name = slug
	}
	return FeatureEntry{Slug: slug, Aliases: aliases, Feature: feature}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(?:Infinity|\d+\.?\d*(?:[eE][+-]?\d+)?|\.\d+(?:[eE][+-]?\d+)?)`)

// parseLeadingFloat parses the longest numeric prefix of s, like parseFloat.
func parseLeadingFloat(s string) (float64, bool) {
	match := leadingNumber.FindString(trimLeftSpace(s))
	if match == "" {
		return 0, false
	}
	switch match {
	case "Infinity", "+Infinity":
		match = "+Inf"
	case "-Infinity":
		match = "-Inf"
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func trimLeftSpace(s string) string {
	for i, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return s[i:]
		}
	}
	return ""
}

// CompareVersions orders version identifiers newest first. When both parse
// as numbers the larger number comes first; otherwise, and between equal
// numbers, identifiers are compared in reverse collation order.
func CompareVersions(a, b string) int {
	an, aok := parseLeadingFloat(a)
	bn, bok := parseLeadingFloat(b)
	if aok && bok && an != bn {
		if an > bn {
			return -1
		}
		return 1
	}
	return CompareNames(b, a)
}

// SortVersions sorts versions in place with CompareVersions.
func SortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) < 0
	})
}

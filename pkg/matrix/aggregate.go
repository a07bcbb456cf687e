package matrix

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
	"github.com/lubianat/ome-ngff-tools/pkg/logging"
)

// Epoch is the day stamp of a document without any usable date.
var Epoch = time.Unix(0, 0).UTC()

// Document is a decoded source document and the file it came from.
type Document struct {
	FileName string
	Raw      any
}

// DatedDocument is a test record ready to be folded into an Aggregation.
type DatedDocument struct {
	FileName string
	Test     *document.Map
	Day      time.Time
}

// dateLayouts are tried in order on explicit date fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01",
	"2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

var (
	shortDate    = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{2})$`)
	fileNameDate = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	firstNumber  = regexp.MustCompile(`\d+`)
)

// DayStamp derives the UTC day a test document belongs to. The explicit date
// wins when it parses, either as a calendar date/time or in the two-digit-year
// YY-MM-DD form. Otherwise a YYYY-MM-DD embedded in the file name is used, and
// failing that the document is dated at Epoch.
func DayStamp(date any, fileName string) time.Time {
	if document.Truthy(date) {
		if day, ok := parseDay(date); ok {
			return day
		}
	}
	if m := fileNameDate.FindStringSubmatch(fileName); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	return Epoch
}

func parseDay(date any) (time.Time, bool) {
	switch t := date.(type) {
	case time.Time:
		return truncateDay(t), true
	case int, int64, uint64, float64:
		ms, err := strconv.ParseFloat(document.String(t), 64)
		if err != nil {
			return time.Time{}, false
		}
		return truncateDay(time.UnixMilli(int64(ms))), true
	}

	s := strings.TrimSpace(document.String(date))
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return truncateDay(parsed), true
		}
	}
	if m := shortDate.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseTestNumber extracts the first run of digits in a test id, or -1.
func ParseTestNumber(id any) int {
	if !document.Truthy(id) {
		return -1
	}
	match := firstNumber.FindString(document.String(id))
	if match == "" {
		return -1
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return -1
	}
	return n
}

// PrepareDocuments unwraps every document, dates it and orders the result
// newest first. Documents of the same day keep their input order. Documents
// without a test record are dropped.
func PrepareDocuments(ctx context.Context, docs []Document) []DatedDocument {
	logger := logging.FromContext(ctx)
	out := make([]DatedDocument, 0, len(docs))
	for _, doc := range docs {
		test, ok := UnwrapTest(doc.Raw)
		if !ok {
			logger.Debug().Str("file", doc.FileName).Msg("skipping document without test record")
			continue
		}
		out = append(out, DatedDocument{
			FileName: doc.FileName,
			Test:     test,
			Day:      DayStamp(test.Value("date"), doc.FileName),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day.After(out[j].Day)
	})
	return out
}

// Aggregation is the accumulator of the newest-first fold over test documents.
// Combine never modifies its receiver.
type Aggregation struct {
	order   []string
	entries map[string]Entry
}

// Combine folds one document into the aggregation. A (feature, tool) pair is
// written only if it has no result yet, so folding newest first keeps the
// newest result for every pair together with that document's provenance.
func (a Aggregation) Combine(doc DatedDocument) Aggregation {
	next := a.clone()
	test := doc.Test
	features, _ := test.Map("features")
	results := NormalizeResultTable(test.Value("results"), features)
	tools, _ := test.Map("tools")

	slugs := features.Keys()
	for _, slug := range results.Keys() {
		if !features.Has(slug) {
			slugs = append(slugs, slug)
		}
	}

	for _, slug := range slugs {
		featureInfo, hasInfo := features.Map(slug)
		entry, exists := next.entries[slug]
		if !exists {
			entry = Entry{
				Slug:     slug,
				Feature:  Feature{Slug: slug, Name: slug},
				Results:  make(map[string]ResultCell),
				ToolMeta: make(map[string]ToolMeta),
			}
			if hasInfo {
				entry.Feature = featureFor(slug, featureInfo)
			}
			next.order = append(next.order, slug)
		}
		if entry.Feature.Description == "" && hasInfo && featureInfo.String("description") != "" {
			entry.Feature = featureFor(slug, featureInfo)
		}

		row, _ := results.Map(slug)
		row.Range(func(toolID string, raw any) bool {
			if _, set := entry.Results[toolID]; set {
				return true
			}
			cell, ok := CellFromValue(raw)
			if !ok {
				return true
			}
			entry.Results[toolID] = cell
			if _, set := entry.ToolMeta[toolID]; !set {
				tool := toolFor(toolID, tools)
				entry.ToolMeta[toolID] = ToolMeta{
					Tool:      tool,
					Test:      provenanceFor(doc, tools, toolID),
					Status:    Classify(&cell),
					ViewerURL: ResolveViewerURL(&cell, tool, entry.Feature),
				}
			}
			return true
		})
		next.entries[slug] = entry
	}
	return next
}

func (a Aggregation) clone() Aggregation {
	out := Aggregation{
		order:   append([]string(nil), a.order...),
		entries: make(map[string]Entry, len(a.entries)),
	}
	for slug, e := range a.entries {
		results := make(map[string]ResultCell, len(e.Results))
		for k, v := range e.Results {
			results[k] = v
		}
		meta := make(map[string]ToolMeta, len(e.ToolMeta))
		for k, v := range e.ToolMeta {
			meta[k] = v
		}
		e.Results = results
		e.ToolMeta = meta
		out.entries[slug] = e
	}
	return out
}

// Entries returns the aggregated rows sorted by display name.
func (a Aggregation) Entries() []Entry {
	out := make([]Entry, 0, len(a.order))
	for _, slug := range a.order {
		out = append(out, a.entries[slug])
	}
	sortByName(out, Entry.DisplayName)
	return out
}

// Aggregate merges dated test documents into one result per (feature, tool):
// the newest document reporting a pair wins. Documents that share a day are
// applied in input order, so the first of them wins.
func Aggregate(ctx context.Context, docs []Document) []Entry {
	var acc Aggregation
	for _, doc := range PrepareDocuments(ctx, docs) {
		acc = acc.Combine(doc)
	}
	return acc.Entries()
}

// EnrichFeatures fills the gaps of every entry's feature from a feature
// reference index, matching on slug first and display name second.
func EnrichFeatures(entries []Entry, refs *AliasIndex[Feature]) []Entry {
	if refs.Len() == 0 {
		return entries
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if ref, ok := refs.Resolve(e.Slug, e.Feature.Name); ok {
			e.Feature = e.Feature.WithFallback(ref)
		}
		out[i] = e
	}
	return out
}

func featureFor(slug string, info *document.Map) Feature {
	f := FeatureFromMap(info)
	if f.Slug == "" {
		f.Slug = slug
	}
	return f
}

func toolFor(toolID string, tools *document.Map) Tool {
	info := document.MapOf("id", toolID)
	if data, ok := tools.Map(toolID); ok {
		info.Assign(data)
	}
	return ToolFromMap(info)
}

func provenanceFor(doc DatedDocument, tools *document.Map, toolID string) *Provenance {
	test := doc.Test
	toolData, _ := tools.Map(toolID)

	toolVersion := toolData.String("tool_version")
	if toolVersion == "" {
		toolVersion = toolData.String("version")
	}
	if toolVersion == "" {
		toolVersion = test.String("tool_version")
	}
	additional := toolData.Value("additional_versions")
	if !document.Truthy(additional) {
		additional = test.Value("additional_versions")
	}

	return &Provenance{
		SourceFile:         doc.FileName,
		TestID:             test.String("id"),
		Number:             ParseTestNumber(test.Value("id")),
		Date:               test.String("date"),
		Author:             test.String("author"),
		Notes:              test.String("notes"),
		ToolVersion:        toolVersion,
		AdditionalVersions: additional,
	}
}

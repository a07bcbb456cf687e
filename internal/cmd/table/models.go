// Package table lays out matrix data as rows for the CLI table output.
package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Title           string
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// maxText is the width long free text is truncated to.
const maxText = 60

// VersionsToTableData summarizes each version section by status counts.
func VersionsToTableData(m *matrix.Matrix) Data {
	headers := []string{"Version", "Features"}
	for _, s := range matrix.Statuses {
		headers = append(headers, Title(string(s)))
	}
	align := []Align{AlignLeft, AlignRight}
	for range matrix.Statuses {
		align = append(align, AlignRight)
	}

	data := Data{Headers: headers, ColumnAlignment: align}
	if m == nil {
		return data
	}
	for _, section := range m.Sections {
		counts := CountStatuses(section.Entries)
		row := []string{section.Version, strconv.Itoa(len(section.Entries))}
		for _, s := range matrix.Statuses {
			row = append(row, strconv.Itoa(counts[s]))
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// CountStatuses tallies the status of every tool cell across entries.
func CountStatuses(entries []matrix.Entry) map[matrix.Status]int {
	counts := make(map[matrix.Status]int, len(matrix.Statuses))
	for _, e := range entries {
		for _, meta := range e.ToolMeta {
			status := meta.Status
			if status == "" {
				status = matrix.StatusMissing
			}
			counts[status]++
		}
	}
	return counts
}

// ColumnsToTableData lists the tool columns of a matrix.
func ColumnsToTableData(columns []matrix.Column, wide bool) Data {
	headers := []string{"ID", "Label", "Viewer URL"}
	if wide {
		headers = append(headers, "Instructions")
	}

	rows := make([][]string, 0, len(columns))
	for _, c := range columns {
		row := []string{c.Tool.ID, c.Label, orDash(c.Tool.ViewerURL)}
		if wide {
			row = append(row, orDash(Truncate(firstLine(c.Instructions), maxText)))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// SectionToTableData renders one version as a feature by tool grid of status
// symbols. Wide output adds the tool version that produced each result and a
// sample column.
func SectionToTableData(section matrix.Section, columns []matrix.Column, wide bool) Data {
	headers := []string{"Feature"}
	align := []Align{AlignLeft}
	for _, c := range columns {
		headers = append(headers, c.Label)
		align = append(align, AlignCenter)
	}
	if wide {
		headers = append(headers, "Sample")
		align = append(align, AlignLeft)
	}

	data := Data{
		Title:           "OME-NGFF " + section.Version,
		Headers:         headers,
		ColumnAlignment: align,
	}
	for _, e := range section.Entries {
		row := []string{e.DisplayName()}
		for _, c := range columns {
			row = append(row, cellText(e.ToolMeta[c.Tool.ID], wide))
		}
		if wide {
			row = append(row, orDash(sampleText(e.Feature)))
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// BucketToTableData lists the features declared for one version.
func BucketToTableData(bucket *matrix.VersionBucket, wide bool) Data {
	headers := []string{"Slug", "Name", "Aliases"}
	if wide {
		headers = append(headers, "Sample URL", "How To Test")
	}

	data := Data{Headers: headers}
	if bucket == nil {
		return data
	}
	data.Title = "OME-NGFF " + bucket.Version
	for _, fe := range bucket.Features {
		aliases := make([]string, 0, len(fe.Aliases))
		for _, a := range fe.Aliases {
			if a != fe.Slug {
				aliases = append(aliases, a)
			}
		}
		row := []string{fe.Slug, fe.Feature.DisplayName(), orDash(strings.Join(aliases, ", "))}
		if wide {
			row = append(row,
				orDash(fe.Feature.SampleURL),
				orDash(Truncate(firstLine(fe.Feature.HowToTest), maxText)))
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// EntriesToTableData renders aggregated test entries. Columns are the tools
// that reported any result, sorted by id. Wide output adds the id of the test
// each result came from.
func EntriesToTableData(entries []matrix.Entry, wide bool) Data {
	tools := EntryTools(entries)

	headers := []string{"Feature"}
	align := []Align{AlignLeft}
	for _, id := range tools {
		headers = append(headers, id)
		align = append(align, AlignCenter)
	}
	data := Data{Headers: headers, ColumnAlignment: align}

	for _, e := range entries {
		row := []string{e.DisplayName()}
		for _, id := range tools {
			meta, ok := e.ToolMeta[id]
			if !ok {
				row = append(row, "")
				continue
			}
			text := meta.Status.Symbol()
			if wide && meta.Test != nil && meta.Test.TestID != "" {
				text += " " + meta.Test.TestID
			}
			row = append(row, text)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// EntryTools returns the ids of every tool with a result in entries, sorted.
func EntryTools(entries []matrix.Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		for id := range e.ToolMeta {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Title capitalizes the first letter of s.
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}

func cellText(meta matrix.ToolMeta, wide bool) string {
	status := meta.Status
	if status == "" {
		status = matrix.StatusMissing
	}
	text := status.Symbol()
	if wide && meta.Test != nil && meta.Test.ToolVersion != "" {
		text += " " + meta.Test.ToolVersion
	}
	return text
}

func sampleText(f matrix.Feature) string {
	if f.SampleName != "" {
		return f.SampleName
	}
	return f.SampleURL
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

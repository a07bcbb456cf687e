package matrix

import (
	"strings"

	"github.com/lubianat/ome-ngff-tools/pkg/document"
)

// Status is the display class of a result cell.
type Status string

const (
	// StatusSupported means the tool supports the feature.
	StatusSupported Status = "supported"
	// StatusFails means the tool fails to open data using the feature.
	StatusFails Status = "fails"
	// StatusIgnored means the data opens but the feature is ignored.
	StatusIgnored Status = "ignored"
	// StatusMissing means there is no usable result.
	StatusMissing Status = "missing"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusSupported, StatusIgnored, StatusFails, StatusMissing}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSupported, StatusFails, StatusIgnored, StatusMissing:
		return true
	}
	return false
}

// Symbol is the short marker used when rendering the status in a table.
func (s Status) Symbol() string {
	switch s {
	case StatusSupported:
		return "✓"
	case StatusFails:
		return "✗"
	case StatusIgnored:
		return "~"
	default:
		return "?"
	}
}

// Classify derives the status of a cell. A nil cell is missing.
func Classify(cell *ResultCell) Status {
	switch {
	case cell == nil:
		return StatusMissing
	case cell.Supported == Yes:
		return StatusSupported
	case cell.Opens == No:
		return StatusFails
	case cell.Opens == Yes:
		return StatusIgnored
	default:
		return StatusMissing
	}
}

// ResolveViewerURL returns the link that opens the feature's sample in the
// tool: the cell's own viewer_url, else the tool's viewer url followed by the
// sample url and the tool's postfix. Empty when neither is available.
func ResolveViewerURL(cell *ResultCell, tool Tool, feature Feature) string {
	if cell != nil && cell.ViewerURL != "" {
		return cell.ViewerURL
	}
	if tool.ViewerURL == "" || feature.SampleURL == "" {
		return ""
	}
	return tool.ViewerURL + feature.SampleURL + tool.ViewerURLPostfix
}

// NormalizeInstructions turns test instructions into one string. A list is
// trimmed item by item, empty items dropped and the rest joined by newlines.
func NormalizeInstructions(v any) string {
	if list, ok := document.AsList(v); ok {
		lines := make([]string, 0, len(list))
		for _, item := range list {
			if line := strings.TrimSpace(document.String(item)); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}
	if !document.Truthy(v) {
		return ""
	}
	return strings.TrimSpace(document.String(v))
}

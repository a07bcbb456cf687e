package output

import (
	"io"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
)

// Render writes value in format. Table formats print the layout produced by
// layout instead of value itself.
func Render(w io.Writer, format Format, value any, layout func(wide bool) table.Data) error {
	formatter := NewFormatter(format)
	if format.IsTable() && layout != nil {
		return formatter.Format(w, layout(format == FormatWide))
	}
	return formatter.Format(w, value)
}

// Package matrix provides the commands that print the versioned
// compatibility matrix and its parts.
package matrix

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/completion"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/globals"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/output"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
	pkgmatrix "github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// legend explains the status symbols of the table output.
var legend = fmt.Sprintf("%s supported  %s opens, feature ignored  %s fails to open  %s not tested",
	pkgmatrix.StatusSupported.Symbol(),
	pkgmatrix.StatusIgnored.Symbol(),
	pkgmatrix.StatusFails.Symbol(),
	pkgmatrix.StatusMissing.Symbol())

// VersionView is the matrix of a single version.
type VersionView struct {
	Version string             `json:"version" yaml:"version"`
	Columns []pkgmatrix.Column `json:"columns" yaml:"columns"`
	Entries []pkgmatrix.Entry  `json:"entries" yaml:"entries"`
}

// NewCommand creates the matrix command.
func NewCommand(app application.Application) *cobra.Command {
	var version string
	var filters *globals.FilterFlags

	cmd := &cobra.Command{
		Use:     "matrix",
		GroupID: "core",
		Short:   "Show the feature by tool compatibility matrix",
		Long: `Show, for every OME-NGFF version, which tools support, ignore or fail
on each feature. Versions are listed newest first; tool columns follow
the viewer list.`,
		Example: `  ngffmatrix matrix                         # All versions
  ngffmatrix matrix --version 0.5           # One version
  ngffmatrix matrix -t napari,vizarr -s fails
  ngffmatrix matrix -o json --embedded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filters.Filter()
			if err != nil {
				return err
			}
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			m, err := client.Matrix(cmd.Context())
			if err != nil {
				return err
			}
			m = f.Matrix(m)

			w := cmd.OutOrStdout()
			if version != "" {
				section, ok := m.Section(version)
				if !ok {
					return errors.NewNotFoundError("version", version)
				}
				view := VersionView{Version: section.Version, Columns: m.Columns, Entries: section.Entries}
				return renderSections(w, format, view, m.Columns, []pkgmatrix.Section{section})
			}
			return renderSections(w, format, m, m.Columns, m.Sections)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Only show this OME-NGFF version")
	_ = cmd.RegisterFlagCompletionFunc("version", completion.Versions(app))
	filters = globals.AddFilterFlags(cmd)

	return cmd
}

// renderSections prints value as JSON or YAML, or one table per section
// followed by the symbol legend.
func renderSections(w io.Writer, format output.Format, value any, columns []pkgmatrix.Column, sections []pkgmatrix.Section) error {
	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, value)
	}
	formatter := output.NewFormatter(format)
	for i, section := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := formatter.Format(w, table.SectionToTableData(section, columns, format == output.FormatWide)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", legend)
	return err
}

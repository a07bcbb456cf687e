package matrix

import (
	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/output"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
	pkgmatrix "github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

// VersionSummary is one version with its status counts.
type VersionSummary struct {
	Version   string `json:"version" yaml:"version"`
	Features  int    `json:"features" yaml:"features"`
	Supported int    `json:"supported" yaml:"supported"`
	Ignored   int    `json:"ignored" yaml:"ignored"`
	Fails     int    `json:"fails" yaml:"fails"`
	Missing   int    `json:"missing" yaml:"missing"`
}

// Summarize counts the features and cell statuses of every section.
func Summarize(m *pkgmatrix.Matrix) []VersionSummary {
	if m == nil {
		return nil
	}
	out := make([]VersionSummary, 0, len(m.Sections))
	for _, s := range m.Sections {
		counts := table.CountStatuses(s.Entries)
		out = append(out, VersionSummary{
			Version:   s.Version,
			Features:  len(s.Entries),
			Supported: counts[pkgmatrix.StatusSupported],
			Ignored:   counts[pkgmatrix.StatusIgnored],
			Fails:     counts[pkgmatrix.StatusFails],
			Missing:   counts[pkgmatrix.StatusMissing],
		})
	}
	return out
}

// NewVersionsCommand creates the versions command.
func NewVersionsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "versions",
		GroupID: "core",
		Short:   "List OME-NGFF versions newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			return output.Render(cmd.OutOrStdout(), format, Summarize(m), func(bool) table.Data {
				return table.VersionsToTableData(m)
			})
		},
	}
}

// Package aggregate provides the command that merges the dated test
// documents into the newest result per feature and tool.
package aggregate

import (
	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/globals"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/output"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
)

// NewCommand creates the aggregate command.
func NewCommand(app application.Application) *cobra.Command {
	var filters *globals.FilterFlags

	cmd := &cobra.Command{
		Use:     "aggregate",
		Aliases: []string{"tests"},
		GroupID: "core",
		Short:   "Merge dated test results, newest first",
		Long: `Read every dated test document listed in the tests index and keep,
for each feature and tool, the result of the newest test that reports it.
Wide output shows the id of the test each result came from.`,
		Example: `  ngffmatrix aggregate
  ngffmatrix aggregate -t napari -o wide
  ngffmatrix aggregate -f labels -o yaml`,
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
			entries, err := client.Tests(cmd.Context())
			if err != nil {
				return err
			}
			entries = f.Apply(entries)

			app.Logger().Debug().Int("features", len(entries)).Msg("Aggregated test results")
			return output.Render(cmd.OutOrStdout(), format, entries, func(wide bool) table.Data {
				return table.EntriesToTableData(entries, wide)
			})
		},
	}

	filters = globals.AddFilterFlags(cmd)

	return cmd
}

package matrix

import (
	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/output"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
)

// NewToolsCommand creates the tools command.
func NewToolsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "tools",
		GroupID: "core",
		Short:   "List the tools in matrix column order",
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
			return output.Render(cmd.OutOrStdout(), format, m.Columns, func(wide bool) table.Data {
				return table.ColumnsToTableData(m.Columns, wide)
			})
		},
	}
}

package matrix

import (
	"github.com/spf13/cobra"

	ngfftools "github.com/lubianat/ome-ngff-tools"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/completion"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/output"
	"github.com/lubianat/ome-ngff-tools/internal/cmd/table"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

// NewFeaturesCommand creates the features command.
func NewFeaturesCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "features [version]",
		GroupID: "core",
		Short:   "List the features declared for a version",
		Long: `List the features of one OME-NGFF version with their aliases, after
version-specific overrides are applied. Without a version the newest is used.`,
		Example: `  ngffmatrix features          # Newest version
  ngffmatrix features 0.4 -o wide`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.Versions(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}

			var version string
			if len(args) == 1 {
				version = args[0]
			} else {
				catalog, err := client.Versions(cmd.Context())
				if err != nil {
					return err
				}
				if len(catalog.Order) == 0 {
					return errors.NewNotFoundError("version", "any")
				}
				version = catalog.Order[0]
			}

			bucket, err := ngfftools.Bucket(cmd.Context(), client, version)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), format, bucket, func(wide bool) table.Data {
				return table.BucketToTableData(bucket, wide)
			})
		},
	}
}

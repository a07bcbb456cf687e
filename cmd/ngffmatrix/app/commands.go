package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/cmd/ngffmatrix/cmd/aggregate"
	"github.com/lubianat/ome-ngff-tools/cmd/ngffmatrix/cmd/completion"
	"github.com/lubianat/ome-ngff-tools/cmd/ngffmatrix/cmd/matrix"
	"github.com/lubianat/ome-ngff-tools/cmd/ngffmatrix/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(matrix.NewCommand(a))
	rootCmd.AddCommand(matrix.NewVersionsCommand(a))
	rootCmd.AddCommand(matrix.NewToolsCommand(a))
	rootCmd.AddCommand(matrix.NewFeaturesCommand(a))
	rootCmd.AddCommand(aggregate.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("ngffmatrix version %s\n", a.version)
			cmd.Printf("commit: %s\n", a.commit)
			cmd.Printf("built: %s\n", a.date)
			cmd.Printf("built by: %s\n", a.builtBy)
			cmd.Printf("go version: %s\n", runtime.Version())
			cmd.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

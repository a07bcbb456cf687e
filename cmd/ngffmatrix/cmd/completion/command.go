// Package completion provides shell completion management commands.
package completion

import (
	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/completion"
)

// NewCommand creates the completion command. It replaces the command cobra
// would generate so that install and uninstall sit next to the generators.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Manage shell completions",
		Long: `Manage shell completions for ngffmatrix.

Completion scripts can be written to stdout, or installed into the
completion directory of your shell.

Examples:
  # Load bash completion in the current session
  source <(ngffmatrix completion bash)

  # Install zsh completion
  ngffmatrix completion install zsh

  # Remove it again
  ngffmatrix completion uninstall zsh`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	for _, shell := range completion.Shells {
		cmd.AddCommand(newGenerateCommand(shell))
	}
	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newUninstallCommand())

	return cmd
}

func newGenerateCommand(shell string) *cobra.Command {
	return &cobra.Command{
		Use:   shell,
		Short: "Generate the " + shell + " completion script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return completion.Generate(cmd.Root(), shell, cmd.OutOrStdout())
		},
	}
}

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "install <shell>",
		Short:     "Install the completion script for a shell",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{completion.ShellBash, completion.ShellZsh, completion.ShellFish},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := completion.Install(cmd.Root(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Installed %s completion to %s\n", args[0], path)
			cmd.Println("Restart your shell to pick it up.")
			return nil
		},
	}
}

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "uninstall <shell>",
		Short:     "Remove an installed completion script",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{completion.ShellBash, completion.ShellZsh, completion.ShellFish},
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := completion.Uninstall(args[0])
			if err != nil {
				return err
			}
			if !removed {
				cmd.Printf("No %s completion installed\n", args[0])
				return nil
			}
			cmd.Printf("Removed %s completion\n", args[0])
			return nil
		},
	}
}

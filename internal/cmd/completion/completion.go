// Package completion installs shell completion scripts for ngffmatrix and
// completes version arguments from the loaded data.
package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/cmd/application"
	"github.com/lubianat/ome-ngff-tools/pkg/errors"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// Shells lists every shell a script can be generated for.
var Shells = []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// dirPermissions is used for completion directories created on install.
const dirPermissions = 0o755

// Generate writes the completion script for shell to w.
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case ShellBash:
		return root.GenBashCompletionV2(w, true)
	case ShellZsh:
		return root.GenZshCompletion(w)
	case ShellFish:
		return root.GenFishCompletion(w, true)
	case ShellPowerShell:
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.NewValidationError("shell", shell, "must be one of: bash, zsh, fish, powershell")
	}
}

// Path returns where the completion script for shell is installed. Homebrew
// prefixes win over the user's home directory.
func Path(shell, home, brewPrefix string) (string, error) {
	switch shell {
	case ShellBash:
		if brewPrefix != "" {
			return filepath.Join(brewPrefix, "etc", "bash_completion.d", "ngffmatrix"), nil
		}
		return filepath.Join(home, ".bash_completion.d", "ngffmatrix"), nil
	case ShellZsh:
		if brewPrefix != "" {
			return filepath.Join(brewPrefix, "share", "zsh", "site-functions", "_ngffmatrix"), nil
		}
		return filepath.Join(home, ".zsh", "completions", "_ngffmatrix"), nil
	case ShellFish:
		if brewPrefix != "" {
			return filepath.Join(brewPrefix, "share", "fish", "vendor_completions.d", "ngffmatrix.fish"), nil
		}
		return filepath.Join(home, ".config", "fish", "completions", "ngffmatrix.fish"), nil
	default:
		return "", errors.NewValidationError("shell", shell, "install supports bash, zsh and fish")
	}
}

// Install writes the completion script for shell to its install path and
// returns that path.
func Install(root *cobra.Command, shell string) (string, error) {
	target, err := defaultPath(shell)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(target), err)
	}

	file, err := os.Create(target) // #nosec G304 - path built by Path
	if err != nil {
		return "", errors.WrapIO("create", target, err)
	}
	defer func() { _ = file.Close() }()

	if err := Generate(root, shell, file); err != nil {
		return "", fmt.Errorf("generate %s completion: %w", shell, err)
	}
	return target, nil
}

// Uninstall removes an installed completion script. It reports whether a
// script was found.
func Uninstall(shell string) (bool, error) {
	target, err := defaultPath(shell)
	if err != nil {
		return false, err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapIO("remove", target, err)
	}
	return true, nil
}

func defaultPath(shell string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapIO("resolve", "home directory", err)
	}
	return Path(shell, home, os.Getenv("HOMEBREW_PREFIX"))
}

// Versions completes version keys, newest first.
func Versions(app application.Application) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		client, err := app.Client()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		catalog, err := client.Versions(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return catalog.Order, cobra.ShellCompDirectiveNoFileComp
	}
}

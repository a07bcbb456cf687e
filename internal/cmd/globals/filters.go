// Package globals provides flag sets shared by several commands.
package globals

import (
	"github.com/spf13/cobra"

	"github.com/lubianat/ome-ngff-tools/internal/server/filter"
)

// FilterFlags narrow the entries a command prints.
type FilterFlags struct {
	Tools    []string
	Statuses []string
	Feature  string
}

// AddFilterFlags adds the entry filter flags to a command.
func AddFilterFlags(cmd *cobra.Command) *FilterFlags {
	flags := &FilterFlags{}

	cmd.Flags().StringSliceVarP(&flags.Tools, "tool", "t", nil,
		"Only show these tools (comma-separated ids)")
	cmd.Flags().StringSliceVarP(&flags.Statuses, "status", "s", nil,
		"Only show features with a result in this status: supported, ignored, fails, missing")
	cmd.Flags().StringVarP(&flags.Feature, "feature", "f", "",
		"Only show features whose slug or name contains this text")

	return flags
}

// Filter converts the flags into an entry filter.
func (f *FilterFlags) Filter() (filter.EntryFilter, error) {
	if f == nil {
		return filter.EntryFilter{}, nil
	}
	return filter.New(f.Tools, f.Statuses, f.Feature)
}

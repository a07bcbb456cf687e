package globals

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lubianat/ome-ngff-tools/pkg/matrix"
)

func TestFilterFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		tools    []string
		statuses []matrix.Status
		feature  string
		wantErr  bool
	}{
		{name: "none"},
		{name: "lists", args: []string{"--tool", "napari,vizarr", "-s", "fails"}, tools: []string{"napari", "vizarr"}, statuses: []matrix.Status{matrix.StatusFails}},
		{name: "feature", args: []string{"-f", "label"}, feature: "label"},
		{name: "bad status", args: []string{"--status", "great"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "x"}
			flags := AddFilterFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			f, err := flags.Filter()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tools, f.Tools)
			assert.Equal(t, tt.statuses, f.Statuses)
			assert.Equal(t, tt.feature, f.Feature)
		})
	}

	var nilFlags *FilterFlags
	f, err := nilFlags.Filter()
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

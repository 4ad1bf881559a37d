package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, args []string) {}}
	cmd.Flags().String("path", "", "")
	cmd.Flags().Float64("radius", 0, "")
	cmd.Flags().Int("max", 0, "")
	cmd.Flags().StringSlice("features", nil, "")
	return cmd
}

func TestFlagOrDefault_UnsetFallsBack(t *testing.T) {
	cmd := newFlagTestCmd()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "data/pings.csv", flagOrDefault(cmd, "path", "data/pings.csv"))
	assert.Equal(t, 50.0, flagOrDefaultFloat(cmd, "radius", 50.0))
	assert.Equal(t, 1_000_000, flagOrDefaultInt(cmd, "max", 1_000_000))
	assert.Equal(t, []string{"dwell"}, flagOrDefaultSlice(cmd, "features", []string{"dwell"}))
}

func TestFlagOrDefault_SetWins(t *testing.T) {
	cmd := newFlagTestCmd()
	cmd.SetArgs([]string{"--path", "other.csv", "--radius", "75", "--max", "10", "--features", "a,b"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "other.csv", flagOrDefault(cmd, "path", "data/pings.csv"))
	assert.Equal(t, 75.0, flagOrDefaultFloat(cmd, "radius", 50.0))
	assert.Equal(t, 10, flagOrDefaultInt(cmd, "max", 1_000_000))
	assert.Equal(t, []string{"a", "b"}, flagOrDefaultSlice(cmd, "features", []string{"dwell"}))
}

func TestFlagOrDefault_ExplicitZeroValueWins(t *testing.T) {
	cmd := newFlagTestCmd()
	cmd.SetArgs([]string{"--radius", "0"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 0.0, flagOrDefaultFloat(cmd, "radius", 50.0))
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/danmaku-sim/danmaku-sim/sim"
)

func parseConfigFlags(t *testing.T, args ...string) (*cobra.Command, *configFlags) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	var f configFlags
	f.register(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, &f
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConfigFlags_DefaultsWithoutFile(t *testing.T) {
	cmd, f := parseConfigFlags(t)

	cfg, err := f.resolve(cmd)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestConfigFlags_FileThenExplicitFlags(t *testing.T) {
	// GIVEN a config file and one explicit flag
	path := writeFile(t, "config.yaml", `
canvas_width: 1920
canvas_height: 1080
open_layers: 2
frame_budget: 8ms
reproducible: false
`)
	cmd, f := parseConfigFlags(t, "--config", path, "--open-layers", "3")

	// WHEN resolved
	cfg, err := f.resolve(cmd)

	// THEN file values hold unless a flag was set explicitly
	require.NoError(t, err)
	assert.Equal(t, 1920.0, cfg.CanvasW)
	assert.Equal(t, 1080.0, cfg.CanvasH)
	assert.Equal(t, 3, cfg.OpenLayers)
	assert.Equal(t, 8*time.Millisecond, cfg.FrameBudget)
	assert.False(t, cfg.Reproducible)
	// AND unspecified fields keep their defaults
	assert.Equal(t, sim.DefaultDuration, cfg.Duration)
	assert.Equal(t, sim.DefaultCompositeInterval, cfg.CompositeInterval)
}

func TestLoadConfigFile_UnknownFieldRejected(t *testing.T) {
	path := writeFile(t, "config.yaml", "canvas_widht: 1920\n")

	_, err := loadConfigFile(path)

	assert.Error(t, err)
}

func TestLoadConfigFile_EmptyFileIsDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "")

	cfg, err := loadConfigFile(path)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestConfigFlags_InvalidValueRejected(t *testing.T) {
	cmd, f := parseConfigFlags(t, "--width", "0")

	_, err := f.resolve(cmd)

	assert.ErrorIs(t, err, sim.ErrInvalidCanvas)
}

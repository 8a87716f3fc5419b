package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

const validSpecYAML = `
version: "1"
seed: 42
horizon: 60
aggregate_rate: 20
cohorts:
  - id: chatter
    rate_fraction: 0.8
    arrival:
      process: gamma
      cv: 2
    modes:
      rtl: 0.9
      top: 0.1
    size:
      type: gaussian
      params: {mean: 25, std_dev: 3, min: 18, max: 36}
    length:
      type: exponential
      params: {mean: 10}
    highlight_fraction: 0.05
    colors: [16777215, 16711680]
  - id: ticker
    rate_fraction: 0.2
    arrival:
      process: constant
    size:
      type: constant
      params: {value: 18}
    length:
      type: constant
      params: {value: 4}
    lifetime_hint: 8
    windows:
      - {start: 10, end: 20}
controls:
  - {at: 5, type: seek, target: 30, refresh: true}
  - {at: 6, type: resize, width: 640, height: 360}
`

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadWorkloadSpec_ValidYAML_LoadsCorrectly(t *testing.T) {
	spec, err := LoadWorkloadSpec(writeSpec(t, validSpecYAML))
	require.NoError(t, err)

	assert.Equal(t, int64(42), spec.Seed)
	assert.Equal(t, 60.0, spec.Horizon)
	require.Len(t, spec.Cohorts, 2)
	assert.Equal(t, 2.0, *spec.Cohorts[0].Arrival.CV)
	assert.Equal(t, []uint32{0xffffff, 0xff0000}, spec.Cohorts[0].Colors)
	assert.Equal(t, []ActiveWindow{{Start: 10, End: 20}}, spec.Cohorts[1].Windows)
	require.Len(t, spec.Controls, 2)
	assert.Equal(t, sim.ControlSeek, spec.Controls[0].Type)
	assert.True(t, spec.Controls[0].Refresh)
	assert.Equal(t, 640.0, spec.Controls[1].Width)
	assert.NoError(t, spec.Validate())
}

func TestLoadWorkloadSpec_UnknownField_Rejected(t *testing.T) {
	_, err := LoadWorkloadSpec(writeSpec(t, strings.Replace(validSpecYAML, "horizon: 60", "horizn: 60", 1)))
	assert.Error(t, err)
}

func TestLoadWorkloadSpec_MissingFile(t *testing.T) {
	_, err := LoadWorkloadSpec(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWorkloadSpec_DefaultsVersion(t *testing.T) {
	spec, err := LoadWorkloadSpec(writeSpec(t, strings.Replace(validSpecYAML, `version: "1"`, "", 1)))
	require.NoError(t, err)
	assert.Equal(t, "1", spec.Version)
}

func TestWorkloadSpec_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WorkloadSpec)
		want   string
	}{
		{"zero horizon", func(s *WorkloadSpec) { s.Horizon = 0 }, "horizon"},
		{"negative rate", func(s *WorkloadSpec) { s.AggregateRate = -1 }, "aggregate_rate"},
		{"no cohorts", func(s *WorkloadSpec) { s.Cohorts = nil }, "cohort"},
		{"bad process", func(s *WorkloadSpec) { s.Cohorts[0].Arrival.Process = "burst" }, "arrival process"},
		{"bad mode", func(s *WorkloadSpec) { s.Cohorts[0].Modes = map[string]float64{"diagonal": 1} }, "modes"},
		{"bad highlight", func(s *WorkloadSpec) { s.Cohorts[0].HighlightFraction = 2 }, "highlight_fraction"},
		{"bad window", func(s *WorkloadSpec) { s.Cohorts[1].Windows[0].End = 5 }, "windows"},
		{"bad size dist", func(s *WorkloadSpec) { s.Cohorts[0].Size.Type = "zipf" }, "size"},
		{"bad control", func(s *WorkloadSpec) { s.Controls[0].Type = "rewind" }, "controls[0]"},
		{"negative control time", func(s *WorkloadSpec) { s.Controls[1].At = -1 }, "controls[1]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := LoadWorkloadSpec(writeSpec(t, validSpecYAML))
			require.NoError(t, err)
			tc.mutate(spec)
			err = spec.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

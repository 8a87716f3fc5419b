package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	sim "github.com/danmaku-sim/danmaku-sim/sim"
)

// configFlags mirrors sim.Config on the command line. A flag overrides the
// config file only when it was set explicitly.
type configFlags struct {
	path string

	cfg sim.Config
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	d := sim.DefaultConfig()
	fs.StringVar(&f.path, "config", "", "Path to a compositor config YAML (defaults when empty)")
	fs.Float64Var(&f.cfg.CanvasW, "width", d.CanvasW, "Canvas width in px")
	fs.Float64Var(&f.cfg.CanvasH, "height", d.CanvasH, "Canvas height in px")
	fs.Float64Var(&f.cfg.Duration, "duration", d.Duration, "Default on-screen lifetime in seconds")
	fs.BoolVar(&f.cfg.ScalableDuration, "scalable-duration", d.ScalableDuration, "Rescale the lifetime with canvas width on resize")
	fs.IntVar(&f.cfg.OpenLayers, "open-layers", d.OpenLayers, "Extra layers beyond layer 0")
	fs.Float64Var(&f.cfg.FontScaling, "font-scaling", d.FontScaling, "Multiplier on comment font size")
	fs.Float64Var(&f.cfg.LineHeight, "line-height", d.LineHeight, "Entity height as a multiple of font size")
	fs.BoolVar(&f.cfg.Reproducible, "reproducible", d.Reproducible, "Keep evicted comments so seeks can replay them")
	fs.DurationVar(&f.cfg.CompositeInterval, "composite-interval", d.CompositeInterval, "Start-time bucket width for batch layout")
	fs.DurationVar(&f.cfg.FrameBudget, "frame-budget", d.FrameBudget, "Wall-clock layout budget per frame (0 disables)")
	fs.Float64Var(&f.cfg.EvictionGrace, "eviction-grace", d.EvictionGrace, "Seconds an entity is kept past its lifetime")
	fs.Float64Var(&f.cfg.LaneSpacing, "lane-spacing", d.LaneSpacing, "Vertical px between stacked entities")
	fs.IntVar(&f.cfg.StackDepthLimit, "stack-depth-limit", d.StackDepthLimit, "Hard cap on placement attempts per entity")
}

// resolve loads the config file, if any, and applies explicitly set flags.
func (f *configFlags) resolve(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if f.path != "" {
		loaded, err := loadConfigFile(f.path)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}

	fs := cmd.Flags()
	override := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	override("width", func() { cfg.CanvasW = f.cfg.CanvasW })
	override("height", func() { cfg.CanvasH = f.cfg.CanvasH })
	override("duration", func() { cfg.Duration = f.cfg.Duration })
	override("scalable-duration", func() { cfg.ScalableDuration = f.cfg.ScalableDuration })
	override("open-layers", func() { cfg.OpenLayers = f.cfg.OpenLayers })
	override("font-scaling", func() { cfg.FontScaling = f.cfg.FontScaling })
	override("line-height", func() { cfg.LineHeight = f.cfg.LineHeight })
	override("reproducible", func() { cfg.Reproducible = f.cfg.Reproducible })
	override("composite-interval", func() { cfg.CompositeInterval = f.cfg.CompositeInterval })
	override("frame-budget", func() { cfg.FrameBudget = f.cfg.FrameBudget })
	override("eviction-grace", func() { cfg.EvictionGrace = f.cfg.EvictionGrace })
	override("lane-spacing", func() { cfg.LaneSpacing = f.cfg.LaneSpacing })
	override("stack-depth-limit", func() { cfg.StackDepthLimit = f.cfg.StackDepthLimit })

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// loadConfigFile parses a compositor config YAML over the defaults.
// Uses strict field checking: typos must cause errors.
func loadConfigFile(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := sim.DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return sim.Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

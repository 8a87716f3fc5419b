package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinel validation errors.
var (
	ErrInvalidCanvas     = errors.New("canvas dimensions must be positive and finite")
	ErrInvalidDuration   = errors.New("duration must be positive and finite")
	ErrInvalidLayers     = errors.New("open layers must be non-negative")
	ErrInvalidFont       = errors.New("font scaling and line height must be positive")
	ErrInvalidInterval   = errors.New("composite interval must be positive")
	ErrInvalidSpacing    = errors.New("lane spacing must be positive")
	ErrInvalidGrace      = errors.New("eviction grace must be non-negative")
	ErrInvalidStackDepth = errors.New("stack depth limit must be positive")
)

// Default configuration values.
const (
	DefaultCanvasW           = 1280
	DefaultCanvasH           = 720
	DefaultDuration          = 5.0 // seconds on screen
	DefaultFontScaling       = 1.0
	DefaultLineHeight        = 1.125
	DefaultCompositeInterval = 40 * time.Millisecond
	DefaultFrameBudget       = 5 * time.Millisecond
	DefaultEvictionGrace     = 0.05 // seconds
	DefaultLaneSpacing       = 1.0
	DefaultStackDepthLimit   = 2 * 1024

	// stackDepthRowHeight is the nominal row height used to size the placement
	// search: one attempt per row per layer, plus the default and highlight layers.
	stackDepthRowHeight = 12
)

// Config groups the compositor's layout and scheduling parameters.
type Config struct {
	CanvasW float64 `yaml:"canvas_width"`  // viewport width in px
	CanvasH float64 `yaml:"canvas_height"` // viewport height in px

	Duration         float64 `yaml:"duration"`          // default on-screen lifetime (seconds)
	ScalableDuration bool    `yaml:"scalable_duration"` // rescale Duration with canvas width on resize
	OpenLayers       int     `yaml:"open_layers"`       // extra layers beyond layer 0
	FontScaling      float64 `yaml:"font_scaling"`      // multiplier on Comment.Size
	LineHeight       float64 `yaml:"line_height"`       // entity height = font size × line height
	Reproducible     bool    `yaml:"reproducible"`      // keep evicted comments for replay

	CompositeInterval time.Duration `yaml:"composite_interval"` // start-time bucket width
	FrameBudget       time.Duration `yaml:"frame_budget"`       // wall-clock budget per frame; <= 0 disables
	EvictionGrace     float64       `yaml:"eviction_grace"`     // seconds kept past lifetime
	LaneSpacing       float64       `yaml:"lane_spacing"`       // px between stacked entities
	StackDepthLimit   int           `yaml:"stack_depth_limit"`  // hard cap on placement attempts
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		CanvasW:           DefaultCanvasW,
		CanvasH:           DefaultCanvasH,
		Duration:          DefaultDuration,
		ScalableDuration:  true,
		OpenLayers:        0,
		FontScaling:       DefaultFontScaling,
		LineHeight:        DefaultLineHeight,
		Reproducible:      true,
		CompositeInterval: DefaultCompositeInterval,
		FrameBudget:       DefaultFrameBudget,
		EvictionGrace:     DefaultEvictionGrace,
		LaneSpacing:       DefaultLaneSpacing,
		StackDepthLimit:   DefaultStackDepthLimit,
	}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Validate checks that every parameter is in range.
func (c Config) Validate() error {
	if !positiveFinite(c.CanvasW) || !positiveFinite(c.CanvasH) {
		return fmt.Errorf("%w: got %vx%v", ErrInvalidCanvas, c.CanvasW, c.CanvasH)
	}
	if !positiveFinite(c.Duration) {
		return fmt.Errorf("%w: got %v", ErrInvalidDuration, c.Duration)
	}
	if c.OpenLayers < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLayers, c.OpenLayers)
	}
	if !positiveFinite(c.FontScaling) || !positiveFinite(c.LineHeight) {
		return fmt.Errorf("%w: scaling=%v line_height=%v", ErrInvalidFont, c.FontScaling, c.LineHeight)
	}
	if c.CompositeInterval <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidInterval, c.CompositeInterval)
	}
	if !positiveFinite(c.LaneSpacing) {
		return fmt.Errorf("%w: got %v", ErrInvalidSpacing, c.LaneSpacing)
	}
	if c.EvictionGrace < 0 || math.IsNaN(c.EvictionGrace) {
		return fmt.Errorf("%w: got %v", ErrInvalidGrace, c.EvictionGrace)
	}
	if c.StackDepthLimit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidStackDepth, c.StackDepthLimit)
	}
	return nil
}

// MaxStackDepth bounds the number of placement attempts for one entity:
// one per nominal row per layer (open layers plus the default and highlight
// layers), capped at StackDepthLimit.
func (c Config) MaxStackDepth() int {
	rows := int(math.Ceil(c.CanvasH / stackDepthRowHeight))
	depth := rows * (max(0, c.OpenLayers) + 2)
	if depth <= 0 {
		return c.StackDepthLimit
	}
	return min(depth, c.StackDepthLimit)
}

// layerBudget returns the highest layer index an entity may use.
func (c Config) layerBudget(highlight bool) int {
	if highlight {
		return c.OpenLayers + 1
	}
	return c.OpenLayers
}

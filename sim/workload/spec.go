package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

// WorkloadSpec is the top-level synthetic comment stream configuration.
// Loaded from YAML via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version       string             `yaml:"version"`
	Seed          int64              `yaml:"seed"`
	Horizon       float64            `yaml:"horizon"`        // media seconds to generate
	AggregateRate float64            `yaml:"aggregate_rate"` // comments per second across cohorts
	MaxComments   int                `yaml:"max_comments,omitempty"`
	Cohorts       []CohortSpec       `yaml:"cohorts"`
	Controls      []sim.ControlEvent `yaml:"controls,omitempty"`
}

// CohortSpec defines one population of commenters.
type CohortSpec struct {
	ID                string             `yaml:"id"`
	RateFraction      float64            `yaml:"rate_fraction"`
	Arrival           ArrivalSpec        `yaml:"arrival"`
	Modes             map[string]float64 `yaml:"modes,omitempty"` // mode name → weight; rtl only when empty
	Size              DistSpec           `yaml:"size"`            // font size (px)
	Length            DistSpec           `yaml:"length"`          // content length (runes)
	HighlightFraction float64            `yaml:"highlight_fraction,omitempty"`
	LifetimeHint      float64            `yaml:"lifetime_hint,omitempty"` // seconds; 0 uses the compositor duration
	Colors            []uint32           `yaml:"colors,omitempty"`
	Pool              int                `yaml:"pool,omitempty"`
	Windows           []ActiveWindow     `yaml:"windows,omitempty"`
}

// ArrivalSpec configures the inter-arrival time process.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"`
}

// DistSpec parameterizes an integer distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// ActiveWindow is a media-time interval [start, end) in which a cohort posts.
type ActiveWindow struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

var (
	validArrivalProcesses = map[string]bool{
		"poisson": true, "gamma": true, "weibull": true, "constant": true,
	}
	validDistTypes = map[string]bool{
		"gaussian": true, "exponential": true, "pareto_lognormal": true, "empirical": true, "constant": true,
	}
)

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks every field of the workload.
func (s *WorkloadSpec) Validate() error {
	if err := validateFinitePositive("horizon", s.Horizon); err != nil {
		return err
	}
	if err := validateFinitePositive("aggregate_rate", s.AggregateRate); err != nil {
		return err
	}
	if s.MaxComments < 0 {
		return fmt.Errorf("max_comments must be non-negative, got %d", s.MaxComments)
	}
	if len(s.Cohorts) == 0 {
		return fmt.Errorf("at least one cohort required")
	}
	for i := range s.Cohorts {
		if err := validateCohort(&s.Cohorts[i], i); err != nil {
			return err
		}
	}
	for i, c := range s.Controls {
		if _, err := sim.ParseControlType(string(c.Type)); err != nil {
			return fmt.Errorf("controls[%d]: %w", i, err)
		}
		if c.At < 0 || math.IsNaN(c.At) || math.IsInf(c.At, 0) {
			return fmt.Errorf("controls[%d]: at must be a non-negative finite number, got %f", i, c.At)
		}
	}
	return nil
}

func validateCohort(c *CohortSpec, idx int) error {
	prefix := fmt.Sprintf("cohort[%d]", idx)
	if err := validateFinitePositive(prefix+".rate_fraction", c.RateFraction); err != nil {
		return err
	}
	if !validArrivalProcesses[c.Arrival.Process] {
		return fmt.Errorf("%s: unknown arrival process %q; valid: poisson, gamma, weibull, constant", prefix, c.Arrival.Process)
	}
	if c.Arrival.CV != nil {
		if err := validateFinitePositive(prefix+".cv", *c.Arrival.CV); err != nil {
			return err
		}
		if cv := *c.Arrival.CV; c.Arrival.Process == "weibull" && (cv < 0.01 || cv > 10.4) {
			return fmt.Errorf("%s: weibull CV must be in [0.01, 10.4], got %f", prefix, cv)
		}
	}
	for name, w := range c.Modes {
		if _, err := sim.ParseMode(name); err != nil {
			return fmt.Errorf("%s.modes: %w", prefix, err)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%s.modes.%s must be a non-negative finite weight, got %f", prefix, name, w)
		}
	}
	if c.HighlightFraction < 0 || c.HighlightFraction > 1 {
		return fmt.Errorf("%s: highlight_fraction must be in [0, 1], got %f", prefix, c.HighlightFraction)
	}
	if c.LifetimeHint < 0 || math.IsNaN(c.LifetimeHint) || math.IsInf(c.LifetimeHint, 0) {
		return fmt.Errorf("%s: lifetime_hint must be a non-negative finite number, got %f", prefix, c.LifetimeHint)
	}
	for i, w := range c.Windows {
		if !(w.Start >= 0 && w.End > w.Start) {
			return fmt.Errorf("%s.windows[%d]: need 0 <= start < end, got [%f, %f)", prefix, i, w.Start, w.End)
		}
	}
	if err := validateDistSpec(prefix+".size", &c.Size); err != nil {
		return err
	}
	return validateDistSpec(prefix+".length", &c.Length)
}

func validateDistSpec(prefix string, d *DistSpec) error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%s: unknown distribution type %q; valid: gaussian, exponential, pareto_lognormal, empirical, constant", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

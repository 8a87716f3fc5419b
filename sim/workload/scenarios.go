package workload

import (
	"fmt"
	"sort"
)

// Built-in scenario presets for common comment stream patterns.
// Each returns a valid WorkloadSpec ready for use with GenerateComments.

// ScenarioSteadyChat creates a spec with Poisson right-to-left chatter.
func ScenarioSteadyChat(seed int64, rate, horizon float64) *WorkloadSpec {
	return &WorkloadSpec{
		Version: "1", Seed: seed, Horizon: horizon, AggregateRate: rate,
		Cohorts: []CohortSpec{{
			ID: "chat", RateFraction: 1.0, Arrival: ArrivalSpec{Process: "poisson"},
			Size:   DistSpec{Type: "constant", Params: map[string]float64{"value": 25}},
			Length: DistSpec{Type: "exponential", Params: map[string]float64{"mean": 12}},
		}},
	}
}

// ScenarioBurstyChat creates a spec with Gamma-distributed bursty arrivals,
// the shape of a crowd reacting to on-screen moments.
func ScenarioBurstyChat(seed int64, rate, horizon float64) *WorkloadSpec {
	cv := 3.5
	return &WorkloadSpec{
		Version: "1", Seed: seed, Horizon: horizon, AggregateRate: rate,
		Cohorts: []CohortSpec{{
			ID: "crowd", RateFraction: 1.0, Arrival: ArrivalSpec{Process: "gamma", CV: &cv},
			Size:   DistSpec{Type: "gaussian", Params: map[string]float64{"mean": 25, "std_dev": 3, "min": 18, "max": 36}},
			Length: DistSpec{Type: "exponential", Params: map[string]float64{"mean": 8}},
		}},
	}
}

// ScenarioMixedModes spreads traffic over every motion mode, with long
// fixed-position banners in the top and bottom lanes.
func ScenarioMixedModes(seed int64, rate, horizon float64) *WorkloadSpec {
	return &WorkloadSpec{
		Version: "1", Seed: seed, Horizon: horizon, AggregateRate: rate,
		Cohorts: []CohortSpec{
			{ID: "scrollers", RateFraction: 0.7, Arrival: ArrivalSpec{Process: "poisson"},
				Modes:  map[string]float64{"rtl": 0.8, "ltr": 0.2},
				Size:   DistSpec{Type: "constant", Params: map[string]float64{"value": 25}},
				Length: DistSpec{Type: "exponential", Params: map[string]float64{"mean": 10}},
			},
			{ID: "banners", RateFraction: 0.3, Arrival: ArrivalSpec{Process: "poisson"},
				Modes:        map[string]float64{"top": 0.5, "bottom": 0.5},
				Size:         DistSpec{Type: "empirical", Params: map[string]float64{"18": 0.3, "25": 0.6, "36": 0.1}},
				Length:       DistSpec{Type: "pareto_lognormal", Params: map[string]float64{"alpha": 1.5, "xm": 6, "mu": 2.5, "sigma": 0.6, "mix_weight": 0.4}},
				LifetimeHint: 6,
				Colors:       []uint32{0xffffff, 0xfe0302, 0xffff00, 0x00cd00},
			},
		},
	}
}

// ScenarioHighlightStorm creates a quiet stream interrupted by a window of
// dense highlighted comments.
func ScenarioHighlightStorm(seed int64, rate, horizon float64) *WorkloadSpec {
	stormStart := horizon / 3
	return &WorkloadSpec{
		Version: "1", Seed: seed, Horizon: horizon, AggregateRate: rate,
		Cohorts: []CohortSpec{
			{ID: "background", RateFraction: 0.2, Arrival: ArrivalSpec{Process: "poisson"},
				Size:   DistSpec{Type: "constant", Params: map[string]float64{"value": 25}},
				Length: DistSpec{Type: "exponential", Params: map[string]float64{"mean": 10}},
			},
			{ID: "storm", RateFraction: 0.8, Arrival: ArrivalSpec{Process: "poisson"},
				Size:              DistSpec{Type: "constant", Params: map[string]float64{"value": 25}},
				Length:            DistSpec{Type: "constant", Params: map[string]float64{"value": 4}},
				HighlightFraction: 0.3,
				Windows:           []ActiveWindow{{Start: stormStart, End: stormStart + horizon/6}},
			},
		},
	}
}

// ScenarioFunc builds a preset from a seed, an aggregate rate and a horizon.
type ScenarioFunc func(seed int64, rate, horizon float64) *WorkloadSpec

var scenarios = map[string]ScenarioFunc{
	"steady":          ScenarioSteadyChat,
	"bursty":          ScenarioBurstyChat,
	"mixed-modes":     ScenarioMixedModes,
	"highlight-storm": ScenarioHighlightStorm,
}

// ScenarioNames lists the built-in presets in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scenario returns the named preset.
func Scenario(name string, seed int64, rate, horizon float64) (*WorkloadSpec, error) {
	fn, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q; valid: %v", name, ScenarioNames())
	}
	return fn(seed, rate, horizon), nil
}

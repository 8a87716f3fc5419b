package workload

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

// alphabet is the rune pool for synthetic content: latin, digits and a few
// wide CJK runes so measured widths vary.
var alphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789 草哈弹幕好耶前方高能")

const (
	// defaultColor is used when a cohort lists no colors.
	defaultColor = 0xffffff
	// pubDateEpoch anchors synthetic publish dates (unix seconds).
	pubDateEpoch = 1700000000
)

// GenerateComments creates a comment stream from a WorkloadSpec.
// Deterministic given the same spec and seed. Returns comments sorted by
// Start with sequential IDs.
func GenerateComments(spec *WorkloadSpec) ([]*sim.Comment, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec: %w", err)
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	rates := normalizeRateFractions(spec.Cohorts, spec.AggregateRate)

	var all []*sim.Comment
	for i := range spec.Cohorts {
		cohort := &spec.Cohorts[i]
		cohortRNG := rng.ForSubsystem(sim.SubsystemCohort(i))

		arrival := NewArrivalSampler(cohort.Arrival, rates[i])
		sizes, err := NewIntSampler(cohort.Size)
		if err != nil {
			return nil, fmt.Errorf("cohort %q size distribution: %w", cohort.ID, err)
		}
		lengths, err := NewIntSampler(cohort.Length)
		if err != nil {
			return nil, fmt.Errorf("cohort %q length distribution: %w", cohort.ID, err)
		}
		modes, err := newModePicker(cohort.Modes)
		if err != nil {
			return nil, fmt.Errorf("cohort %q: %w", cohort.ID, err)
		}

		for now := arrival.SampleIAT(cohortRNG); now < spec.Horizon; now += arrival.SampleIAT(cohortRNG) {
			if len(cohort.Windows) > 0 && !isInActiveWindow(now, cohort.Windows) {
				continue
			}
			c := &sim.Comment{
				Start:        now,
				Mode:         modes.pick(cohortRNG),
				Size:         sizes.Sample(cohortRNG),
				Color:        pickColor(cohortRNG, cohort.Colors),
				LifetimeHint: cohort.LifetimeHint,
				Highlight:    cohortRNG.Float64() < cohort.HighlightFraction,
				Content:      randomContent(cohortRNG, lengths.Sample(cohortRNG)),
				Pool:         cohort.Pool,
				UserHash:     fmt.Sprintf("%s-%08x", cohort.ID, cohortRNG.Uint32()),
			}
			all = append(all, c)
		}
	}

	// Stable sort keeps cohort order for ties.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Start < all[j].Start
	})
	if spec.MaxComments > 0 && len(all) > spec.MaxComments {
		all = all[:spec.MaxComments]
	}

	contentRNG := rng.ForSubsystem(sim.SubsystemContent)
	for i, c := range all {
		c.ID = fmt.Sprintf("comment_%d", i)
		c.PubDate = pubDateEpoch + int64(c.Start) + contentRNG.Int63n(60)
	}
	return all, nil
}

func normalizeRateFractions(cohorts []CohortSpec, aggregate float64) []float64 {
	total := 0.0
	for _, c := range cohorts {
		total += c.RateFraction
	}
	rates := make([]float64, len(cohorts))
	if total <= 0 {
		return rates
	}
	for i, c := range cohorts {
		rates[i] = aggregate * c.RateFraction / total
	}
	return rates
}

func isInActiveWindow(t float64, windows []ActiveWindow) bool {
	for _, w := range windows {
		if t >= w.Start && t < w.End {
			return true
		}
	}
	return false
}

func pickColor(rng *rand.Rand, colors []uint32) uint32 {
	if len(colors) == 0 {
		return defaultColor
	}
	return colors[rng.Intn(len(colors))]
}

func randomContent(rng *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(alphabet[rng.Intn(len(alphabet))])
	}
	return b.String()
}

// modePicker draws modes by weight, in a fixed order for determinism.
type modePicker struct {
	modes []sim.Mode
	cdf   []float64
}

func newModePicker(weights map[string]float64) (*modePicker, error) {
	if len(weights) == 0 {
		return &modePicker{modes: []sim.Mode{sim.ModeRightToLeft}, cdf: []float64{1}}, nil
	}
	byMode := make(map[sim.Mode]float64, len(weights))
	for name, w := range weights {
		m, err := sim.ParseMode(name)
		if err != nil {
			return nil, err
		}
		byMode[m] += w
	}
	p := &modePicker{}
	total := 0.0
	for _, m := range sim.Modes {
		if w := byMode[m]; w > 0 {
			total += w
			p.modes = append(p.modes, m)
			p.cdf = append(p.cdf, total)
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("mode weights sum to zero")
	}
	for i := range p.cdf {
		p.cdf[i] /= total
	}
	return p, nil
}

func (p *modePicker) pick(rng *rand.Rand) sim.Mode {
	if len(p.modes) == 1 {
		return p.modes[0]
	}
	idx := min(sort.SearchFloat64s(p.cdf, rng.Float64()), len(p.modes)-1)
	return p.modes[idx]
}

package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// IntSampler draws positive integers: font sizes and comment lengths.
type IntSampler interface {
	// Sample returns a value >= 1.
	Sample(rng *rand.Rand) int
}

func atLeastOne(v float64) int {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 1
	}
	return max(1, int(math.Round(v)))
}

// GaussianSampler produces clamped Gaussian values.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     int
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int {
	if s.min == s.max {
		return max(1, s.min)
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	return atLeastOne(math.Min(float64(s.max), math.Max(float64(s.min), val)))
}

// ExponentialSampler produces exponentially-distributed values.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int {
	return atLeastOne(rng.ExpFloat64() * s.mean)
}

// ParetoLogNormalSampler mixes a Pareto tail into a LogNormal body: with
// probability mixWeight draw from Pareto(alpha, xm), otherwise LogNormal(mu, sigma).
type ParetoLogNormalSampler struct {
	alpha     float64
	xm        float64
	mu        float64
	sigma     float64
	mixWeight float64
}

func (s *ParetoLogNormalSampler) Sample(rng *rand.Rand) int {
	if rng.Float64() < s.mixWeight {
		u := rng.Float64()
		if u == 0 {
			u = math.SmallestNonzeroFloat64
		}
		return atLeastOne(s.xm / math.Pow(u, 1.0/s.alpha))
	}
	return atLeastOne(math.Exp(s.mu + s.sigma*rng.NormFloat64()))
}

// EmpiricalPDFSampler samples from an empirical distribution by inverse CDF.
type EmpiricalPDFSampler struct {
	values []int
	cdf    []float64
}

// NewEmpiricalPDFSampler creates a sampler from value → probability,
// normalizing the probabilities and skipping non-positive ones.
func NewEmpiricalPDFSampler(pdf map[int]float64) *EmpiricalPDFSampler {
	keys := make([]int, 0, len(pdf))
	total := 0.0
	for k, p := range pdf {
		if p > 0 {
			keys = append(keys, k)
			total += p
		}
	}
	sort.Ints(keys)

	s := &EmpiricalPDFSampler{values: keys, cdf: make([]float64, len(keys))}
	cumulative := 0.0
	for i, k := range keys {
		cumulative += pdf[k] / total
		s.cdf[i] = cumulative
	}
	if n := len(s.cdf); n > 0 {
		s.cdf[n-1] = 1.0
	}
	return s
}

func (s *EmpiricalPDFSampler) Sample(rng *rand.Rand) int {
	switch len(s.values) {
	case 0:
		return 1
	case 1:
		return max(1, s.values[0])
	}
	idx := min(sort.SearchFloat64s(s.cdf, rng.Float64()), len(s.values)-1)
	return max(1, s.values[idx])
}

// ConstantSampler always returns the same value.
type ConstantSampler struct {
	value int
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int {
	return max(1, s.value)
}

func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewIntSampler creates an IntSampler from a DistSpec.
func NewIntSampler(spec DistSpec) (IntSampler, error) {
	switch spec.Type {
	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    int(spec.Params["min"]),
			max:    int(spec.Params["max"]),
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "pareto_lognormal":
		if err := requireParam(spec.Params, "alpha", "xm", "mu", "sigma", "mix_weight"); err != nil {
			return nil, err
		}
		return &ParetoLogNormalSampler{
			alpha:     spec.Params["alpha"],
			xm:        spec.Params["xm"],
			mu:        spec.Params["mu"],
			sigma:     spec.Params["sigma"],
			mixWeight: spec.Params["mix_weight"],
		}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: int(spec.Params["value"])}, nil

	case "empirical":
		// Inline params are the PDF: value → probability.
		pdf := make(map[int]float64, len(spec.Params))
		for k, v := range spec.Params {
			var value int
			if _, err := fmt.Sscanf(k, "%d", &value); err != nil {
				return nil, fmt.Errorf("empirical PDF key %q is not an integer: %w", k, err)
			}
			pdf[value] = v
		}
		if len(pdf) == 0 {
			return nil, fmt.Errorf("empirical distribution has no bins")
		}
		return NewEmpiricalPDFSampler(pdf), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}

package sim

import (
	"math"
	"slices"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile returns the p-th percentile of sorted data, linearly
// interpolated between ranks. Values are divided by 1000 (µs → ms).
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := min(int(math.Ceil(rank)), n-1)
	if lowerIdx == upperIdx {
		return float64(data[lowerIdx]) / 1000
	}
	lowerVal, upperVal := float64(data[lowerIdx]), float64(data[upperIdx])
	return (lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))) / 1000
}

// CalculateMean returns the mean of data divided by 1000 (µs → ms).
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return (sum / float64(len(numbers))) / 1000
}

// CompositionPercentile returns the p-th percentile of per-frame composition
// time in milliseconds.
func (m *Metrics) CompositionPercentile(p float64) float64 {
	sorted := slices.Clone(m.FrameMicros)
	slices.Sort(sorted)
	return CalculatePercentile(sorted, p)
}

package sim

import "math"

// ClockFunc derives the next media time from the previous one and the wall time
// elapsed since the last frame (both in seconds). It should be cheap; a media
// element's position is a typical implementation.
type ClockFunc func(previous, elapsed float64) float64

// DefaultClock advances media time at wall-clock speed.
func DefaultClock(previous, elapsed float64) float64 {
	return previous + elapsed
}

// syncClock asks clock for the next time. Negative, NaN and infinite results
// are rejected and previous is kept; ok reports whether the sample was usable.
func syncClock(clock ClockFunc, previous, elapsed float64) (next float64, ok bool) {
	t := clock(previous, elapsed)
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return previous, false
	}
	return t, true
}

// fpsMaxSamples is the number of frame intervals kept for the FPS estimate.
const fpsMaxSamples = 5

// fpsMeter estimates frames per second from recent frame intervals, dropping
// the fastest and slowest sample.
type fpsMeter struct {
	samples []float64
}

func (m *fpsMeter) sample(elapsed float64) {
	m.samples = append(m.samples, elapsed)
	if len(m.samples) > fpsMaxSamples {
		m.samples = m.samples[len(m.samples)-fpsMaxSamples:]
	}
}

func (m *fpsMeter) fps() float64 {
	if len(m.samples) <= 2 {
		return 0
	}
	total, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, s := range m.samples {
		total += s
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	span := total - lo - hi
	if span <= 0 {
		return 0
	}
	return float64(len(m.samples)-2) / span
}

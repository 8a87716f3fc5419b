// Package testutil provides shared assertion helpers and fakes for the sim
// test packages.
package testutil

import (
	"math"
	"testing"
	"time"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// FakeWallClock is a manually driven wall clock. Every call to Now advances it
// by Step, so code measuring its own elapsed time observes Step per reading.
type FakeWallClock struct {
	Current time.Time
	Step    time.Duration
	Calls   int
}

// NewFakeWallClock starts a fake clock at a fixed instant.
func NewFakeWallClock(step time.Duration) *FakeWallClock {
	return &FakeWallClock{
		Current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Step:    step,
	}
}

// Now returns the current instant and then advances by Step.
func (c *FakeWallClock) Now() time.Time {
	c.Calls++
	now := c.Current
	c.Current = c.Current.Add(c.Step)
	return now
}

// Package observe exports compositor metrics in the Prometheus exposition
// format, over HTTP for live playback and as a textfile for batch runs.
package observe

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

const namespace = "danmaku"

// Snapshot is a copy of the player's counters taken between frames.
type Snapshot struct {
	Frames              int
	Placed              int
	Evicted             int
	Deferred            int
	BudgetOverruns      int
	InvalidClockSamples int
	InvalidGeometry     int
	IdentityMisses      int
	Seeks               int
	Resizes             int
	PeakActive          int
	Active              int
	CompositionSeconds  float64
	MediaTime           float64
	FPS                 float64
	Discarded           map[string]int
	ModePlacements      map[string]int
}

// TakeSnapshot copies the player's metrics. It must be called from the
// goroutine that drives the player.
func TakeSnapshot(p *sim.Player) Snapshot {
	m := p.Metrics()
	s := Snapshot{
		Frames:              m.Frames,
		Placed:              m.Placed,
		Evicted:             m.Evicted,
		Deferred:            m.Deferred,
		BudgetOverruns:      m.BudgetOverruns,
		InvalidClockSamples: m.InvalidClockSamples,
		InvalidGeometry:     m.InvalidGeometry,
		IdentityMisses:      m.IdentityMisses,
		Seeks:               m.Seeks,
		Resizes:             m.Resizes,
		PeakActive:          m.PeakActive,
		Active:              len(p.Compositor().Active()),
		CompositionSeconds:  m.CompositionTime.Seconds(),
		MediaTime:           p.CurrentTime(),
		FPS:                 p.FPS(),
		Discarded:           make(map[string]int, len(m.Discarded)),
		ModePlacements:      make(map[string]int, len(m.ModePlacements)),
	}
	for r, n := range m.Discarded {
		s.Discarded[string(r)] = n
	}
	for mode, n := range m.ModePlacements {
		s.ModePlacements[mode.String()] = n
	}
	return s
}

// Collector is a prometheus.Collector over the last published Snapshot.
// Publish and Collect may run on different goroutines.
type Collector struct {
	mu   sync.Mutex
	last Snapshot

	frames, placed, evicted, deferred, overruns *prometheus.Desc
	invalidClock, invalidGeometry, misses       *prometheus.Desc
	seeks, resizes, composition                 *prometheus.Desc
	active, peakActive, mediaTime, fps          *prometheus.Desc
	discarded, modePlacements                   *prometheus.Desc
}

// NewCollector returns a Collector with an empty snapshot.
func NewCollector() *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		frames:          desc("frames_total", "Frames composed while playing."),
		placed:          desc("placed_total", "Entities given a layout."),
		evicted:         desc("evicted_total", "Entities removed after their lifetime or by a seek."),
		deferred:        desc("deferred_total", "Entities pushed to a later frame by the frame budget."),
		overruns:        desc("budget_overruns_total", "Frames that hit the wall-clock budget."),
		invalidClock:    desc("invalid_clock_samples_total", "Clock values rejected as negative or non-finite."),
		invalidGeometry: desc("invalid_geometry_total", "Measurements replaced by the fallback measurer."),
		misses:          desc("identity_misses_total", "Identity removals that found nothing."),
		seeks:           desc("seeks_total", "Seeks applied."),
		resizes:         desc("resizes_total", "Canvas resizes applied."),
		composition:     desc("composition_seconds_total", "Wall time spent composing frames."),
		active:          desc("active_entities", "Entities currently on screen."),
		peakActive:      desc("peak_active_entities", "Most entities on screen at once."),
		mediaTime:       desc("media_time_seconds", "Current media clock."),
		fps:             desc("fps", "Frame rate over the last few frame intervals."),
		discarded:       desc("discarded_total", "Entities that could not be placed.", "reason"),
		modePlacements:  desc("mode_placements_total", "Placements per motion mode.", "mode"),
	}
}

// Publish replaces the snapshot served to scrapes.
func (c *Collector) Publish(s Snapshot) {
	c.mu.Lock()
	c.last = s
	c.mu.Unlock()
}

// Last returns the most recently published snapshot.
func (c *Collector) Last() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.frames, c.placed, c.evicted, c.deferred, c.overruns,
		c.invalidClock, c.invalidGeometry, c.misses,
		c.seeks, c.resizes, c.composition,
		c.active, c.peakActive, c.mediaTime, c.fps,
		c.discarded, c.modePlacements,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Last()
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.frames, float64(s.Frames))
	counter(c.placed, float64(s.Placed))
	counter(c.evicted, float64(s.Evicted))
	counter(c.deferred, float64(s.Deferred))
	counter(c.overruns, float64(s.BudgetOverruns))
	counter(c.invalidClock, float64(s.InvalidClockSamples))
	counter(c.invalidGeometry, float64(s.InvalidGeometry))
	counter(c.misses, float64(s.IdentityMisses))
	counter(c.seeks, float64(s.Seeks))
	counter(c.resizes, float64(s.Resizes))
	counter(c.composition, s.CompositionSeconds)
	gauge(c.active, float64(s.Active))
	gauge(c.peakActive, float64(s.PeakActive))
	gauge(c.mediaTime, s.MediaTime)
	gauge(c.fps, s.FPS)

	for _, reason := range sortedKeys(s.Discarded) {
		counter(c.discarded, float64(s.Discarded[reason]), reason)
	}
	for _, mode := range sortedKeys(s.ModePlacements) {
		counter(c.modePlacements, float64(s.ModePlacements[mode]), mode)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

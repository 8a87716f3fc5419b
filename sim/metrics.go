// Tracks compositor-wide counters such as placements, discards, evictions and
// frame budget overruns.

package sim

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// DiscardReason explains why an entity could not be placed.
type DiscardReason string

const (
	// DiscardTooTall: the entity is taller than the canvas.
	DiscardTooTall DiscardReason = "too-tall"
	// DiscardLayersExhausted: every allowed layer was full.
	DiscardLayersExhausted DiscardReason = "layers-exhausted"
	// DiscardDepthExhausted: the placement search hit its attempt cap.
	DiscardDepthExhausted DiscardReason = "depth-exhausted"
	// DiscardExpired: the entity's lifetime ended before a frame could place
	// it, either while deferred by the frame budget or across a clock jump.
	DiscardExpired DiscardReason = "expired"
)

// Metrics aggregates statistics about a run for final reporting and export.
// Counters only grow; PeakActive and MaxCompositionTime are high-water marks.
type Metrics struct {
	Frames              int // frames processed while playing
	Placed              int // entities given a layout
	Evicted             int // entities removed after their lifetime or by a seek
	Deferred            int // entities pushed to a later frame by the budget
	BudgetOverruns      int // frames that hit the wall-clock budget
	InvalidClockSamples int // clock values rejected (negative, NaN, infinite)
	InvalidGeometry     int // measurements replaced by the fallback measurer
	IdentityMisses      int // identity removals that found nothing
	Seeks               int
	Resizes             int
	PeakActive          int // max simultaneously active entities

	CompositionTime    time.Duration // total wall time spent composing
	MaxCompositionTime time.Duration // slowest single frame
	FrameMicros        []int64       // per-frame composition time (µs)

	Discarded        map[DiscardReason]int
	LayerPlacements  map[int]int  // layer -> placements
	ModePlacements   map[Mode]int // mode -> placements
	PlacementAttempt int          // total search attempts across placements
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Discarded:       make(map[DiscardReason]int),
		LayerPlacements: make(map[int]int),
		ModePlacements:  make(map[Mode]int),
	}
}

// TotalDiscarded sums discards over every reason.
func (m *Metrics) TotalDiscarded() int {
	total := 0
	for _, n := range m.Discarded {
		total += n
	}
	return total
}

// MeanAttempts returns the average number of search attempts per placement.
func (m *Metrics) MeanAttempts() float64 {
	if m.Placed == 0 {
		return 0
	}
	return float64(m.PlacementAttempt) / float64(m.Placed)
}

func (m *Metrics) recordFrame(elapsed time.Duration, active int) {
	m.Frames++
	m.CompositionTime += elapsed
	m.MaxCompositionTime = max(m.MaxCompositionTime, elapsed)
	m.FrameMicros = append(m.FrameMicros, elapsed.Microseconds())
	m.PeakActive = max(m.PeakActive, active)
}

func (m *Metrics) recordPlacement(e *Entity, attempts int) {
	m.Placed++
	m.PlacementAttempt += attempts
	m.LayerPlacements[e.layer]++
	m.ModePlacements[e.Comment.Mode]++
}

// Print writes the aggregated metrics as a table.
func (m *Metrics) Print(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Compositor Metrics")
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Frames", humanize.Comma(int64(m.Frames))},
		{"Placed", humanize.Comma(int64(m.Placed))},
		{"Discarded", humanize.Comma(int64(m.TotalDiscarded()))},
		{"Evicted", humanize.Comma(int64(m.Evicted))},
		{"Deferred", humanize.Comma(int64(m.Deferred))},
		{"Peak active", humanize.Comma(int64(m.PeakActive))},
		{"Mean attempts", fmt.Sprintf("%.2f", m.MeanAttempts())},
		{"Budget overruns", humanize.Comma(int64(m.BudgetOverruns))},
		{"Invalid clock samples", m.InvalidClockSamples},
		{"Invalid geometry", m.InvalidGeometry},
		{"Identity misses", m.IdentityMisses},
		{"Seeks / resizes", fmt.Sprintf("%d / %d", m.Seeks, m.Resizes)},
		{"Composition time", m.CompositionTime.String()},
		{"Slowest frame", m.MaxCompositionTime.String()},
		{"Composition mean / p99 (ms)", fmt.Sprintf("%.3f / %.3f", CalculateMean(m.FrameMicros), m.CompositionPercentile(99))},
	})

	reasons := make([]string, 0, len(m.Discarded))
	for r := range m.Discarded {
		reasons = append(reasons, string(r))
	}
	slices.Sort(reasons)
	if len(reasons) > 0 {
		tw.AppendSeparator()
		for _, r := range reasons {
			tw.AppendRow(table.Row{"discard: " + r, humanize.Comma(int64(m.Discarded[DiscardReason(r)]))})
		}
	}

	layers := make([]int, 0, len(m.LayerPlacements))
	for l := range m.LayerPlacements {
		layers = append(layers, l)
	}
	slices.Sort(layers)
	if len(layers) > 0 {
		tw.AppendSeparator()
		for _, l := range layers {
			tw.AppendRow(table.Row{fmt.Sprintf("layer %d", l), humanize.Comma(int64(m.LayerPlacements[l]))})
		}
	}
	tw.Render()
}

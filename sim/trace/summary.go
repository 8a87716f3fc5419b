package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions    int
	PlacedCount       int
	DiscardedCount    int
	EvictedCount      int
	MeanAttempts      float64
	MaxAttempts       int
	LayerDistribution map[int]int    // layer → placements
	DiscardReasons    map[string]int // reason → discards
	EvictionCauses    map[string]int // cause → evictions
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		LayerDistribution: make(map[int]int),
		DiscardReasons:    make(map[string]int),
		EvictionCauses:    make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.PlacedCount = len(st.Placements)
	summary.DiscardedCount = len(st.Discards)
	summary.EvictedCount = len(st.Evictions)
	summary.TotalDecisions = summary.PlacedCount + summary.DiscardedCount

	if len(st.Placements) > 0 {
		total := 0
		for _, p := range st.Placements {
			summary.LayerDistribution[p.Layer]++
			total += p.Attempts
			if p.Attempts > summary.MaxAttempts {
				summary.MaxAttempts = p.Attempts
			}
		}
		summary.MeanAttempts = float64(total) / float64(len(st.Placements))
	}
	for _, d := range st.Discards {
		summary.DiscardReasons[d.Reason]++
	}
	for _, e := range st.Evictions {
		summary.EvictionCauses[e.Cause]++
	}

	return summary
}

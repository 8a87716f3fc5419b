package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDecisions != 0 {
		t.Errorf("expected 0 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.PlacedCount != 0 || summary.DiscardedCount != 0 || summary.EvictedCount != 0 {
		t.Error("expected 0 placed, discarded and evicted")
	}
	if summary.MeanAttempts != 0 || summary.MaxAttempts != 0 {
		t.Error("expected 0 attempt statistics")
	}
	if len(summary.LayerDistribution) != 0 {
		t.Error("expected empty layer distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalDecisions != 0 || summary.LayerDistribution == nil {
		t.Errorf("expected zero summary with initialized maps, got %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with placements, discards and evictions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordPlacement(PlacementRecord{EntityID: "c1", Layer: 0, Attempts: 1})
	st.RecordPlacement(PlacementRecord{EntityID: "c2", Layer: 0, Attempts: 3})
	st.RecordPlacement(PlacementRecord{EntityID: "c3", Layer: 1, Attempts: 8})
	st.RecordDiscard(DiscardRecord{EntityID: "c4", Reason: "layers-exhausted"})
	st.RecordDiscard(DiscardRecord{EntityID: "c5", Reason: "too-tall"})
	st.RecordEviction(EvictionRecord{EntityID: "c1", Cause: "expired"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDecisions != 5 {
		t.Errorf("expected 5 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.PlacedCount != 3 || summary.DiscardedCount != 2 || summary.EvictedCount != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.LayerDistribution[0] != 2 || summary.LayerDistribution[1] != 1 {
		t.Errorf("unexpected layer distribution: %v", summary.LayerDistribution)
	}
	if summary.DiscardReasons["too-tall"] != 1 || summary.DiscardReasons["layers-exhausted"] != 1 {
		t.Errorf("unexpected discard reasons: %v", summary.DiscardReasons)
	}
	if summary.EvictionCauses["expired"] != 1 {
		t.Errorf("unexpected eviction causes: %v", summary.EvictionCauses)
	}
}

func TestSummarize_AttemptStatistics_CorrectMeanAndMax(t *testing.T) {
	// GIVEN placements with known attempt counts
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordPlacement(PlacementRecord{EntityID: "c1", Attempts: 1})
	st.RecordPlacement(PlacementRecord{EntityID: "c2", Attempts: 2})
	st.RecordPlacement(PlacementRecord{EntityID: "c3", Attempts: 6})

	// WHEN summarized
	summary := Summarize(st)

	// THEN mean = 3 and max = 6
	if summary.MeanAttempts != 3 {
		t.Errorf("expected mean attempts 3, got %v", summary.MeanAttempts)
	}
	if summary.MaxAttempts != 6 {
		t.Errorf("expected max attempts 6, got %d", summary.MaxAttempts)
	}
}

package trace

import (
	"testing"
)

func TestSimulationTrace_RecordPlacement_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a placement record is recorded
	st.RecordPlacement(PlacementRecord{
		EntityID: "c_1",
		Clock:    1.5,
		Mode:     "rtl",
		Layer:    0,
		OffsetY:  27,
		Attempts: 2,
	})

	// THEN the trace contains one placement with correct data
	if len(st.Placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(st.Placements))
	}
	if st.Placements[0].EntityID != "c_1" || st.Placements[0].OffsetY != 27 {
		t.Errorf("unexpected record %+v", st.Placements[0])
	}
}

func TestSimulationTrace_RecordDiscardAndEviction_AppendRecords(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	st.RecordDiscard(DiscardRecord{EntityID: "c_2", Reason: "depth-exhausted", Attempts: 120})
	st.RecordEviction(EvictionRecord{EntityID: "c_1", Cause: "seek"})

	if len(st.Discards) != 1 || st.Discards[0].Reason != "depth-exhausted" {
		t.Errorf("unexpected discards %+v", st.Discards)
	}
	if len(st.Evictions) != 1 || st.Evictions[0].Cause != "seek" {
		t.Errorf("unexpected evictions %+v", st.Evictions)
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must be disabled")
	}
	if NewSimulationTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must be disabled")
	}
	if !NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions}).Enabled() {
		t.Error("level decisions must be enabled")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"detailed", false},
		{"invalid", false},
	}
	for _, tc := range tests {
		if got := IsValidTraceLevel(tc.level); got != tc.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tc.level, got, tc.valid)
		}
	}
}

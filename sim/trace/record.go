// Package trace provides decision-trace recording for layout analysis.
// This package has no dependencies on sim/ and stores plain data types.
package trace

// PlacementRecord captures one successful layout decision.
type PlacementRecord struct {
	EntityID string
	Clock    float64 // media time of the decision (seconds)
	Mode     string
	Layer    int
	OffsetY  float64
	Attempts int // search iterations spent
}

// DiscardRecord captures an entity that could not be placed.
type DiscardRecord struct {
	EntityID string
	Clock    float64
	Mode     string
	Reason   string
	Attempts int
}

// EvictionRecord captures an entity leaving the active set.
type EvictionRecord struct {
	EntityID string
	Clock    float64
	Mode     string
	Layer    int
	Cause    string // "expired" or "seek"
}

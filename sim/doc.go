// Package sim provides the comment-overlay compositor: it lays out
// time-stamped scrolling and fixed comments on a fixed-size canvas so that
// comments sharing a lane never overlap, within a per-frame time budget.
//
// # Reading Guide
//
// Start with these files:
//   - comment.go, entity.go: the ingestion record and its on-screen kinematics
//   - timeline.go: the start-ordered store of every known comment
//   - compositor.go: eviction, batch layout, seek reconstruction and resize
//   - player.go: the frame loop that syncs media time and applies controls
//
// # Architecture
//
// The sim package owns the algorithm; adapters live in sub-packages:
//   - sim/index/: OrderedIndex, the sorted container behind every store
//   - sim/collision/: pure geometric and kinematic overlap predicates
//   - sim/workload/: comment documents and synthetic comment streams
//   - sim/render/: Renderer adapters (in-memory recorder, SVG snapshots)
//   - sim/textmetrics/: Measurer adapters over real fonts
//   - sim/observe/: Prometheus export of Metrics
//   - sim/trace/: per-decision trace records and the decision log
//
// # Key Interfaces
//
// The extension points are small:
//   - Renderer: receives placements, evictions, pause state and repaints
//   - Measurer: reports text width and em height for a font size
//   - ClockFunc: derives media time from the previous time and host elapsed time
//   - FilterFunc: hides comments without removing them from the Timeline;
//     FilterConfig compiles one from a YAML file
package sim

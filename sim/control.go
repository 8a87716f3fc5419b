package sim

import (
	"container/heap"
	"fmt"
)

// ControlType names a host-side control action on the player.
type ControlType string

const (
	ControlResize ControlType = "resize"
	ControlSeek   ControlType = "seek"
	ControlPause  ControlType = "pause"
	ControlPlay   ControlType = "play"
)

// ControlTypePriority orders control events that share a timestamp: geometry
// first, then clock jumps, then play state.
var ControlTypePriority = map[ControlType]int{
	ControlResize: 0,
	ControlSeek:   1,
	ControlPause:  2,
	ControlPlay:   3,
}

// ParseControlType validates a control type name.
func ParseControlType(s string) (ControlType, error) {
	t := ControlType(s)
	if _, ok := ControlTypePriority[t]; !ok {
		return "", fmt.Errorf("unknown control type %q; valid types: resize, seek, pause, play", s)
	}
	return t, nil
}

// ControlEvent is a scripted host action. At is in host (wall) seconds since
// the player started, so events fire while media time is paused.
type ControlEvent struct {
	At      float64     `yaml:"at"`
	Type    ControlType `yaml:"type"`
	Width   float64     `yaml:"width,omitempty"`   // resize
	Height  float64     `yaml:"height,omitempty"`  // resize
	Target  float64     `yaml:"target,omitempty"`  // seek, media seconds
	Refresh bool        `yaml:"refresh,omitempty"` // seek: force a rebuild at the same time

	id int64
}

func (e ControlEvent) String() string {
	switch e.Type {
	case ControlResize:
		return fmt.Sprintf("%s(%gx%g)@%.3f", e.Type, e.Width, e.Height, e.At)
	case ControlSeek:
		return fmt.Sprintf("%s(%g)@%.3f", e.Type, e.Target, e.At)
	}
	return fmt.Sprintf("%s@%.3f", e.Type, e.At)
}

// ControlHeap implements a priority queue with deterministic ordering
// Ordering: timestamp → type priority → schedule order
type ControlHeap struct {
	events []ControlEvent
	nextID int64
}

// NewControlHeap creates an empty control heap.
func NewControlHeap() *ControlHeap {
	h := &ControlHeap{events: make([]ControlEvent, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *ControlHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface with deterministic ordering
func (h *ControlHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.At != ej.At {
		return ei.At < ej.At
	}
	if pi, pj := ControlTypePriority[ei.Type], ControlTypePriority[ej.Type]; pi != pj {
		return pi < pj
	}
	return ei.id < ej.id
}

// Swap implements heap.Interface
func (h *ControlHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *ControlHeap) Push(x interface{}) {
	h.events = append(h.events, x.(ControlEvent))
}

// Pop implements heap.Interface
func (h *ControlHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[0 : n-1]
	return item
}

// Schedule adds an event, stamping it with its arrival order.
func (h *ControlHeap) Schedule(e ControlEvent) {
	e.id = h.nextID
	h.nextID++
	heap.Push(h, e)
}

// PopDue removes and returns, in order, every event with At <= now.
func (h *ControlHeap) PopDue(now float64) []ControlEvent {
	var due []ControlEvent
	for h.Len() > 0 && h.events[0].At <= now {
		due = append(due, heap.Pop(h).(ControlEvent))
	}
	return due
}

// Peek returns the next event without removing it.
func (h *ControlHeap) Peek() (ControlEvent, bool) {
	if h.Len() == 0 {
		return ControlEvent{}, false
	}
	return h.events[0], true
}

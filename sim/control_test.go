package sim

import (
	"testing"
)

// TestControlHeap_TimestampOrdering tests that controls are released in host-time order
func TestControlHeap_TimestampOrdering(t *testing.T) {
	h := NewControlHeap()
	h.Schedule(ControlEvent{At: 2, Type: ControlPause})
	h.Schedule(ControlEvent{At: 0.5, Type: ControlPause})
	h.Schedule(ControlEvent{At: 3, Type: ControlPlay})

	due := h.PopDue(10)
	if len(due) != 3 {
		t.Fatalf("PopDue returned %d events, want 3", len(due))
	}
	for i, want := range []float64{0.5, 2, 3} {
		if due[i].At != want {
			t.Errorf("event %d at %v, want %v", i, due[i].At, want)
		}
	}
	if h.Len() != 0 {
		t.Errorf("heap should be empty, len = %d", h.Len())
	}
}

// TestControlHeap_TypePriorityOrdering tests same-time events use type priority
func TestControlHeap_TypePriorityOrdering(t *testing.T) {
	h := NewControlHeap()
	h.Schedule(ControlEvent{At: 1, Type: ControlPlay})
	h.Schedule(ControlEvent{At: 1, Type: ControlSeek, Target: 4})
	h.Schedule(ControlEvent{At: 1, Type: ControlResize, Width: 640, Height: 360})

	due := h.PopDue(1)
	want := []ControlType{ControlResize, ControlSeek, ControlPlay}
	for i, typ := range want {
		if due[i].Type != typ {
			t.Errorf("event %d type = %s, want %s", i, due[i].Type, typ)
		}
	}
}

// TestControlHeap_ScheduleOrderBreaksTies tests identical events keep insertion order
func TestControlHeap_ScheduleOrderBreaksTies(t *testing.T) {
	h := NewControlHeap()
	for _, target := range []float64{9, 3, 6} {
		h.Schedule(ControlEvent{At: 1, Type: ControlSeek, Target: target})
	}

	due := h.PopDue(1)
	for i, want := range []float64{9, 3, 6} {
		if due[i].Target != want {
			t.Errorf("event %d target = %v, want %v", i, due[i].Target, want)
		}
	}
}

func TestControlHeap_PopDue_LeavesFutureEvents(t *testing.T) {
	h := NewControlHeap()
	h.Schedule(ControlEvent{At: 1, Type: ControlPause})
	h.Schedule(ControlEvent{At: 5, Type: ControlPlay})

	if due := h.PopDue(0.9); len(due) != 0 {
		t.Errorf("PopDue(0.9) returned %v, want nothing", due)
	}
	if due := h.PopDue(1); len(due) != 1 || due[0].Type != ControlPause {
		t.Errorf("PopDue(1) = %v, want [pause]", due)
	}
	next, ok := h.Peek()
	if !ok || next.Type != ControlPlay {
		t.Errorf("Peek() = %v, %v; want play", next, ok)
	}
}

func TestControlTypePriority_Complete(t *testing.T) {
	for _, ct := range []ControlType{ControlResize, ControlSeek, ControlPause, ControlPlay} {
		if _, err := ParseControlType(string(ct)); err != nil {
			t.Errorf("ParseControlType(%q): %v", ct, err)
		}
	}
	if _, err := ParseControlType("rewind"); err == nil {
		t.Error("ParseControlType(rewind): expected error")
	}
}

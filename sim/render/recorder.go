// Package render provides sim.Renderer adapters: an in-memory Recorder that
// tracks the visible set, and an SVG snapshot writer over it.
package render

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/danmaku-sim/danmaku-sim/sim"
)

// Recorder is a sim.Renderer that keeps the set of entities it has been
// told are on screen. It does no drawing of its own.
type Recorder struct {
	Placed   int // entities received through Place
	Evicted  int // entities received through Evict
	Repaints int
	Paused   bool
	Now      float64 // clock of the last Place or Repaint

	active map[*sim.Entity]struct{}
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{active: make(map[*sim.Entity]struct{})}
}

func (r *Recorder) Place(now float64, placed []*sim.Entity) {
	r.Now = now
	r.Placed += len(placed)
	for _, e := range placed {
		r.active[e] = struct{}{}
	}
}

func (r *Recorder) Evict(evicted []*sim.Entity) {
	r.Evicted += len(evicted)
	for _, e := range evicted {
		if _, ok := r.active[e]; !ok {
			logrus.Debugf("render: evict of unknown entity %s", e.Comment.ID)
			continue
		}
		delete(r.active, e)
	}
}

func (r *Recorder) SetPaused(paused bool) {
	r.Paused = paused
}

// Repaint replaces the visible set.
func (r *Recorder) Repaint(now float64, active []*sim.Entity) {
	r.Now = now
	r.Repaints++
	clear(r.active)
	for _, e := range active {
		r.active[e] = struct{}{}
	}
}

// Len returns the number of visible entities.
func (r *Recorder) Len() int {
	return len(r.active)
}

// Active returns the visible entities ordered by start time, then layer,
// then offset.
func (r *Recorder) Active() []*sim.Entity {
	out := make([]*sim.Entity, 0, len(r.active))
	for e := range r.active {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Comment.Start != b.Comment.Start {
			return a.Comment.Start < b.Comment.Start
		}
		if a.Layer() != b.Layer() {
			return a.Layer() < b.Layer()
		}
		if a.OffsetY() != b.OffsetY() {
			return a.OffsetY() < b.OffsetY()
		}
		return a.Comment.ID < b.Comment.ID
	})
	return out
}

package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/danmaku-sim/danmaku-sim/sim/index"
)

// FilterFunc decides whether a due comment is shown. It is applied when
// comments are pulled from the Timeline and never mutates the store.
type FilterFunc func(*Comment) bool

// Timeline is the store of every known comment, ordered by start time.
// Comments are appended by ingestion and removed only by eviction in
// non-reproducible mode.
type Timeline struct {
	idx     *index.OrderedIndex[*Comment]
	filter  FilterFunc
	maxHint float64
	probe   Comment
}

// NewTimeline creates an empty timeline. A nil filter accepts everything.
func NewTimeline(filter FilterFunc) *Timeline {
	return &Timeline{
		idx:    index.New(compareStart),
		filter: filter,
	}
}

// Add inserts comments after the ones already stored with the same start,
// so ingestion order is kept among ties. Comments with an unknown mode or an
// unusable start time are rejected.
func (t *Timeline) Add(comments ...*Comment) (added, rejected int) {
	for _, c := range comments {
		if c == nil || !c.Mode.Valid() || c.Start < 0 || math.IsNaN(c.Start) || math.IsInf(c.Start, 0) {
			rejected++
			continue
		}
		t.idx.Insert(c, index.BiasEnd)
		if validExtent(c.LifetimeHint) {
			t.maxHint = math.Max(t.maxHint, c.LifetimeHint)
		}
		added++
	}
	if rejected > 0 {
		logrus.Debugf("timeline: rejected %d comments with unknown mode or invalid start", rejected)
	}
	return added, rejected
}

// Len returns the number of stored comments.
func (t *Timeline) Len() int {
	return t.idx.Len()
}

// Comments returns the stored comments in start order. Callers MUST NOT modify
// the returned slice.
func (t *Timeline) Comments() []*Comment {
	return t.idx.Entries()
}

// Misses returns the number of failed identity removals.
func (t *Timeline) Misses() int {
	return t.idx.Misses()
}

// Due returns the comments starting in [prev, now) that pass the filter.
func (t *Timeline) Due(prev, now float64) []*Comment {
	items := t.idx.RangeByKeys(&Comment{Start: prev}, &Comment{Start: now}, 0)
	if t.filter == nil {
		return items
	}
	kept := items[:0]
	for _, c := range items {
		if t.filter(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Remove deletes the given comments by identity and returns the removed ones.
func (t *Timeline) Remove(comments []*Comment) []*Comment {
	return t.idx.RemoveByIdentity(comments, true)
}

// coverStart scans backward from now and returns the earliest start among the
// comments still on screen at now. lifetime gives each comment's duration;
// window bounds how far back a covering comment can start.
func (t *Timeline) coverStart(now, window float64, lifetime func(*Comment) float64) (float64, bool) {
	t.probe.Start = now
	i := t.idx.InsertionIndex(&t.probe)
	earliest, found := now, false
	for j := i - 1; j >= 0; j-- {
		c := t.idx.At(j)
		if c.Start < now-window {
			break
		}
		if c.Start < now && c.Start+lifetime(c) >= now {
			earliest, found = c.Start, true
		}
	}
	return earliest, found
}

package sim

import (
	"github.com/danmaku-sim/danmaku-sim/sim/index"
)

// laneKey identifies one lane tree: a motion mode and a depth layer.
type laneKey struct {
	mode  Mode
	layer int
}

// lane holds the placed, active entities of one (mode, layer) ordered by
// vertical offset. maxHeight is the tallest entity inserted since the lane was
// last empty; it bounds how far above a candidate offset a neighbour can start
// and still overlap it.
type lane struct {
	tree      *index.OrderedIndex[*Entity]
	maxHeight float64
}

func newLane() *lane {
	return &lane{tree: index.New(compareOffsetY)}
}

func (l *lane) insert(e *Entity) {
	l.tree.Insert(e, index.BiasAny)
	l.maxHeight = max(l.maxHeight, e.Height)
}

func (l *lane) remove(e *Entity) bool {
	removed := l.tree.RemoveByIdentity([]*Entity{e}, true)
	if l.tree.Len() == 0 {
		l.maxHeight = 0
	}
	return len(removed) == 1
}

// laneTable owns every lane tree, created lazily as layers are first needed.
type laneTable struct {
	lanes map[laneKey]*lane
	// misses carried over from lanes dropped by reset.
	retiredMisses int
}

func newLaneTable() *laneTable {
	return &laneTable{lanes: make(map[laneKey]*lane)}
}

// get returns the lane for (mode, layer), creating it on first use.
func (t *laneTable) get(mode Mode, layer int) *lane {
	key := laneKey{mode: mode, layer: layer}
	l, ok := t.lanes[key]
	if !ok {
		l = newLane()
		t.lanes[key] = l
	}
	return l
}

// lookup returns the lane for (mode, layer) without creating it.
func (t *laneTable) lookup(mode Mode, layer int) *lane {
	return t.lanes[laneKey{mode: mode, layer: layer}]
}

// reset drops every lane.
func (t *laneTable) reset() {
	t.retiredMisses = t.misses()
	clear(t.lanes)
}

func (t *laneTable) misses() int {
	total := t.retiredMisses
	for _, l := range t.lanes {
		total += l.tree.Misses()
	}
	return total
}

// size returns the number of entities across every lane.
func (t *laneTable) size() int {
	total := 0
	for _, l := range t.lanes {
		total += l.tree.Len()
	}
	return total
}

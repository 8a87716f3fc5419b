// Implements the Compositor: assigns each due entity a non-colliding
// (offset, layer), evicts entities whose lifetime has elapsed, and rebuilds the
// active set after a seek.

package sim

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danmaku-sim/danmaku-sim/sim/collision"
	"github.com/danmaku-sim/danmaku-sim/sim/index"
	"github.com/danmaku-sim/danmaku-sim/sim/trace"
)

// Eviction causes recorded in traces.
const (
	causeExpired = "expired"
	causeSeek    = "seek"
)

// FrameReport describes what one composition pass did. The entity slices are
// owned by the caller.
type FrameReport struct {
	Prev       float64       // start of the due window (inclusive)
	Time       float64       // media time of the frame (end of the due window, exclusive)
	Placed     []*Entity     // entities laid out this frame
	Discarded  []*Entity     // entities that could not be placed
	Evicted    []*Entity     // entities removed from the active set
	Deferred   int           // entities pushed to the next frame by the budget
	OverBudget bool          // the frame budget was exhausted
	Elapsed    time.Duration // wall time spent composing
	Paused     bool          // the player was paused; nothing was done
}

// CompositorOptions carries the compositor's collaborators. Zero values get
// working defaults.
type CompositorOptions struct {
	Renderer  Renderer
	Measurer  Measurer
	Metrics   *Metrics
	Trace     *trace.SimulationTrace
	WallClock func() time.Time // source for the frame budget
}

// Compositor owns the lane table and the viewport-active index and is the only
// writer of both. It is not safe for concurrent use.
type Compositor struct {
	cfg       Config
	timeline  *Timeline
	renderer  Renderer
	measurer  Measurer
	metrics   *Metrics
	trace     *trace.SimulationTrace
	wallClock func() time.Time

	lanes    *laneTable
	viewport *index.OrderedIndex[*Entity]
	deferred []*Entity

	maxStackDepth int
	durationScale float64 // product of resize factors, applied to lifetime hints
	probeKey      *Entity
}

// layoutHint caches the last successful placement per mode within a bucket.
type layoutHint struct {
	offsetY float64
	layer   int
}

// NewCompositor validates cfg and wires the compositor to timeline.
func NewCompositor(cfg Config, timeline *Timeline, opts CompositorOptions) (*Compositor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("compositor config: %w", err)
	}
	if timeline == nil {
		timeline = NewTimeline(nil)
	}
	c := &Compositor{
		cfg:           cfg,
		timeline:      timeline,
		renderer:      opts.Renderer,
		measurer:      opts.Measurer,
		metrics:       opts.Metrics,
		trace:         opts.Trace,
		wallClock:     opts.WallClock,
		lanes:         newLaneTable(),
		viewport:      index.New(compareEntityStart),
		maxStackDepth: cfg.MaxStackDepth(),
		durationScale: 1,
		probeKey:      &Entity{},
	}
	if c.renderer == nil {
		c.renderer = NopRenderer{}
	}
	if c.measurer == nil {
		c.measurer = EmMeasurer
	}
	if c.metrics == nil {
		c.metrics = NewMetrics()
	}
	if c.wallClock == nil {
		c.wallClock = time.Now
	}
	return c, nil
}

// Config returns the current configuration, including resize adjustments.
func (c *Compositor) Config() Config { return c.cfg }

// Timeline returns the backing timeline store.
func (c *Compositor) Timeline() *Timeline { return c.timeline }

// Metrics returns the counters the compositor writes to.
func (c *Compositor) Metrics() *Metrics { return c.metrics }

// MaxStackDepth returns the current per-entity placement attempt cap.
func (c *Compositor) MaxStackDepth() int { return c.maxStackDepth }

// Active returns the active entities in start order. Callers MUST NOT modify
// the returned slice.
func (c *Compositor) Active() []*Entity { return c.viewport.Entries() }

// Pending returns the number of entities deferred to the next frame.
func (c *Compositor) Pending() int { return len(c.deferred) }

// Lane returns the entities in the (mode, layer) lane ordered by offset.
// Callers MUST NOT modify the returned slice.
func (c *Compositor) Lane(mode Mode, layer int) []*Entity {
	if l := c.lanes.lookup(mode, layer); l != nil {
		return l.tree.Entries()
	}
	return nil
}

// LaneSize returns the number of entities across every lane.
func (c *Compositor) LaneSize() int { return c.lanes.size() }

// lifetime returns a comment's on-screen duration.
func (c *Compositor) lifetime(cm *Comment) float64 {
	if cm.LifetimeHint > 0 && validExtent(cm.LifetimeHint) {
		return cm.LifetimeHint * c.durationScale
	}
	return c.cfg.Duration
}

// lifetimeWindow is the longest lifetime any stored comment can have.
func (c *Compositor) lifetimeWindow() float64 {
	return math.Max(c.cfg.Duration, c.timeline.maxHint*c.durationScale)
}

func (c *Compositor) expired(e *Entity, now float64) bool {
	return e.End()+c.cfg.EvictionGrace < now
}

func (c *Compositor) buildEntity(cm *Comment) *Entity {
	fontSize := math.Floor(float64(cm.Size) * c.cfg.FontScaling)
	if !validExtent(fontSize) {
		fontSize = 0
	}
	w, h := c.measurer.Measure(cm.Content, fontSize)
	if !validExtent(w) || !validExtent(h) {
		c.metrics.InvalidGeometry++
		logrus.Debugf("compositor: invalid geometry %vx%v for %s, using em estimate", w, h, cm.ID)
		w, h = EmMeasurer.Measure(cm.Content, fontSize)
	}
	return newEntity(cm, w, h*c.cfg.LineHeight, fontSize, c.cfg.CanvasW, c.lifetime(cm))
}

// Frame runs one tick: evicts expired entities, then lays out the comments
// that became due in [prev, now) together with any backlog left by the
// previous frame's budget. After a clock jump, due comments whose lifetime
// already ended are discarded as expired and never enter a lane.
func (c *Compositor) Frame(prev, now float64) FrameReport {
	report := FrameReport{Prev: prev, Time: now}
	report.Evicted = c.Evict(now)

	batch := c.takeDeferred(now, &report)
	for _, cm := range c.timeline.Due(prev, now) {
		e := c.buildEntity(cm)
		if e.End() < now {
			c.reject(e, now, DiscardExpired, 0)
			report.Discarded = append(report.Discarded, e)
			continue
		}
		batch = append(batch, e)
	}
	c.composeAll(batch, now, c.cfg.FrameBudget, &report)

	c.metrics.recordFrame(report.Elapsed, c.viewport.Len())
	if len(report.Placed) > 0 {
		c.renderer.Place(now, report.Placed)
	}
	return report
}

// takeDeferred returns last frame's backlog, dropping entities whose lifetime
// ended while they waited.
func (c *Compositor) takeDeferred(now float64, report *FrameReport) []*Entity {
	if len(c.deferred) == 0 {
		return nil
	}
	batch := make([]*Entity, 0, len(c.deferred))
	for _, e := range c.deferred {
		if c.expired(e, now) {
			c.reject(e, now, DiscardExpired, 0)
			report.Discarded = append(report.Discarded, e)
			continue
		}
		batch = append(batch, e)
	}
	c.deferred = c.deferred[:0]
	return batch
}

// composeAll groups entities into start-time buckets one CompositeInterval wide
// and places each bucket in arrival order. When budget > 0 and the wall time
// spent exceeds it, the remaining entities are deferred to the next frame.
func (c *Compositor) composeAll(entities []*Entity, now float64, budget time.Duration, report *FrameReport) {
	if len(entities) == 0 {
		return
	}
	started := c.wallClock()
	defer func() {
		report.Elapsed += c.wallClock().Sub(started)
	}()

	slices.SortStableFunc(entities, compareEntityStart)
	step := c.cfg.CompositeInterval.Seconds()
	base := entities[0].Comment.Start
	bucket := -1
	var cache map[Mode]layoutHint

	for i, e := range entities {
		if j := int(math.Floor((e.Comment.Start - base) / step)); j != bucket {
			bucket = j
			cache = make(map[Mode]layoutHint, len(Modes))
		}
		if c.place(e, now, cache) {
			report.Placed = append(report.Placed, e)
		} else {
			report.Discarded = append(report.Discarded, e)
		}

		if budget > 0 && i+1 < len(entities) && c.wallClock().Sub(started) > budget {
			rest := entities[i+1:]
			c.deferred = append(c.deferred, rest...)
			report.Deferred += len(rest)
			report.OverBudget = true
			c.metrics.Deferred += len(rest)
			c.metrics.BudgetOverruns++
			logrus.Debugf("compositor: frame budget %v exceeded at t=%.3f, deferring %d entities", budget, now, len(rest))
			break
		}
	}

	if n := len(report.Discarded); n > 0 {
		logrus.Debugf("compositor: %d entities have been discarded at t=%.3f", n, now)
	}
}

// place searches (offset, layer) candidates for e, starting from the bucket's
// last successful placement for its mode. Every attempt either finalizes the
// placement, moves to a corrected offset below a colliding neighbour, moves to
// the next layer, or rejects the entity. The loop is capped at maxStackDepth.
func (c *Compositor) place(e *Entity, now float64, cache map[Mode]layoutHint) bool {
	if e.state != StatePending {
		return e.state == StatePlaced
	}

	budget := c.cfg.layerBudget(e.Comment.Highlight)
	offset, layer := 0.0, 0
	if hint, ok := cache[e.Mode()]; ok && hint.layer <= budget {
		offset, layer = hint.offsetY, hint.layer
	}

	reason := DiscardDepthExhausted
	attempts := 0
	for attempts < c.maxStackDepth {
		attempts++
		if e.Height > c.cfg.CanvasH {
			reason = DiscardTooTall
			break
		}
		if layer > budget {
			reason = DiscardLayersExhausted
			break
		}
		if offset < 0 || offset+e.Height > c.cfg.CanvasH {
			offset, layer = 0, layer+1
			continue
		}

		ln := c.lanes.get(e.Mode(), layer)
		if next, collided := c.probe(ln, e, offset, now); collided {
			offset = next
			continue
		}

		e.SetLayout(offset, layer)
		ln.insert(e)
		c.viewport.Insert(e, index.BiasEnd)
		cache[e.Mode()] = layoutHint{offsetY: offset, layer: layer}
		c.metrics.recordPlacement(e, attempts)
		if c.trace.Enabled() {
			c.trace.RecordPlacement(trace.PlacementRecord{
				EntityID: e.Comment.ID,
				Clock:    now,
				Mode:     e.Mode().String(),
				Layer:    layer,
				OffsetY:  offset,
				Attempts: attempts,
			})
		}
		return true
	}

	c.reject(e, now, reason, attempts)
	return false
}

// probe checks e at offset against the lane neighbours whose vertical span can
// reach [offset, offset+Height]. On the first collision it returns the offset
// just below that neighbour.
func (c *Compositor) probe(ln *lane, e *Entity, offset, now float64) (float64, bool) {
	c.probeKey.offsetY = offset - ln.maxHeight
	lo := ln.tree.InsertionIndex(c.probeKey)
	c.probeKey.offsetY = offset + e.Height
	_, _, hi := ln.tree.InsertionRange(c.probeKey)

	target := e.body(now, offset)
	for i := lo; i < hi; i++ {
		exist := ln.tree.At(i)
		other := exist.body(now, exist.offsetY)
		if collision.Overlaps(target.Rect, other.Rect) || collision.WillCollideInLane(target, other, offset) {
			return exist.offsetY + exist.Height + c.cfg.LaneSpacing, true
		}
	}
	return offset, false
}

func (c *Compositor) reject(e *Entity, now float64, reason DiscardReason, attempts int) {
	e.discard()
	c.metrics.Discarded[reason]++
	if c.trace.Enabled() {
		c.trace.RecordDiscard(trace.DiscardRecord{
			EntityID: e.Comment.ID,
			Clock:    now,
			Mode:     e.Mode().String(),
			Reason:   string(reason),
			Attempts: attempts,
		})
	}
}

// Evict removes every active entity whose start + lifetime + EvictionGrace is
// behind now and returns them in start order.
func (c *Compositor) Evict(now float64) []*Entity {
	var outdated []*Entity
	for _, e := range c.viewport.Entries() {
		if e.Comment.Start+c.cfg.EvictionGrace >= now {
			break
		}
		if c.expired(e, now) {
			outdated = append(outdated, e)
		}
	}
	return c.remove(outdated, now, causeExpired)
}

// EvictAll tears down the whole active set (lanes, viewport and backlog), as
// required before the clock jumps.
func (c *Compositor) EvictAll(now float64) []*Entity {
	removed := c.remove(slices.Clone(c.viewport.Entries()), now, causeSeek)
	if n := len(c.deferred); n > 0 {
		logrus.Debugf("compositor: dropping %d deferred entities on teardown", n)
		c.deferred = c.deferred[:0]
	}
	c.lanes.reset()
	c.viewport.Clear()
	c.syncMisses()
	return removed
}

// remove evicts entities from their lanes and the viewport by identity. In
// non-reproducible mode their comments also leave the timeline for good.
func (c *Compositor) remove(entities []*Entity, now float64, cause string) []*Entity {
	if len(entities) == 0 {
		return nil
	}
	for _, e := range entities {
		ln := c.lanes.lookup(e.Mode(), e.layer)
		if ln == nil {
			logrus.Warnf("compositor: no lane (%s, %d) for %s", e.Mode(), e.layer, e.Comment.ID)
			continue
		}
		ln.remove(e)
	}

	removed := c.viewport.RemoveByIdentity(entities, true)
	for _, e := range removed {
		e.evict()
		if c.trace.Enabled() {
			c.trace.RecordEviction(trace.EvictionRecord{
				EntityID: e.Comment.ID,
				Clock:    now,
				Mode:     e.Mode().String(),
				Layer:    e.layer,
				Cause:    cause,
			})
		}
	}
	c.metrics.Evicted += len(removed)
	c.renderer.Evict(removed)

	if !c.cfg.Reproducible && len(removed) > 0 {
		comments := make([]*Comment, len(removed))
		for i, e := range removed {
			comments[i] = e.Comment
		}
		c.timeline.Remove(comments)
	}
	c.syncMisses()
	return removed
}

// Reconstruct rebuilds the active set as of now from the timeline: it finds
// the earliest comment still on screen at now and lays out everything from
// there to now, skipping comments that already ended. It runs without a frame
// budget since a seek must complete before the next frame.
func (c *Compositor) Reconstruct(now float64) FrameReport {
	report := FrameReport{Prev: now, Time: now}
	earliest, ok := c.timeline.coverStart(now, c.lifetimeWindow(), c.lifetime)
	if !ok {
		c.renderer.Repaint(now, c.viewport.Entries())
		return report
	}
	report.Prev = earliest

	var batch []*Entity
	for _, cm := range c.timeline.Due(earliest, now) {
		e := c.buildEntity(cm)
		if e.End() < now {
			continue
		}
		batch = append(batch, e)
	}
	c.composeAll(batch, now, 0, &report)
	c.metrics.PeakActive = max(c.metrics.PeakActive, c.viewport.Len())

	if len(report.Placed) > 0 {
		c.renderer.Place(now, report.Placed)
	}
	c.renderer.Repaint(now, c.viewport.Entries())
	return report
}

// Resize changes the canvas. A non-positive dimension is left unchanged. With
// ScalableDuration the lifetime of every active and future entity scales with
// the width ratio. Existing placements are kept.
func (c *Compositor) Resize(w, h, now float64) bool {
	validW, validH := positiveFinite(w), positiveFinite(h)
	if !validW && !validH {
		return false
	}

	factor := 1.0
	if validW {
		if c.cfg.ScalableDuration {
			factor = w / c.cfg.CanvasW
			c.cfg.Duration *= factor
			c.durationScale *= factor
		}
		c.cfg.CanvasW = w
	}
	if validH {
		c.cfg.CanvasH = h
	}
	c.maxStackDepth = c.cfg.MaxStackDepth()

	for _, e := range c.viewport.Entries() {
		e.rescale(c.cfg.CanvasW, factor)
	}
	for _, e := range c.deferred {
		e.rescale(c.cfg.CanvasW, factor)
	}
	c.metrics.Resizes++
	c.renderer.Repaint(now, c.viewport.Entries())
	return true
}

// Search returns the active entities whose on-screen box at now contains the
// canvas point (x, y). Boxes are mapped as in Entity.ScreenRect.
func (c *Compositor) Search(x, y, now float64) []*Entity {
	point := collision.Rect{X: x, Y: y}
	var hits []*Entity
	for _, e := range c.viewport.Entries() {
		if collision.Overlaps(point, e.ScreenRect(now, c.cfg.CanvasW, c.cfg.CanvasH)) {
			hits = append(hits, e)
		}
	}
	return hits
}

// syncMisses publishes identity-removal misses from every index.
func (c *Compositor) syncMisses() {
	c.metrics.IdentityMisses = c.viewport.Misses() + c.lanes.misses() + c.timeline.Misses()
}

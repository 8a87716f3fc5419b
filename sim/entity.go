// Defines the Entity struct: one comment being laid out on the canvas.
// Tracks measured geometry, lifetime and the one-shot placement decision.

package sim

import (
	"fmt"
	"math"

	"github.com/danmaku-sim/danmaku-sim/sim/collision"
)

// entryGap is the distance (px) a horizontal entity starts beyond the canvas edge.
const entryGap = 1

// EntityState represents the lifecycle state of an entity.
type EntityState string

const (
	StatePending   EntityState = "pending"
	StatePlaced    EntityState = "placed"
	StateDiscarded EntityState = "discarded"
	StateEvicted   EntityState = "evicted"
)

// Entity models one comment on screen. Geometry is fixed at creation; the
// placement (offset, layer) is assigned at most once by the compositor.
type Entity struct {
	Comment  *Comment // source record, shared with the Timeline
	Width    float64  // measured text width (px)
	Height   float64  // line box height (px)
	FontSize float64  // scaled font size (px)

	canvasW  float64
	duration float64

	state   EntityState
	offsetY float64
	layer   int
}

func newEntity(c *Comment, width, height, fontSize, canvasW, duration float64) *Entity {
	return &Entity{
		Comment:  c,
		Width:    width,
		Height:   height,
		FontSize: fontSize,
		canvasW:  canvasW,
		duration: duration,
		state:    StatePending,
	}
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity: (ID: %s, State: %s, Mode: %s, OffsetY: %.1f, Layer: %d)",
		e.Comment.ID, e.state, e.Comment.Mode, e.offsetY, e.layer)
}

// State returns the entity's lifecycle state.
func (e *Entity) State() EntityState { return e.state }

// Placed reports whether the entity has been given a layout.
func (e *Entity) Placed() bool { return e.state == StatePlaced || e.state == StateEvicted }

// OffsetY returns the vertical offset assigned at placement.
func (e *Entity) OffsetY() float64 { return e.offsetY }

// Layer returns the depth layer assigned at placement.
func (e *Entity) Layer() int { return e.layer }

// Mode returns the entity's motion mode.
func (e *Entity) Mode() Mode { return e.Comment.Mode }

// Duration returns the effective on-screen lifetime in seconds.
func (e *Entity) Duration() float64 { return e.duration }

// End returns the media time at which the entity's lifetime ends.
func (e *Entity) End() float64 { return e.Comment.Start + e.duration }

// Elapsed returns how long the entity has been on screen at now, clamped to [0, Duration].
func (e *Entity) Elapsed(now float64) float64 {
	return math.Min(math.Max(0, now-e.Comment.Start), e.duration)
}

// Rest returns the lifetime left at now, clamped to [0, Duration].
func (e *Entity) Rest(now float64) float64 {
	return e.duration - e.Elapsed(now)
}

// TotalDistance is how far a horizontal entity travels: across the canvas plus
// its own width plus the entry gap.
func (e *Entity) TotalDistance() float64 {
	return e.canvasW + e.Width + entryGap
}

// Speed is the constant linear speed in px/s.
func (e *Entity) Speed() float64 {
	return e.TotalDistance() / e.duration
}

// X returns the left edge at now. Horizontal entities are expressed in a
// frame where every mode travels toward decreasing X; renderers mirror
// left-to-right comments. Vertical entities are centered.
func (e *Entity) X(now float64) float64 {
	if !e.Comment.Mode.Horizontal() {
		return (e.canvasW - e.Width) / 2
	}
	return e.Rest(now)/e.duration*e.TotalDistance() - e.Width
}

// InitialX returns the left edge at the entity's start time.
func (e *Entity) InitialX() float64 {
	if !e.Comment.Mode.Horizontal() {
		return (e.canvasW - e.Width) / 2
	}
	return e.canvasW + entryGap
}

// Rect returns the entity's bounding box at now.
func (e *Entity) Rect(now float64) collision.Rect {
	return collision.Rect{X: e.X(now), Y: e.offsetY, Width: e.Width, Height: e.Height}
}

// ScreenRect maps Rect to canvas coordinates for a width x height canvas.
// Left-to-right comments are mirrored and bottom lane offsets count up from
// the bottom edge.
func (e *Entity) ScreenRect(now, width, height float64) collision.Rect {
	r := e.Rect(now)
	switch e.Comment.Mode {
	case ModeLeftToRight:
		r.X = width - r.X - r.Width
	case ModeBottomToTop:
		r.Y = height - r.Y - r.Height
	}
	return r
}

// body returns the kinematic view used by the collision oracle, with the
// vertical offset replaced by offsetY.
func (e *Entity) body(now, offsetY float64) collision.Body {
	return collision.Body{
		Rect:       collision.Rect{X: e.X(now), Y: offsetY, Width: e.Width, Height: e.Height},
		Speed:      e.Speed(),
		Rest:       e.Rest(now),
		Horizontal: e.Comment.Mode.Horizontal(),
	}
}

// SetLayout assigns the entity's placement. It succeeds only once; later calls
// leave the placement untouched and return false.
func (e *Entity) SetLayout(offsetY float64, layer int) bool {
	if e.state != StatePending {
		return false
	}
	e.offsetY = offsetY
	e.layer = layer
	e.state = StatePlaced
	return true
}

func (e *Entity) discard() {
	if e.state == StatePending {
		e.state = StateDiscarded
	}
}

func (e *Entity) evict() {
	e.state = StateEvicted
}

// rescale applies a canvas resize: new canvas width and a duration multiplier.
func (e *Entity) rescale(canvasW, durationFactor float64) {
	e.canvasW = canvasW
	e.duration *= durationFactor
}

// compareEntityStart orders entities by their comment's start time.
func compareEntityStart(target, element *Entity) int {
	return compareStart(target.Comment, element.Comment)
}

// compareOffsetY orders entities in a lane by vertical offset.
func compareOffsetY(target, element *Entity) int {
	switch {
	case target.offsetY < element.offsetY:
		return -1
	case target.offsetY > element.offsetY:
		return 1
	}
	return 0
}

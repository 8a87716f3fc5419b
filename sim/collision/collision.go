// Package collision holds the stateless geometric and kinematic predicates the
// compositor uses to keep entities in one lane from touching.
package collision

import "math"

// NominalLaneWidth is the fixed width used when only the vertical spans of two
// bodies matter (row overlap). The value is irrelevant as long as both rows use
// the same one, since the rectangles share X.
const NominalLaneWidth = 64

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Overlaps reports whether a and b intersect. Rectangles that exactly touch
// count as overlapping.
func Overlaps(a, b Rect) bool {
	ax, ay := a.X+a.Width/2, a.Y+a.Height/2
	bx, by := b.X+b.Width/2, b.Y+b.Height/2
	return math.Abs(ax-bx) <= (a.Width+b.Width)/2 &&
		math.Abs(ay-by) <= (a.Height+b.Height)/2
}

// Body is a rectangle moving at a constant speed toward decreasing X.
// Rest is the lifetime left (seconds) before the body leaves the viewport.
type Body struct {
	Rect
	Speed      float64
	Rest       float64
	Horizontal bool
}

// WillCollideInLane reports whether target, placed at candidateY, would run into
// existing before either of them expires. Only horizontally moving bodies can
// catch up with each other; vertical bodies are centered and never do.
func WillCollideInLane(target, existing Body, candidateY float64) bool {
	if !target.Horizontal || !existing.Horizontal {
		return false
	}

	sameRow := Overlaps(
		Rect{Y: candidateY, Width: NominalLaneWidth, Height: target.Height},
		Rect{Y: existing.Y, Width: NominalLaneWidth, Height: existing.Height},
	)
	if !sameRow {
		return false
	}

	diffSpeed := target.Speed - existing.Speed
	closing := math.Min(target.Rest, existing.Rest) * math.Abs(diffSpeed)

	switch {
	case diffSpeed > 0:
		// target is faster: it must not reach an existing body ahead of it.
		if existing.X+existing.Width < target.X {
			return closing > target.X-(existing.X+existing.Width)
		}
		return !(target.X+target.Width < existing.X)
	case diffSpeed < 0:
		// existing is faster: it must not reach target ahead of it.
		if target.X+target.Width < existing.X {
			return closing > existing.X-(target.X+target.Width)
		}
		return !(existing.X+existing.Width < target.X)
	}
	return false
}

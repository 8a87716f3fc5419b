package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntity_HorizontalKinematics(t *testing.T) {
	// GIVEN a 100px wide entity on an 800px canvas with a 5s lifetime
	e := newEntity(testComment("a", 10, ModeRightToLeft, 20, "x"), 100, 20, 20, 800, 5)

	// THEN it travels canvas + width + entry gap at constant speed
	assert.Equal(t, 901.0, e.TotalDistance())
	assert.InDelta(t, 180.2, e.Speed(), 1e-9)
	assert.Equal(t, 801.0, e.InitialX())
	assert.Equal(t, 801.0, e.X(10))
	assert.InDelta(t, 350.5, e.X(12.5), 1e-9)
	assert.Equal(t, -100.0, e.X(15))
	assert.Equal(t, -100.0, e.X(99), "position clamps after the lifetime")
	assert.Equal(t, 801.0, e.X(0), "position clamps before the start")
	assert.Equal(t, 15.0, e.End())
	assert.Equal(t, 2.5, e.Rest(12.5))
}

func TestEntity_VerticalIsCentered(t *testing.T) {
	e := newEntity(testComment("a", 0, ModeBottomToTop, 20, "x"), 100, 20, 20, 800, 5)

	assert.Equal(t, 350.0, e.X(0))
	assert.Equal(t, 350.0, e.X(3))
	assert.Equal(t, 350.0, e.InitialX())
	assert.False(t, e.body(1, 0).Horizontal)
}

func TestEntity_SetLayout_OnlyOnce(t *testing.T) {
	e := newEntity(testComment("a", 0, ModeRightToLeft, 20, "x"), 10, 20, 20, 800, 5)
	assert.Equal(t, StatePending, e.State())

	assert.True(t, e.SetLayout(40, 1))
	assert.False(t, e.SetLayout(0, 0))

	assert.Equal(t, 40.0, e.OffsetY())
	assert.Equal(t, 1, e.Layer())
	assert.True(t, e.Placed())
	assert.Equal(t, 40.0, e.Rect(0).Y)
}

func TestEntity_DiscardOnlyFromPending(t *testing.T) {
	placed := newEntity(testComment("a", 0, ModeRightToLeft, 20, "x"), 10, 20, 20, 800, 5)
	placed.SetLayout(0, 0)
	placed.discard()
	assert.Equal(t, StatePlaced, placed.State())

	pending := newEntity(testComment("b", 0, ModeRightToLeft, 20, "x"), 10, 20, 20, 800, 5)
	pending.discard()
	assert.Equal(t, StateDiscarded, pending.State())
	assert.False(t, pending.SetLayout(0, 0))
}

func TestEntity_Rescale(t *testing.T) {
	e := newEntity(testComment("a", 0, ModeRightToLeft, 20, "x"), 100, 20, 20, 800, 4)
	e.rescale(400, 0.5)

	assert.Equal(t, 2.0, e.Duration())
	assert.Equal(t, 501.0, e.TotalDistance())
}

package sim

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig returns a small canvas with unit line height and no frame budget,
// so entity height equals comment size.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CanvasW = 800
	cfg.CanvasH = 600
	cfg.LineHeight = 1
	cfg.FrameBudget = 0
	return cfg
}

// testComment builds a comment whose entity is len(content)*size wide and
// size tall under EmMeasurer.
func testComment(id string, start float64, mode Mode, size int, content string) *Comment {
	return &Comment{ID: id, Start: start, Mode: mode, Size: size, Content: content, Color: 0xffffff}
}

// testComments generates n comments with random starts in [0, horizon).
func testComments(rng *rand.Rand, n int, horizon float64) []*Comment {
	comments := make([]*Comment, n)
	for i := range comments {
		c := testComment(
			fmt.Sprintf("c%d", i),
			rng.Float64()*horizon,
			Modes[rng.Intn(len(Modes))],
			16+rng.Intn(25),
			strings.Repeat("w", 1+rng.Intn(20)),
		)
		if rng.Intn(4) == 0 {
			c.LifetimeHint = 2 + rng.Float64()*6
		}
		c.Highlight = rng.Intn(10) == 0
		comments[i] = c
	}
	return comments
}

func newTestCompositor(t *testing.T, cfg Config, opts CompositorOptions) *Compositor {
	t.Helper()
	c, err := NewCompositor(cfg, NewTimeline(nil), opts)
	require.NoError(t, err)
	return c
}

// recordingRenderer counts renderer callbacks.
type recordingRenderer struct {
	placed   []*Entity
	evicted  []*Entity
	paused   []bool
	repaints int
}

func (r *recordingRenderer) Place(_ float64, placed []*Entity) {
	r.placed = append(r.placed, placed...)
}
func (r *recordingRenderer) Evict(evicted []*Entity)    { r.evicted = append(r.evicted, evicted...) }
func (r *recordingRenderer) SetPaused(paused bool)      { r.paused = append(r.paused, paused) }
func (r *recordingRenderer) Repaint(float64, []*Entity) { r.repaints++ }

type layout struct {
	offsetY float64
	layer   int
}

// snapshot maps active entity IDs to their placement.
func snapshot(c *Compositor) map[string]layout {
	out := make(map[string]layout, len(c.Active()))
	for _, e := range c.Active() {
		out[e.Comment.ID] = layout{e.OffsetY(), e.Layer()}
	}
	return out
}

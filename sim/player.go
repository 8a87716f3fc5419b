// Implements the Player: the frame-driven scheduler around a Compositor.
// It syncs media time from a host clock, applies play/pause/seek/resize and
// scripted control events between frames, and tracks a frame-rate estimate.

package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danmaku-sim/danmaku-sim/sim/trace"
)

// PlayerOptions configures a Player. Only Config is required.
type PlayerOptions struct {
	Config    Config
	Clock     ClockFunc  // media clock; DefaultClock when nil
	Filter    FilterFunc // display filter applied to due comments
	Renderer  Renderer
	Measurer  Measurer
	Metrics   *Metrics
	Trace     *trace.SimulationTrace
	WallClock func() time.Time // frame budget clock; time.Now when nil
}

// Player owns the media clock and calls the Compositor once per frame. It is
// not safe for concurrent use: drive it from one goroutine, or through Run.
type Player struct {
	comp     *Compositor
	clock    ClockFunc
	renderer Renderer
	controls *ControlHeap
	fps      fpsMeter

	current   float64 // media time, seconds
	paused    bool
	lastStamp time.Duration
	hasStamp  bool
}

// NewPlayer builds a paused player with an empty timeline.
func NewPlayer(opts PlayerOptions) (*Player, error) {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	comp, err := NewCompositor(opts.Config, NewTimeline(opts.Filter), CompositorOptions{
		Renderer:  renderer,
		Measurer:  opts.Measurer,
		Metrics:   opts.Metrics,
		Trace:     opts.Trace,
		WallClock: opts.WallClock,
	})
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	clock := opts.Clock
	if clock == nil {
		clock = DefaultClock
	}
	return &Player{
		comp:     comp,
		clock:    clock,
		renderer: renderer,
		controls: NewControlHeap(),
		paused:   true,
	}, nil
}

// Compositor returns the underlying compositor.
func (p *Player) Compositor() *Compositor { return p.comp }

// Metrics returns the run's counters.
func (p *Player) Metrics() *Metrics { return p.comp.metrics }

// CurrentTime returns the media time of the last frame, in seconds.
func (p *Player) CurrentTime() float64 { return p.current }

// Paused reports whether frames are currently skipped.
func (p *Player) Paused() bool { return p.paused }

// FPS returns the frame-rate estimate over the last few frame intervals.
func (p *Player) FPS() float64 { return p.fps.fps() }

// Add stores comments in the timeline. See Timeline.Add.
func (p *Player) Add(comments ...*Comment) (added, rejected int) {
	return p.comp.timeline.Add(comments...)
}

// Play resumes frame processing. The first frame after Play advances media
// time by zero.
func (p *Player) Play() {
	if !p.paused {
		return
	}
	p.paused = false
	p.hasStamp = false
	p.renderer.SetPaused(false)
	logrus.Debugf("player: play at t=%.3f", p.current)
}

// Pause stops frame processing; deferred work resumes on the next frame after Play.
func (p *Player) Pause() {
	if p.paused {
		return
	}
	p.paused = true
	p.hasStamp = false
	p.renderer.SetPaused(true)
	logrus.Debugf("player: pause at t=%.3f", p.current)
}

// Seek jumps media time to `to`. Every active entity is evicted first; with
// refresh, the entities still on screen at `to` are composed again. Seeking to
// an invalid time, or to the current time without refresh, does nothing.
func (p *Player) Seek(to float64, refresh bool) bool {
	if to < 0 || math.IsNaN(to) || math.IsInf(to, 0) {
		logrus.Debugf("player: ignoring seek to %v", to)
		return false
	}
	if to == p.current && !refresh {
		return false
	}

	p.comp.EvictAll(p.current)
	p.current = to
	p.hasStamp = false
	p.comp.metrics.Seeks++
	if refresh {
		report := p.comp.Reconstruct(to)
		logrus.Debugf("player: seek to t=%.3f rebuilt %d entities", to, len(report.Placed))
	}
	return true
}

// Resize changes the canvas at the current media time. See Compositor.Resize.
func (p *Player) Resize(w, h float64) bool {
	return p.comp.Resize(w, h, p.current)
}

// Search returns the active entities under (x, y) at the current media time.
func (p *Player) Search(x, y float64) []*Entity {
	return p.comp.Search(x, y, p.current)
}

// Schedule queues a control event to fire once host time reaches its At.
func (p *Player) Schedule(events ...ControlEvent) {
	for _, ev := range events {
		p.controls.Schedule(ev)
	}
}

// Apply executes a control event immediately.
func (p *Player) Apply(ev ControlEvent) {
	switch ev.Type {
	case ControlResize:
		p.Resize(ev.Width, ev.Height)
	case ControlSeek:
		p.Seek(ev.Target, ev.Refresh)
	case ControlPause:
		p.Pause()
	case ControlPlay:
		p.Play()
	default:
		logrus.Warnf("player: unknown control %q", ev.Type)
	}
}

// Tick processes one display refresh at host time stamp (time since the host
// started). Due control events are applied first; then, unless paused, media
// time is synced from the clock and one frame is composed.
func (p *Player) Tick(stamp time.Duration) FrameReport {
	for _, ev := range p.controls.PopDue(stamp.Seconds()) {
		logrus.Debugf("player: control %s", ev)
		p.Apply(ev)
	}
	if p.paused {
		return FrameReport{Prev: p.current, Time: p.current, Paused: true}
	}

	elapsed := 0.0
	if p.hasStamp {
		elapsed = math.Max(0, (stamp - p.lastStamp).Seconds())
		p.fps.sample(elapsed)
	}
	p.lastStamp, p.hasStamp = stamp, true

	next, ok := syncClock(p.clock, p.current, elapsed)
	if !ok {
		p.comp.metrics.InvalidClockSamples++
		logrus.Debugf("player: invalid clock sample at t=%.3f, keeping previous time", p.current)
	}
	prev := p.current
	p.current = next
	return p.comp.Frame(prev, next)
}

// Run drives the player from a tick source until ctx is cancelled or ticks is
// closed. Controls received on the channel are applied between frames.
// onFrame, if set, is called after every tick on Run's goroutine.
func (p *Player) Run(ctx context.Context, ticks <-chan time.Time, controls <-chan ControlEvent, onFrame func(FrameReport)) error {
	var origin time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-controls:
			if !ok {
				controls = nil
				continue
			}
			p.Apply(ev)
		case t, ok := <-ticks:
			if !ok {
				return nil
			}
			if origin.IsZero() {
				origin = t
			}
			report := p.Tick(t.Sub(origin))
			if onFrame != nil {
				onFrame(report)
			}
		}
	}
}

// Simulate runs a fixed frame rate for hostSeconds of host time, calling
// onFrame after every tick. It is deterministic given a deterministic clock
// and wall clock.
func (p *Player) Simulate(ctx context.Context, hostSeconds, fps float64, onFrame func(FrameReport)) error {
	if !positiveFinite(fps) || hostSeconds < 0 || math.IsNaN(hostSeconds) || math.IsInf(hostSeconds, 0) {
		return fmt.Errorf("simulate: invalid horizon %v or frame rate %v", hostSeconds, fps)
	}
	frames := int(math.Floor(hostSeconds * fps))
	for i := 0; i <= frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stamp := time.Duration(float64(i) / fps * float64(time.Second))
		report := p.Tick(stamp)
		if onFrame != nil {
			onFrame(report)
		}
	}
	return nil
}

package field

import (
	"sync"
	"time"

	"github.com/preston-bernstein/gamecast-service/internal/timeutil"
)

// DefaultFrameInterval is roughly one display frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Marker is the rendered ball on a card's field diagram.
type Marker interface {
	Move(Frame)
	Remove()
}

// Result is delivered once when an animation ends.
type Result struct {
	FinalYard float64
	Cancelled bool
}

// AnimationConfig configures a single marker animation.
type AnimationConfig struct {
	Geometry      Geometry
	Path          Path
	Marker        Marker
	Duration      time.Duration
	FrameInterval time.Duration
	Clock         timeutil.Clock
}

// Animation moves a marker along a path on clock-driven frames. It removes the marker when
// it finishes or is cancelled.
type Animation struct {
	cfg AnimationConfig

	mu       sync.Mutex
	started  time.Time
	timer    timeutil.Timer
	running  bool
	finished bool
	done     chan Result

	drawMu  sync.Mutex
	last    Frame
	moved   bool
	removed bool
}

func NewAnimation(cfg AnimationConfig) *Animation {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	cfg.Clock = timeutil.OrReal(cfg.Clock)
	return &Animation{cfg: cfg, done: make(chan Result, 1)}
}

// Start places the marker at the path origin and begins ticking. Calling Start again is a no-op.
func (a *Animation) Start() {
	a.mu.Lock()
	if a.running || a.finished {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.started = a.cfg.Clock.Now()
	if a.cfg.Duration <= 0 {
		a.mu.Unlock()
		a.complete(false)
		return
	}
	a.timer = a.cfg.Clock.AfterFunc(a.cfg.FrameInterval, a.tick)
	a.mu.Unlock()

	a.move(a.cfg.Path.At(0))
}

// Cancel stops the animation early and removes the marker.
func (a *Animation) Cancel() {
	a.complete(true)
}

// Done yields the result once the animation completes or is cancelled.
func (a *Animation) Done() <-chan Result {
	return a.done
}

func (a *Animation) tick() {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	elapsed := a.cfg.Clock.Now().Sub(a.started)
	progress := float64(elapsed) / float64(a.cfg.Duration)
	if progress >= 1 {
		a.mu.Unlock()
		a.complete(false)
		return
	}
	a.timer = a.cfg.Clock.AfterFunc(a.cfg.FrameInterval, a.tick)
	a.mu.Unlock()

	a.move(a.cfg.Path.At(progress))
}

func (a *Animation) complete(cancelled bool) {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	a.finished = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	if !cancelled {
		a.move(a.cfg.Path.At(1))
	}
	final := a.remove()
	a.done <- Result{
		FinalYard: a.cfg.Geometry.XToYard(final.Point.X, final.Point.Y),
		Cancelled: cancelled,
	}
	close(a.done)
}

// move and remove serialize marker calls so a late frame never lands after removal.
func (a *Animation) move(f Frame) {
	a.drawMu.Lock()
	defer a.drawMu.Unlock()
	if a.removed {
		return
	}
	a.last = f
	a.moved = true
	if a.cfg.Marker != nil {
		a.cfg.Marker.Move(f)
	}
}

func (a *Animation) remove() Frame {
	a.drawMu.Lock()
	defer a.drawMu.Unlock()
	a.removed = true
	if a.cfg.Marker != nil {
		a.cfg.Marker.Remove()
	}
	if !a.moved {
		return a.cfg.Path.At(0)
	}
	return a.last
}

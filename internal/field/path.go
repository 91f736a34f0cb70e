package field

import (
	"fmt"
	"math"
)

// PathKind names the motion treatment of a path.
type PathKind string

const (
	KindRush      PathKind = "rush"
	KindPass      PathKind = "pass"
	KindKick      PathKind = "kick"
	KindFieldGoal PathKind = "field-goal"
	KindPenalty   PathKind = "penalty"
	KindTumble    PathKind = "tumble"
)

// Frame is the marker state at one instant of a path.
type Frame struct {
	Point    Point   `json:"point"`
	Rotation float64 `json:"rotation"` // degrees
	Opacity  float64 `json:"opacity"`
	Label    string  `json:"label,omitempty"`
}

// Path is a motion sampled by normalized progress t in [0,1].
type Path interface {
	Kind() PathKind
	At(t float64) Frame
}

// End returns where a path finishes.
func End(p Path) Point {
	return p.At(1).Point
}

type linePath struct {
	from, to Point
}

func (p linePath) Kind() PathKind { return KindRush }

func (p linePath) At(t float64) Frame {
	return Frame{Point: lerpPoint(p.from, p.to, clamp(t, 0, 1)), Opacity: 1}
}

// quadArc is a quadratic Bézier whose apex sits peak units above the chord midpoint.
type quadArc struct {
	kind     PathKind
	from, to Point
	ctrl     Point
	turns    float64
}

func newQuadArc(kind PathKind, from, to Point, peak, turns float64) quadArc {
	mid := lerpPoint(from, to, 0.5)
	return quadArc{
		kind:  kind,
		from:  from,
		to:    to,
		ctrl:  Point{X: mid.X, Y: mid.Y - 2*peak},
		turns: turns,
	}
}

func (p quadArc) Kind() PathKind { return p.kind }

func (p quadArc) At(t float64) Frame {
	t = clamp(t, 0, 1)
	u := 1 - t
	pt := Point{
		X: u*u*p.from.X + 2*u*t*p.ctrl.X + t*t*p.to.X,
		Y: u*u*p.from.Y + 2*u*t*p.ctrl.Y + t*t*p.to.Y,
	}
	return Frame{Point: pt, Rotation: 360 * p.turns * t, Opacity: 1}
}

// GoalPostPath is a cubic arc from the kick spot to the uprights.
type GoalPostPath struct {
	from, c1, c2, to Point
	Good             bool
	Label            string
}

func (p GoalPostPath) Kind() PathKind { return KindFieldGoal }

func (p GoalPostPath) At(t float64) Frame {
	t = clamp(t, 0, 1)
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	pt := Point{
		X: a*p.from.X + b*p.c1.X + c*p.c2.X + d*p.to.X,
		Y: a*p.from.Y + b*p.c1.Y + c*p.c2.Y + d*p.to.Y,
	}
	f := Frame{Point: pt, Rotation: 540 * t, Opacity: 1}
	if t >= 1 {
		f.Label = p.Label
	}
	return f
}

// Tone is the color treatment of a penalty marker.
type Tone string

const (
	ToneLoss    Tone = "loss"
	ToneNeutral Tone = "neutral"
)

// Color returns the stroke color for a tone.
func (t Tone) Color() string {
	if t == ToneLoss {
		return "#d32f2f"
	}
	return "#f5f5f5"
}

// PenaltyPath draws a growing arrow from the spot of the foul to the new line of scrimmage,
// then fades it out.
type PenaltyPath struct {
	From, To     Point
	Yards        int
	Label        string
	Tone         Tone
	GrowFraction float64
}

func (p PenaltyPath) Kind() PathKind { return KindPenalty }

func (p PenaltyPath) growth(t float64) float64 {
	if p.GrowFraction <= 0 {
		return 1
	}
	return clamp(t/p.GrowFraction, 0, 1)
}

func (p PenaltyPath) At(t float64) Frame {
	t = clamp(t, 0, 1)
	opacity := 1.0
	if p.GrowFraction < 1 && t > p.GrowFraction {
		opacity = 1 - (t-p.GrowFraction)/(1-p.GrowFraction)
	}
	return Frame{
		Point:   lerpPoint(p.From, p.To, p.growth(t)),
		Opacity: clamp(opacity, 0, 1),
		Label:   p.Label,
	}
}

// ArrowHead returns the three vertices of the arrow tip at progress t.
func (p PenaltyPath) ArrowHead(t float64) [3]Point {
	tip := p.At(t).Point
	dx, dy := p.To.X-p.From.X, p.To.Y-p.From.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return [3]Point{tip, tip, tip}
	}
	ux, uy := dx/length, dy/length
	const size = 14.0
	base := Point{X: tip.X - ux*size, Y: tip.Y - uy*size}
	return [3]Point{
		tip,
		{X: base.X - uy*size/2, Y: base.Y + ux*size/2},
		{X: base.X + uy*size/2, Y: base.Y - ux*size/2},
	}
}

type tumblePath struct {
	from, to Point
	height   float64
	bounces  float64
}

func (p tumblePath) Kind() PathKind { return KindTumble }

func (p tumblePath) At(t float64) Frame {
	t = clamp(t, 0, 1)
	base := lerpPoint(p.from, p.to, t)
	lift := math.Abs(math.Sin(t*math.Pi*p.bounces)) * p.height * (1 - t)
	return Frame{Point: Point{X: base.X, Y: base.Y - lift}, Rotation: 720 * t, Opacity: 1}
}

func yardageLabel(yards int) string {
	if yards > 0 {
		return fmt.Sprintf("+%d YDS", yards)
	}
	return fmt.Sprintf("%d YDS", yards)
}

package field

import "math"

const (
	defaultPassPeak    = 60.0
	defaultKickPeak    = 140.0
	defaultKickTurns   = 2.0
	defaultTumbleLift  = 24.0
	defaultTumbleHops  = 3.0
	penaltyGrowPortion = 0.6
)

// Rush is a straight line between two yard lines along the middle of the field.
func (g Geometry) Rush(fromYard, toYard float64) Path {
	y := g.MidY()
	return linePath{from: g.YardToPoint(fromYard, y), to: g.YardToPoint(toYard, y)}
}

// Pass is a quadratic arc; peak <= 0 uses the default height.
func (g Geometry) Pass(fromYard, toYard, peak float64) Path {
	if peak <= 0 {
		peak = defaultPassPeak
	}
	y := g.MidY()
	return newQuadArc(KindPass, g.YardToPoint(fromYard, y), g.YardToPoint(toYard, y), peak, 0)
}

// Kick is a high arc with the ball tumbling end over end, used for punts and kickoffs.
func (g Geometry) Kick(fromYard, toYard float64) Path {
	y := g.MidY()
	return newQuadArc(KindKick, g.YardToPoint(fromYard, y), g.YardToPoint(toYard, y), defaultKickPeak, defaultKickTurns)
}

// FieldGoal arcs from the kick spot toward the uprights at the targeted end. A good kick ends
// on the anchor between the uprights; a miss ends outside them on the side given by wideRight.
func (g Geometry) FieldGoal(fromYard float64, towardRight, good, wideRight bool) GoalPostPath {
	y := g.MidY()
	from := g.YardToPoint(fromYard, y)
	anchor := g.Posts.Left
	if towardRight {
		anchor = g.Posts.Right
	}
	to := anchor
	label := "GOOD"
	if !good {
		label = "NO GOOD"
		offset := g.Posts.HalfWidth * 2.5
		if !wideRight {
			offset = -offset
		}
		to = Point{X: anchor.X + offset, Y: anchor.Y}
	}
	rise := math.Max(from.Y-to.Y, 0) + defaultKickPeak/2
	return GoalPostPath{
		from:  from,
		c1:    Point{X: lerp(from.X, to.X, 0.25), Y: from.Y - rise},
		c2:    Point{X: lerp(from.X, to.X, 0.75), Y: to.Y - rise*0.6},
		to:    to,
		Good:  good,
		Label: label,
	}
}

// Penalty marks yardage walked off between two yard lines. loss reports whether the
// offense was penalized, which signs the label negative and colors the marker red.
func (g Geometry) Penalty(fromYard, toYard float64, yards int, loss bool) PenaltyPath {
	y := g.MidY()
	tone := ToneNeutral
	signed := yards
	if loss {
		tone = ToneLoss
		if signed > 0 {
			signed = -signed
		}
	} else if signed < 0 {
		signed = -signed
	}
	return PenaltyPath{
		From:         g.YardToPoint(fromYard, y),
		To:           g.YardToPoint(toYard, y),
		Yards:        signed,
		Label:        yardageLabel(signed),
		Tone:         tone,
		GrowFraction: penaltyGrowPortion,
	}
}

// Tumble is a bouncing loose-ball path for fumbles.
func (g Geometry) Tumble(fromYard, toYard float64) Path {
	y := g.MidY()
	return tumblePath{
		from:    g.YardToPoint(fromYard, y),
		to:      g.YardToPoint(toYard, y),
		height:  defaultTumbleLift,
		bounces: defaultTumbleHops,
	}
}

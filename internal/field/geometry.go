package field

import (
	"errors"
	"math"
)

// Point is a position in field units; y grows downward toward the near edge.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coords is a yard line's x position on the far and near edges.
type Coords struct {
	TopX    float64 `json:"topX"`
	BottomX float64 `json:"bottomX"`
}

// GoalPosts anchors the two sets of uprights. Left sits behind yard 0, Right behind yard 100.
type GoalPosts struct {
	Left  Point
	Right Point
	// HalfWidth is the distance from the anchor to either upright.
	HalfWidth float64
}

// Geometry describes the trapezoid. TopLeft/TopRight are the goal line x positions on the
// far edge, BottomLeft/BottomRight on the near edge.
type Geometry struct {
	Width       float64
	TopY        float64
	BottomY     float64
	TopLeft     float64
	TopRight    float64
	BottomLeft  float64
	BottomRight float64
	Posts       GoalPosts
}

var ErrInvalidGeometry = errors.New("field: goal lines must be ordered and edges must have height")

// DefaultGeometry returns a field symmetric about Width/2.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:       1000,
		TopY:        0,
		BottomY:     400,
		TopLeft:     200,
		TopRight:    800,
		BottomLeft:  50,
		BottomRight: 950,
		Posts: GoalPosts{
			Left:      Point{X: 140, Y: 40},
			Right:     Point{X: 860, Y: 40},
			HalfWidth: 18,
		},
	}
}

// Validate checks that the mapping is strictly increasing in yard on both edges.
func (g Geometry) Validate() error {
	if g.TopRight <= g.TopLeft || g.BottomRight <= g.BottomLeft || g.BottomY <= g.TopY {
		return ErrInvalidGeometry
	}
	return nil
}

// MidY is the vertical line ball paths travel along by default.
func (g Geometry) MidY() float64 {
	return (g.TopY + g.BottomY) / 2
}

// ClampYard limits a yard value to [0,100]. NaN clamps to 0.
func ClampYard(yard float64) float64 {
	switch {
	case math.IsNaN(yard), yard < 0:
		return 0
	case yard > 100:
		return 100
	default:
		return yard
	}
}

// YardToCoords returns the x position of a yard line on both edges.
func (g Geometry) YardToCoords(yard float64) Coords {
	t := ClampYard(yard) / 100
	return Coords{
		TopX:    lerp(g.TopLeft, g.TopRight, t),
		BottomX: lerp(g.BottomLeft, g.BottomRight, t),
	}
}

// YardToX returns the x position of a yard line at vertical position y.
func (g Geometry) YardToX(yard, y float64) float64 {
	c := g.YardToCoords(yard)
	return lerp(c.TopX, c.BottomX, g.depth(y))
}

// YardToPoint places a yard line at vertical position y.
func (g Geometry) YardToPoint(yard, y float64) Point {
	return Point{X: g.YardToX(yard, y), Y: clamp(y, g.TopY, g.BottomY)}
}

// XToYard is the inverse of YardToX for a point inside the trapezoid.
func (g Geometry) XToYard(x, y float64) float64 {
	f := g.depth(y)
	left := lerp(g.TopLeft, g.BottomLeft, f)
	right := lerp(g.TopRight, g.BottomRight, f)
	if right == left {
		return 0
	}
	return ClampYard((x - left) / (right - left) * 100)
}

func (g Geometry) depth(y float64) float64 {
	if g.BottomY == g.TopY {
		return 0
	}
	return (clamp(y, g.TopY, g.BottomY) - g.TopY) / (g.BottomY - g.TopY)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpPoint(a, b Point, t float64) Point {
	return Point{X: lerp(a.X, b.X, t), Y: lerp(a.Y, b.Y, t)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

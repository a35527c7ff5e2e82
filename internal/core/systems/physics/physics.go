package physics

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the zero vector.
var Zero = Vec2{}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector in the direction of v.
// A zero-length (or non-finite) vector normalizes to Zero instead of NaN.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Angle returns the direction of v in radians.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// FromAngle returns the unit vector pointing at angle radians.
func FromAngle(angle float64) Vec2 { return Vec2{X: math.Cos(angle), Y: math.Sin(angle)} }

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }

// Distance computes distance between two points.
func Distance(a, b Vec2) float64 { return Distance2(a.X, a.Y, b.X, b.Y) }

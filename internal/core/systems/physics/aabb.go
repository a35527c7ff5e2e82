package physics

import "math"

// Overlaps reports whether two axis-aligned boxes intersect. Boxes are given by
// their centers and half-extents. Touching edges do not count as overlap.
func Overlaps(aCenter, aHalf, bCenter, bHalf Vec2) bool {
	return math.Abs(aCenter.X-bCenter.X) < aHalf.X+bHalf.X &&
		math.Abs(aCenter.Y-bCenter.Y) < aHalf.Y+bHalf.Y
}

package common

import "math"

// Vec2 is a point or direction on the ground plane, in world units.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns the unit vector, or the zero vector for near-zero input.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

func (v Vec2) DistTo(o Vec2) float64 {
	return v.Sub(o).Len()
}

// Angle returns the heading of v in radians, 0 = +X.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle returns the unit vector pointing along heading a.
func FromAngle(a float64) Vec2 {
	return Vec2{X: math.Cos(a), Y: math.Sin(a)}
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// NormalizeAngle wraps an angle to [-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// MoveAngleToward rotates current toward target by at most maxDelta radians,
// taking the short way around.
func MoveAngleToward(current, target, maxDelta float64) float64 {
	diff := NormalizeAngle(target - current)
	if math.Abs(diff) <= maxDelta {
		return NormalizeAngle(target)
	}
	if diff > 0 {
		return NormalizeAngle(current + maxDelta)
	}
	return NormalizeAngle(current - maxDelta)
}

// AngleBetween returns the unsigned angle between two directions.
func AngleBetween(a, b Vec2) float64 {
	an := a.Normalized()
	bn := b.Normalized()
	d := an.Dot(bn)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

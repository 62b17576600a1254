package swarm

import "math"

// Vec2 is a 2D vector in display pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromAngle returns the unit vector at theta radians.
func FromAngle(theta float64) Vec2 {
	return Vec2{math.Cos(theta), math.Sin(theta)}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Mag() float64 {
	return math.Sqrt(v.MagSq())
}

func (v Vec2) Dist(o Vec2) float64 {
	return v.Sub(o).Mag()
}

// Perp rotates v by 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Normalize returns the unit vector, or zero for the zero vector.
func (v Vec2) Normalize() Vec2 {
	m := v.Mag()
	if m == 0 {
		return Vec2{}
	}
	return Vec2{v.X / m, v.Y / m}
}

// Limit caps the magnitude at limit.
func (v Vec2) Limit(limit float64) Vec2 {
	if m := v.MagSq(); m > limit*limit {
		return v.Scale(limit / math.Sqrt(m))
	}
	return v
}

// SetMag rescales v to magnitude m. The zero vector stays zero.
func (v Vec2) SetMag(m float64) Vec2 {
	return v.Normalize().Scale(m)
}

package world

import (
	"errors"
	"math"
)

// ErrInvalidHeading is returned when a proposed heading has no direction.
var ErrInvalidHeading = errors.New("world: heading must be finite and non-zero")

// Vec2 is a point or direction in world space.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Len reports the euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func distSq(a, b Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// within reports whether a and b are strictly closer than radius.
func within(a, b Vec2, radius float64) bool {
	return distSq(a, b) < radius*radius
}

// NewHeading normalises (dx, dy) to unit length.
func NewHeading(dx, dy float64) (Vec2, error) {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return Vec2{}, ErrInvalidHeading
	}
	length := math.Hypot(dx, dy)
	if length == 0 || math.IsInf(length, 0) {
		return Vec2{}, ErrInvalidHeading
	}
	return Vec2{X: dx / length, Y: dy / length}, nil
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Package vecmath holds the small 2-D vector helpers shared by the field,
// body and tracer packages. All quantities are in meters (SI).
package vecmath

import "math"

type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) LenSq() float64       { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) Neg() Vec2            { return Vec2{-v.X, -v.Y} }

// Perp returns v rotated 90° counter-clockwise (the left-hand perpendicular).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Unit returns v normalized and false when |v| is below eps, in which case
// the direction is undefined and the zero vector is returned.
func (v Vec2) Unit(eps float64) (Vec2, bool) {
	l := v.Len()
	if l < eps || l == 0 {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// FromAngle is the unit vector at angle theta (radians) from +X.
func FromAngle(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{c, s}
}

// Rotate returns v rotated by theta radians counter-clockwise.
func (v Vec2) Rotate(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Segment is a straight line piece, used for polyline edges and mark arms.
type Segment struct {
	A, B Vec2
}

// Rect is an axis-aligned box in world coordinates.
type Rect struct {
	Min, Max Vec2
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Centered returns a w×h box centered on the origin.
func Centered(w, h float64) Rect {
	return Rect{Min: Vec2{-w / 2, -h / 2}, Max: Vec2{w / 2, h / 2}}
}

// Package math provides the small vector types shared by the level parser and the map renderer.
package math

import "math"

// Vec3 is a 3D point in level space.
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// HasNaN reports whether any component is not a number.
func (v Vec3) HasNaN() bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}

// XY returns the XY components as Vec2.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

// XZ returns the XZ components as Vec2.
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

// YZ returns the YZ components as Vec2.
func (v Vec3) YZ() Vec2 {
	return Vec2{v.Y, v.Z}
}

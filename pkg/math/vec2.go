package math

// Vec2 is a 2D point on the projection plane.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Bounds2 is an axis-aligned rectangle accumulated from points.
// The zero value is empty.
type Bounds2 struct {
	Min, Max Vec2
	valid    bool
}

// Extend grows the bounds to include p.
func (b *Bounds2) Extend(p Vec2) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
}

// Empty reports whether no point has been added.
func (b Bounds2) Empty() bool {
	return !b.valid
}

// Size returns the width and height of the bounds.
func (b Bounds2) Size() Vec2 {
	return b.Max.Sub(b.Min)
}

// BoundsOf returns the bounds of all points.
func BoundsOf(points []Vec2) Bounds2 {
	var b Bounds2
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

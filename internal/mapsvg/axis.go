package mapsvg

import (
	"fmt"
	"strings"

	"github.com/Faultbox/bsp2svg/pkg/math"
)

// Axis is the projection axis; it is dropped from each vertex and becomes depth.
type Axis int

// Projection axes.
const (
	AxisX Axis = iota // side view
	AxisY             // front view
	AxisZ             // top-down view
)

// String returns the lowercase axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// ParseAxis parses "x", "y" or "z" (any case).
func ParseAxis(name string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, name)
	}
}

// ProjectPoint maps one vertex onto the plane perpendicular to axis.
// For Z the y component is negated so north points up in the output.
func (a Axis) ProjectPoint(v math.Vec3) math.Vec2 {
	switch a {
	case AxisX:
		return v.YZ()
	case AxisY:
		return v.XZ()
	default:
		return math.Vec2{X: v.X, Y: -v.Y}
	}
}

// Depth returns the coordinate of v along the axis.
func (a Axis) Depth(v math.Vec3) float32 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// Project maps every vertex to 2D. The result is index-aligned with vertices.
func Project(vertices []math.Vec3, axis Axis) []math.Vec2 {
	points := make([]math.Vec2, len(vertices))
	for i, v := range vertices {
		points[i] = axis.ProjectPoint(v)
	}
	return points
}

package mapsvg

import (
	"fmt"

	"github.com/Faultbox/bsp2svg/pkg/math"
)

// DrawableFace is one projected polygon ready for composition.
type DrawableFace struct {
	Points   []math.Vec2
	Texture  string
	MinDepth float32 // along the projection axis, from 3D coordinates
	MaxDepth float32
}

// BuildDrawables projects each face through points, which must be the
// output of Project for the level's vertices. Faces without points are dropped.
func BuildDrawables(level *Level, faces []Face, points []math.Vec2, axis Axis) ([]DrawableFace, error) {
	if len(points) != len(level.Vertices) {
		return nil, fmt.Errorf("projected %d points for %d vertices", len(points), len(level.Vertices))
	}

	drawables := make([]DrawableFace, 0, len(faces))
	for _, f := range faces {
		if len(f.Vertices) == 0 {
			continue
		}

		lo, hi, err := depthRange(level, f, axis)
		if err != nil {
			return nil, err
		}

		pts := make([]math.Vec2, len(f.Vertices))
		for i, idx := range f.Vertices {
			pts[i] = points[idx]
		}

		drawables = append(drawables, DrawableFace{
			Points:   pts,
			Texture:  level.FaceTexture(f).Name,
			MinDepth: lo,
			MaxDepth: hi,
		})
	}
	return drawables, nil
}

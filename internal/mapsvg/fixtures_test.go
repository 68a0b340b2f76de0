package mapsvg

import (
	"errors"

	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/math"
)

// fakeRasters serves uniform rasters per texture index.
type fakeRasters struct {
	colors map[int]RGB
	fail   map[int]bool
	texels int
}

var errUnreadable = errors.New("unreadable texture")

func (f fakeRasters) Raster(texture int, scale formats.TextureScale) (*formats.Raster, error) {
	if f.fail[texture] {
		return nil, errUnreadable
	}
	c, ok := f.colors[texture]
	if !ok {
		return &formats.Raster{}, nil
	}
	n := f.texels
	if n == 0 {
		n = 4
	}
	data := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		data = append(data, c.R, c.G, c.B)
	}
	return &formats.Raster{Width: n, Height: 1, Data: data}, nil
}

// stackedLevel has three quads at different heights plus one ignored face.
//
//	face key 10: z in [5, 5]     texture "floor"
//	face key 20: z in [-3, 2]    texture "ramp"
//	face key 30: z in [0, 0]     texture "sky1" (ignored)
//	face key 40: z in [1, 9]     texture "wall"
func stackedLevel() *Level {
	return &Level{
		Vertices: []math.Vec3{
			{0, 0, 5}, {4, 0, 5}, {4, 4, 5}, {0, 4, 5},
			{0, 0, -3}, {4, 0, -3}, {4, 4, 2}, {0, 4, 2},
			{0, 0, 0}, {8, 0, 0}, {8, 8, 0}, {0, 8, 0},
			{0, 0, 1}, {0, 4, 1}, {0, 4, 9}, {0, 0, 9},
		},
		Faces: []Face{
			{Key: 10, Vertices: []int{0, 1, 2, 3}, Texture: 0},
			{Key: 20, Vertices: []int{4, 5, 6, 7}, Texture: 1},
			{Key: 30, Vertices: []int{8, 9, 10, 11}, Texture: 2},
			{Key: 40, Vertices: []int{12, 13, 14, 15}, Texture: 3},
		},
		Textures: []Texture{{"floor"}, {"ramp"}, {"sky1"}, {"wall"}},
	}
}

func faceKeys(faces []Face) []int32 {
	keys := make([]int32, len(faces))
	for i, f := range faces {
		keys[i] = f.Key
	}
	return keys
}

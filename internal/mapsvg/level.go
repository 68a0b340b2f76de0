package mapsvg

import (
	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/math"
)

// Face is a planar polygon of the level.
type Face struct {
	Key      int32 // source edge-list index; informational, not assumed unique
	Vertices []int // indices into Level.Vertices, in winding order
	Texture  int   // index into Level.Textures
}

// Texture is a named surface; its pixels are fetched through a RasterSource.
type Texture struct {
	Name string
}

// Level is the read-only input of a conversion.
type Level struct {
	Vertices []math.Vec3
	Faces    []Face
	Textures []Texture
}

// FaceTexture returns the face's texture, or an unnamed texture if the index is out of range.
func (l *Level) FaceTexture(f Face) Texture {
	if f.Texture < 0 || f.Texture >= len(l.Textures) {
		return Texture{}
	}
	return l.Textures[f.Texture]
}

// FaceVertices returns the face's vertices in winding order.
// ok is false if an index is outside the vertex list.
func (l *Level) FaceVertices(f Face) (vertices []math.Vec3, ok bool) {
	vertices = make([]math.Vec3, len(f.Vertices))
	for i, idx := range f.Vertices {
		if idx < 0 || idx >= len(l.Vertices) {
			return nil, false
		}
		vertices[i] = l.Vertices[idx]
	}
	return vertices, true
}

// FromBSP builds a Level from a parsed BSP file.
func FromBSP(bsp *formats.BSP) *Level {
	level := &Level{
		Vertices: bsp.Vertices,
		Faces:    make([]Face, len(bsp.Faces)),
		Textures: make([]Texture, len(bsp.Textures)),
	}

	for i := range bsp.Textures {
		level.Textures[i] = Texture{Name: bsp.Textures[i].Name}
	}

	for i := range bsp.Faces {
		f := &bsp.Faces[i]
		level.Faces[i] = Face{
			Key:      f.FirstEdge,
			Vertices: bsp.FaceVertexIndexes(f),
			Texture:  bsp.FaceTextureIndex(f),
		}
	}

	return level
}

// RasterSource fetches downsampled texture pixels. Implementations must be
// safe for concurrent use when sampling with more than one worker.
type RasterSource interface {
	Raster(texture int, scale formats.TextureScale) (*formats.Raster, error)
}

// BSPRasters reads embedded miptex data from a parsed BSP.
type BSPRasters struct {
	BSP     *formats.BSP
	Palette *formats.Palette // nil = grayscale unless the texture embeds one
}

// Raster implements RasterSource.
func (s BSPRasters) Raster(texture int, scale formats.TextureScale) (*formats.Raster, error) {
	return s.BSP.ReadTexture(texture, scale, s.Palette)
}

// Package formatstest builds synthetic level files for tests.
package formatstest

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/bsp2svg/pkg/encoding"
	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/math"
)

// Texture describes one miptex entry.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels holds full-resolution palette indices. When nil every texel is Fill.
	Pixels []byte
	Fill   uint8
	// Palette is appended after the mip levels for version 30 files.
	Palette *formats.Palette
	// PaletteEntries limits how many palette entries are written. 0 means 256.
	PaletteEntries int
	// Missing writes a -1 directory entry instead of the texture.
	Missing bool
	// External writes only the header, as GoldSrc does for WAD textures.
	External bool
}

// Face is a polygon over vertex indices.
type Face struct {
	Vertices []int
	Texture  int
}

// Level is the input to BuildBSP.
type Level struct {
	Version  int32 // 0 means 29
	Entities string
	Vertices []math.Vec3
	Faces    []Face
	Textures []Texture
}

// BuildBSP encodes l as a BSP file. Each face gets its own closed run of edges
// and each texture one texinfo, so face i uses texinfo Faces[i].Texture.
func BuildBSP(l Level) []byte {
	version := l.Version
	if version == 0 {
		version = formats.BSPVersionQuake
	}

	edges := []formats.BSPEdge{{}}
	var surfEdges []int32
	faces := make([]formats.BSPFace, len(l.Faces))

	for i, f := range l.Faces {
		faces[i] = formats.BSPFace{
			FirstEdge:      int32(len(surfEdges)),
			NumEdges:       uint16(len(f.Vertices)),
			TexInfoID:      uint16(f.Texture),
			LightmapOffset: -1,
		}
		for j, v := range f.Vertices {
			next := f.Vertices[(j+1)%len(f.Vertices)]
			// Alternate edge direction so both surfedge signs are exercised.
			if j%2 == 0 {
				surfEdges = append(surfEdges, int32(len(edges)))
				edges = append(edges, formats.BSPEdge{V0: uint16(v), V1: uint16(next)})
			} else {
				surfEdges = append(surfEdges, -int32(len(edges)))
				edges = append(edges, formats.BSPEdge{V0: uint16(next), V1: uint16(v)})
			}
		}
	}

	texInfos := make([]formats.BSPTexInfo, len(l.Textures))
	for i := range l.Textures {
		texInfos[i] = formats.BSPTexInfo{
			S:      [4]float32{1, 0, 0, 0},
			T:      [4]float32{0, 1, 0, 0},
			MipTex: uint32(i),
		}
	}

	lumps := make([][]byte, 15)
	lumps[formats.LumpEntities] = append([]byte(l.Entities), 0)
	lumps[formats.LumpTextures] = buildMipTexLump(l.Textures, version)
	lumps[formats.LumpVertices] = encode(l.Vertices)
	lumps[formats.LumpTexInfo] = encode(texInfos)
	lumps[formats.LumpFaces] = encode(faces)
	lumps[formats.LumpEdges] = encode(edges)
	lumps[formats.LumpSurfEdges] = encode(surfEdges)

	return assemble(version, lumps)
}

// assemble writes the header followed by the lumps in index order.
func assemble(version int32, lumps [][]byte) []byte {
	header := formats.BSPHeader{Version: version}
	offset := int32(binary.Size(header))
	for i, lump := range lumps {
		header.Lumps[i] = formats.BSPLump{Offset: offset, Size: int32(len(lump))}
		offset += int32(len(lump))
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, header)
	for _, lump := range lumps {
		buf.Write(lump)
	}
	return buf.Bytes()
}

func encode(v any) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func buildMipTexLump(textures []Texture, version int32) []byte {
	if len(textures) == 0 {
		return nil
	}

	var body bytes.Buffer
	offsets := make([]int32, len(textures))
	dirSize := 4 + 4*len(textures)

	for i, tex := range textures {
		if tex.Missing {
			offsets[i] = -1
			continue
		}
		offsets[i] = int32(dirSize + body.Len())
		body.Write(buildMipTex(tex, version))
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(len(textures)))
	binary.Write(buf, binary.LittleEndian, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func buildMipTex(tex Texture, version int32) []byte {
	var levels [4][]byte
	var offsets [4]uint32
	next := uint32(40)

	if !tex.External {
		for level := 0; level < 4; level++ {
			w, h := tex.Width>>level, tex.Height>>level
			pixels := make([]byte, w*h)
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if tex.Pixels != nil {
						pixels[y*w+x] = tex.Pixels[(y<<level)*tex.Width+(x<<level)]
					} else {
						pixels[y*w+x] = tex.Fill
					}
				}
			}
			levels[level] = pixels
			offsets[level] = next
			next += uint32(len(pixels))
		}
	}

	buf := new(bytes.Buffer)
	buf.Write(encoding.ToFixedString(tex.Name, 16))
	binary.Write(buf, binary.LittleEndian, uint32(tex.Width))
	binary.Write(buf, binary.LittleEndian, uint32(tex.Height))
	binary.Write(buf, binary.LittleEndian, offsets)
	for _, pixels := range levels {
		buf.Write(pixels)
	}

	if version == formats.BSPVersionHalfLife && tex.Palette != nil && !tex.External {
		count := tex.PaletteEntries
		if count <= 0 || count > len(tex.Palette) {
			count = len(tex.Palette)
		}
		binary.Write(buf, binary.LittleEndian, uint16(count))
		for _, c := range tex.Palette[:count] {
			buf.Write(c[:])
		}
	}

	return buf.Bytes()
}

// UniformPalette returns a palette where every index maps to c.
func UniformPalette(c [3]uint8) *formats.Palette {
	var pal formats.Palette
	for i := range pal {
		pal[i] = c
	}
	return &pal
}

// PaletteBytes encodes pal in palette.lmp layout.
func PaletteBytes(pal *formats.Palette) []byte {
	out := make([]byte, 0, formats.PaletteSize)
	for _, c := range pal {
		out = append(out, c[:]...)
	}
	return out
}

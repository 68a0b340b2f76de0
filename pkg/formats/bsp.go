package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	qmath "github.com/Faultbox/bsp2svg/pkg/math"
)

// BSP format errors.
var (
	ErrUnsupportedBSPVersion = errors.New("unsupported BSP version")
	ErrTruncatedBSPData      = errors.New("truncated BSP data")
	ErrInvalidBSPLump        = errors.New("invalid BSP lump")
	ErrInvalidBSPReference   = errors.New("invalid BSP reference")
)

// Supported BSP versions.
const (
	BSPVersionQuake    int32 = 29 // Quake
	BSPVersionHalfLife int32 = 30 // GoldSrc, textures carry their own palette
)

// Lump indices, identical for version 29 and 30.
const (
	LumpEntities = iota
	LumpPlanes
	LumpTextures
	LumpVertices
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpClipNodes
	LumpLeaves
	LumpMarkSurfaces
	LumpEdges
	LumpSurfEdges
	LumpModels

	lumpCount
)

const bspHeaderSize = 4 + lumpCount*8

// Record sizes on disk.
const (
	vertexSize  = 12
	edgeSize    = 4
	surfEdgeLen = 4
	faceSize    = 20
	texInfoSize = 40
)

// BSPLump locates one lump inside the file.
type BSPLump struct {
	Offset int32
	Size   int32
}

// BSPHeader is the fixed-size file header.
type BSPHeader struct {
	Version int32
	Lumps   [lumpCount]BSPLump
}

// BSPEdge joins two vertices. Edge 0 is never referenced.
type BSPEdge struct {
	V0 uint16
	V1 uint16
}

// BSPFace is a planar polygon described by a run of surfedges.
type BSPFace struct {
	PlaneID        uint16
	Side           uint16
	FirstEdge      int32 // index of the first surfedge, also used as the face's ordering key
	NumEdges       uint16
	TexInfoID      uint16
	LightStyles    [4]uint8
	LightmapOffset int32 // -1 = no lightmap
}

// BSPTexInfo maps a face to texture space and a miptex entry.
type BSPTexInfo struct {
	S      [4]float32
	T      [4]float32
	MipTex uint32
	Flags  uint32 // 1 = animated/special (water, sky)
}

// BSP represents a parsed level file.
type BSP struct {
	Version   int32
	Entities  string
	Vertices  []qmath.Vec3
	Edges     []BSPEdge
	SurfEdges []int32
	Faces     []BSPFace
	TexInfos  []BSPTexInfo
	Textures  []BSPTexture
}

// ParseBSP parses a BSP file from raw bytes.
func ParseBSP(data []byte) (*BSP, error) {
	if len(data) < bspHeaderSize {
		return nil, fmt.Errorf("%w: header", ErrTruncatedBSPData)
	}

	var header BSPHeader
	if err := binary.Read(bytes.NewReader(data[:bspHeaderSize]), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedBSPData)
	}

	if header.Version != BSPVersionQuake && header.Version != BSPVersionHalfLife {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBSPVersion, header.Version)
	}

	bsp := &BSP{Version: header.Version}

	entities, err := lumpData(data, header, LumpEntities, 1)
	if err != nil {
		return nil, err
	}
	bsp.Entities = string(bytes.TrimRight(entities, "\x00"))

	if err := readLump(data, header, LumpVertices, vertexSize, &bsp.Vertices); err != nil {
		return nil, err
	}
	if err := readLump(data, header, LumpEdges, edgeSize, &bsp.Edges); err != nil {
		return nil, err
	}
	if err := readLump(data, header, LumpSurfEdges, surfEdgeLen, &bsp.SurfEdges); err != nil {
		return nil, err
	}
	if err := readLump(data, header, LumpFaces, faceSize, &bsp.Faces); err != nil {
		return nil, err
	}
	if err := readLump(data, header, LumpTexInfo, texInfoSize, &bsp.TexInfos); err != nil {
		return nil, err
	}

	textures, err := lumpData(data, header, LumpTextures, 1)
	if err != nil {
		return nil, err
	}
	if len(textures) > 0 {
		bsp.Textures, err = parseMipTexLump(textures, header.Version)
		if err != nil {
			return nil, fmt.Errorf("parsing textures: %w", err)
		}
	}

	if err := bsp.validate(); err != nil {
		return nil, err
	}

	return bsp, nil
}

// ParseBSPFile parses a BSP file from disk.
func ParseBSPFile(path string) (*BSP, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading BSP file: %w", err)
	}
	return ParseBSP(data)
}

// lumpData returns the bytes of one lump, checking bounds and record alignment.
func lumpData(data []byte, header BSPHeader, index, recordSize int) ([]byte, error) {
	lump := header.Lumps[index]
	if lump.Offset < 0 || lump.Size < 0 {
		return nil, fmt.Errorf("%w %d: negative offset or size", ErrInvalidBSPLump, index)
	}
	end := int64(lump.Offset) + int64(lump.Size)
	if end > int64(len(data)) {
		return nil, fmt.Errorf("%w: lump %d ends at %d, file is %d bytes", ErrTruncatedBSPData, index, end, len(data))
	}
	if int(lump.Size)%recordSize != 0 {
		return nil, fmt.Errorf("%w %d: size %d is not a multiple of %d", ErrInvalidBSPLump, index, lump.Size, recordSize)
	}
	return data[lump.Offset:end], nil
}

// readLump decodes a lump of fixed-size little-endian records into out.
func readLump[T any](data []byte, header BSPHeader, index, recordSize int, out *[]T) error {
	raw, err := lumpData(data, header, index, recordSize)
	if err != nil {
		return err
	}
	records := make([]T, len(raw)/recordSize)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, records); err != nil {
		return fmt.Errorf("%w: lump %d: %v", ErrTruncatedBSPData, index, err)
	}
	*out = records
	return nil
}

// validate checks every cross-lump reference so the face helpers never go out of range.
// Only edges reached through a surfedge are checked; edge 0 is a placeholder.
func (b *BSP) validate() error {
	for i, se := range b.SurfEdges {
		if se == math.MinInt32 || absInt32(se) >= int32(len(b.Edges)) {
			return fmt.Errorf("%w: surfedge %d references edge %d", ErrInvalidBSPReference, i, se)
		}
		e := b.Edges[absInt32(se)]
		if int(e.V0) >= len(b.Vertices) || int(e.V1) >= len(b.Vertices) {
			return fmt.Errorf("%w: edge %d references vertex outside [0,%d)", ErrInvalidBSPReference, absInt32(se), len(b.Vertices))
		}
	}

	for i, ti := range b.TexInfos {
		if int(ti.MipTex) >= len(b.Textures) {
			return fmt.Errorf("%w: texinfo %d references texture %d of %d", ErrInvalidBSPReference, i, ti.MipTex, len(b.Textures))
		}
	}

	for i, f := range b.Faces {
		if f.FirstEdge < 0 || int64(f.FirstEdge)+int64(f.NumEdges) > int64(len(b.SurfEdges)) {
			return fmt.Errorf("%w: face %d edge run %d+%d exceeds %d surfedges",
				ErrInvalidBSPReference, i, f.FirstEdge, f.NumEdges, len(b.SurfEdges))
		}
		if int(f.TexInfoID) >= len(b.TexInfos) {
			return fmt.Errorf("%w: face %d references texinfo %d of %d", ErrInvalidBSPReference, i, f.TexInfoID, len(b.TexInfos))
		}
	}

	return nil
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// FaceTextureIndex returns the index of the face's texture in Textures.
func (b *BSP) FaceTextureIndex(f *BSPFace) int {
	return int(b.TexInfos[f.TexInfoID].MipTex)
}

// FaceVertexIndexes returns the face's vertex indices in winding order.
// A negative surfedge walks its edge backwards.
func (b *BSP) FaceVertexIndexes(f *BSPFace) []int {
	indexes := make([]int, 0, f.NumEdges)
	for i := int32(0); i < int32(f.NumEdges); i++ {
		se := b.SurfEdges[f.FirstEdge+i]
		if se >= 0 {
			indexes = append(indexes, int(b.Edges[se].V0))
		} else {
			indexes = append(indexes, int(b.Edges[-se].V1))
		}
	}
	return indexes
}

// FaceVertices returns the face's vertices in winding order.
func (b *BSP) FaceVertices(f *BSPFace) []qmath.Vec3 {
	indexes := b.FaceVertexIndexes(f)
	vertices := make([]qmath.Vec3, len(indexes))
	for i, idx := range indexes {
		vertices[i] = b.Vertices[idx]
	}
	return vertices
}

// TextureByName returns the first texture with the given name, or nil.
func (b *BSP) TextureByName(name string) *BSPTexture {
	for i := range b.Textures {
		if b.Textures[i].Name == name {
			return &b.Textures[i]
		}
	}
	return nil
}

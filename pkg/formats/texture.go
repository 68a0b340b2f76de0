package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/bsp2svg/pkg/encoding"
)

// Texture errors.
var (
	ErrTruncatedMipTex   = errors.New("truncated miptex data")
	ErrTextureIndex      = errors.New("texture index out of range")
	ErrInvalidScale      = errors.New("invalid texture scale")
	ErrInvalidTextureDim = errors.New("invalid texture dimensions")
)

const (
	mipTexHeaderSize = 40
	mipLevels        = 4
	maxTextureDim    = 4096
)

// TextureScale selects one of the four mip levels stored with each texture.
type TextureScale int

// Scale constants, in mip level order.
const (
	ScaleFull    TextureScale = iota // 1:1
	ScaleHalf                        // 1:2
	ScaleQuarter                     // 1:4
	ScaleEighth                      // 1:8
)

// String returns the scale name.
func (s TextureScale) String() string {
	switch s {
	case ScaleFull:
		return "full"
	case ScaleHalf:
		return "half"
	case ScaleQuarter:
		return "quarter"
	case ScaleEighth:
		return "eighth"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Valid reports whether s names a stored mip level.
func (s TextureScale) Valid() bool {
	return s >= ScaleFull && s <= ScaleEighth
}

// ParseTextureScale parses a scale name as produced by String.
func ParseTextureScale(name string) (TextureScale, error) {
	for s := ScaleFull; s <= ScaleEighth; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidScale, name)
}

// BSPTexture is one miptex entry of the texture lump.
type BSPTexture struct {
	Name    string
	Width   uint32
	Height  uint32
	Offsets [mipLevels]uint32 // relative to the start of the miptex header, 0 = stored externally
	Palette *Palette          // embedded palette (version 30 only)

	data []byte // miptex header and everything after it
}

// Embedded reports whether the pixel data is stored inside the BSP.
// Missing entries and GoldSrc textures that live in a WAD are not.
func (t *BSPTexture) Embedded() bool {
	return t.data != nil && t.Offsets[0] != 0
}

// parseMipTexLump decodes the texture directory and every miptex header.
func parseMipTexLump(lump []byte, version int32) ([]BSPTexture, error) {
	r := bytes.NewReader(lump)

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading texture count", ErrTruncatedMipTex)
	}
	if count < 0 || int64(count)*4 > int64(len(lump)-4) {
		return nil, fmt.Errorf("%w: texture count %d", ErrTruncatedMipTex, count)
	}

	offsets := make([]int32, count)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return nil, fmt.Errorf("%w: reading texture offsets", ErrTruncatedMipTex)
	}

	textures := make([]BSPTexture, count)
	for i, off := range offsets {
		if off < 0 {
			// Entry stripped by the compiler; faces may still point at it.
			continue
		}
		tex, err := parseMipTex(lump, int(off), version)
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		textures[i] = tex
	}

	return textures, nil
}

// parseMipTex decodes the miptex at off and checks that every stored level fits.
func parseMipTex(lump []byte, off int, version int32) (BSPTexture, error) {
	if off+mipTexHeaderSize > len(lump) {
		return BSPTexture{}, fmt.Errorf("%w: header at %d", ErrTruncatedMipTex, off)
	}
	data := lump[off:]
	header := data[:mipTexHeaderSize]

	tex := BSPTexture{
		Name:   encoding.FixedString(header[0:16]),
		Width:  binary.LittleEndian.Uint32(header[16:]),
		Height: binary.LittleEndian.Uint32(header[20:]),
		data:   data,
	}
	for level := 0; level < mipLevels; level++ {
		tex.Offsets[level] = binary.LittleEndian.Uint32(header[24+level*4:])
	}

	if tex.Width > maxTextureDim || tex.Height > maxTextureDim {
		return BSPTexture{}, fmt.Errorf("%w: %s is %dx%d", ErrInvalidTextureDim, tex.Name, tex.Width, tex.Height)
	}

	if !tex.Embedded() {
		return tex, nil
	}

	for level := 0; level < mipLevels; level++ {
		end := uint64(tex.Offsets[level]) + uint64(tex.levelSize(level))
		if end > uint64(len(data)) {
			return BSPTexture{}, fmt.Errorf("%w: %s level %d", ErrTruncatedMipTex, tex.Name, level)
		}
	}

	if version == BSPVersionHalfLife {
		tex.Palette = tex.embeddedPalette()
	}

	return tex, nil
}

func (t *BSPTexture) levelDims(level int) (int, int) {
	return int(t.Width >> level), int(t.Height >> level)
}

func (t *BSPTexture) levelSize(level int) int {
	w, h := t.levelDims(level)
	return w * h
}

// embeddedPalette reads the uint16 count + RGB triplets stored after the last level.
func (t *BSPTexture) embeddedPalette() *Palette {
	off := int(t.Offsets[mipLevels-1]) + t.levelSize(mipLevels-1)
	if off+2 > len(t.data) {
		return nil
	}
	count := int(binary.LittleEndian.Uint16(t.data[off:]))
	if count == 0 || count > 256 || off+2+count*3 > len(t.data) {
		return nil
	}

	var pal Palette
	for i := 0; i < count; i++ {
		copy(pal[i][:], t.data[off+2+i*3:])
	}
	return &pal
}

// Raster is a row-major buffer of interleaved RGB samples.
type Raster struct {
	Width  int
	Height int
	Data   []byte
}

// Texels returns the number of RGB samples in the raster.
func (r *Raster) Texels() int {
	return len(r.Data) / 3
}

// Image converts the raster to an opaque RGBA image.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i := 0; i < r.Width*r.Height && i*3+2 < len(r.Data); i++ {
		img.Pix[i*4] = r.Data[i*3]
		img.Pix[i*4+1] = r.Data[i*3+1]
		img.Pix[i*4+2] = r.Data[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// ReadTexture expands one mip level of a texture to RGB.
// An embedded palette wins over pal; a nil pal falls back to grayscale.
// Textures without embedded pixels yield an empty raster.
func (b *BSP) ReadTexture(index int, scale TextureScale, pal *Palette) (*Raster, error) {
	if index < 0 || index >= len(b.Textures) {
		return nil, fmt.Errorf("%w: %d of %d", ErrTextureIndex, index, len(b.Textures))
	}
	if !scale.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, int(scale))
	}

	tex := &b.Textures[index]
	if !tex.Embedded() {
		return &Raster{}, nil
	}

	if tex.Palette != nil {
		pal = tex.Palette
	}
	if pal == nil {
		pal = GrayscalePalette()
	}

	level := int(scale)
	w, h := tex.levelDims(level)
	start := int(tex.Offsets[level])
	pixels := tex.data[start : start+w*h]

	raster := &Raster{
		Width:  w,
		Height: h,
		Data:   make([]byte, len(pixels)*3),
	}
	for i, idx := range pixels {
		c := pal[idx]
		raster.Data[i*3] = c[0]
		raster.Data[i*3+1] = c[1]
		raster.Data[i*3+2] = c[2]
	}

	return raster, nil
}

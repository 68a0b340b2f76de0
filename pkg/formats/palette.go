package formats

import (
	"errors"
	"fmt"
	"os"
)

// ErrInvalidPalette is returned for palette files shorter than 768 bytes.
var ErrInvalidPalette = errors.New("invalid palette: expected 256 RGB entries")

// PaletteSize is the size of gfx/palette.lmp.
const PaletteSize = 256 * 3

// Palette maps the 8-bit color indices used by miptex data to RGB.
type Palette [256][3]uint8

// ParsePalette parses a palette.lmp. Trailing bytes are ignored.
func ParsePalette(data []byte) (*Palette, error) {
	if len(data) < PaletteSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPalette, len(data))
	}

	var pal Palette
	for i := range pal {
		pal[i] = [3]uint8{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return &pal, nil
}

// ParsePaletteFile parses a palette.lmp from disk.
func ParsePaletteFile(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading palette file: %w", err)
	}
	return ParsePalette(data)
}

// GrayscalePalette maps every index to the gray level of the same value.
func GrayscalePalette() *Palette {
	var pal Palette
	for i := range pal {
		v := uint8(i)
		pal[i] = [3]uint8{v, v, v}
	}
	return &pal
}

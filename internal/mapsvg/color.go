package mapsvg

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/bsp2svg/pkg/formats"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// White is used for textures missing from the color table.
var White = RGB{255, 255, 255}

// Hex returns the color as lowercase #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ColorTable maps texture names to their mean color.
type ColorTable map[string]RGB

// Lookup returns the color for a texture, or White if none was sampled.
func (t ColorTable) Lookup(name string) RGB {
	if c, ok := t[name]; ok {
		return c
	}
	return White
}

// MeanColor averages each channel of an interleaved RGB buffer, truncating
// the fractional part. ok is false for a buffer without a whole texel.
func MeanColor(data []byte) (c RGB, ok bool) {
	texels := len(data) / 3
	if texels == 0 {
		return RGB{}, false
	}

	var r, g, b uint64
	for i := 0; i < texels; i++ {
		r += uint64(data[i*3])
		g += uint64(data[i*3+1])
		b += uint64(data[i*3+2])
	}
	n := uint64(texels)
	return RGB{uint8(r / n), uint8(g / n), uint8(b / n)}, true
}

type sample struct {
	color RGB
	ok    bool
}

// SampleColors computes the mean color of every texture at the given scale.
// With workers > 1 textures are sampled concurrently; each worker owns one
// slot and the table is filled in texture order afterwards, so a later
// texture with a duplicate name always wins. Textures without pixels get no entry.
func SampleColors(textures []Texture, source RasterSource, scale formats.TextureScale, workers int) (ColorTable, error) {
	samples := make([]sample, len(textures))

	sampleOne := func(i int) error {
		raster, err := source.Raster(i, scale)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrTextureFetch, textures[i].Name, err)
		}
		// A raster with no texels at this scale stays out of the table, so its
		// faces draw white rather than black.
		c, ok := MeanColor(raster.Data)
		samples[i] = sample{color: c, ok: ok}
		return nil
	}

	if workers <= 1 {
		for i := range textures {
			if err := sampleOne(i); err != nil {
				return nil, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range textures {
			g.Go(func() error { return sampleOne(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	table := make(ColorTable, len(textures))
	for i, s := range samples {
		if s.ok {
			table[textures[i].Name] = s.color
		}
	}
	return table, nil
}

package formats_test

import (
	"errors"
	"testing"

	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/formats/formatstest"
	"github.com/Faultbox/bsp2svg/pkg/math"
)

func texturedLevel(version int32, textures ...formatstest.Texture) *formats.BSP {
	level := formatstest.Level{
		Version:  version,
		Vertices: []math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		Textures: textures,
	}
	bsp, err := formats.ParseBSP(formatstest.BuildBSP(level))
	if err != nil {
		panic(err)
	}
	return bsp
}

func TestReadTexture_Scales(t *testing.T) {
	bsp := texturedLevel(0, formatstest.Texture{Name: "brick", Width: 64, Height: 32, Fill: 3})

	tests := []struct {
		scale  formats.TextureScale
		width  int
		height int
	}{
		{formats.ScaleFull, 64, 32},
		{formats.ScaleHalf, 32, 16},
		{formats.ScaleQuarter, 16, 8},
		{formats.ScaleEighth, 8, 4},
	}

	pal := formatstest.UniformPalette([3]uint8{1, 2, 3})
	for _, tt := range tests {
		t.Run(tt.scale.String(), func(t *testing.T) {
			raster, err := bsp.ReadTexture(0, tt.scale, pal)
			if err != nil {
				t.Fatalf("ReadTexture failed: %v", err)
			}
			if raster.Width != tt.width || raster.Height != tt.height {
				t.Errorf("expected %dx%d, got %dx%d", tt.width, tt.height, raster.Width, raster.Height)
			}
			if raster.Texels() != tt.width*tt.height {
				t.Errorf("expected %d texels, got %d", tt.width*tt.height, raster.Texels())
			}
			if raster.Data[0] != 1 || raster.Data[1] != 2 || raster.Data[2] != 3 {
				t.Errorf("expected first texel (1,2,3), got %v", raster.Data[:3])
			}
		})
	}
}

func TestReadTexture_PaletteLookup(t *testing.T) {
	pixels := make([]byte, 16*16)
	for i := range pixels {
		pixels[i] = uint8(i % 4)
	}
	bsp := texturedLevel(0, formatstest.Texture{Name: "stripes", Width: 16, Height: 16, Pixels: pixels})

	raster, err := bsp.ReadTexture(0, formats.ScaleFull, nil)
	if err != nil {
		t.Fatalf("ReadTexture failed: %v", err)
	}

	// nil palette falls back to grayscale
	for i := 0; i < 4; i++ {
		if raster.Data[i*3] != uint8(i) {
			t.Errorf("texel %d: expected gray %d, got %d", i, i, raster.Data[i*3])
		}
	}
}

func TestReadTexture_EmbeddedPalette(t *testing.T) {
	embedded := formatstest.UniformPalette([3]uint8{200, 100, 50})
	bsp := texturedLevel(formats.BSPVersionHalfLife,
		formatstest.Texture{Name: "hl_wall", Width: 16, Height: 16, Fill: 9, Palette: embedded})

	if bsp.Textures[0].Palette == nil {
		t.Fatal("expected embedded palette to be parsed")
	}

	global := formatstest.UniformPalette([3]uint8{0, 0, 0})
	raster, err := bsp.ReadTexture(0, formats.ScaleEighth, global)
	if err != nil {
		t.Fatalf("ReadTexture failed: %v", err)
	}
	if raster.Data[0] != 200 || raster.Data[1] != 100 || raster.Data[2] != 50 {
		t.Errorf("expected embedded palette color, got %v", raster.Data[:3])
	}
}

func TestReadTexture_ShortEmbeddedPalette(t *testing.T) {
	var embedded formats.Palette
	for i := range embedded {
		embedded[i] = [3]uint8{uint8(i), uint8(255 - i), 7}
	}

	tests := []struct {
		name string
		fill uint8
		want [3]uint8
	}{
		{"first entry", 0, [3]uint8{0, 255, 7}},
		{"inside count", 9, [3]uint8{9, 246, 7}},
		{"last entry", 15, [3]uint8{15, 240, 7}},
		{"past count", 200, [3]uint8{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bsp := texturedLevel(formats.BSPVersionHalfLife, formatstest.Texture{
				Name: "hl_short", Width: 16, Height: 16, Fill: tt.fill,
				Palette: &embedded, PaletteEntries: 16,
			})
			if bsp.Textures[0].Palette == nil {
				t.Fatal("expected embedded palette to be parsed")
			}
			if got := bsp.Textures[0].Palette[tt.fill]; got != tt.want {
				t.Errorf("palette[%d] = %v, want %v", tt.fill, got, tt.want)
			}

			raster, err := bsp.ReadTexture(0, formats.ScaleEighth, formatstest.UniformPalette([3]uint8{1, 1, 1}))
			if err != nil {
				t.Fatalf("ReadTexture failed: %v", err)
			}
			if got := [3]uint8{raster.Data[0], raster.Data[1], raster.Data[2]}; got != tt.want {
				t.Errorf("texel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadTexture_NotEmbedded(t *testing.T) {
	bsp := texturedLevel(formats.BSPVersionHalfLife,
		formatstest.Texture{Name: "wadtex", Width: 64, Height: 64, External: true},
		formatstest.Texture{Missing: true},
	)

	for i := range bsp.Textures {
		if bsp.Textures[i].Embedded() {
			t.Errorf("texture %d should not be embedded", i)
		}
		raster, err := bsp.ReadTexture(i, formats.ScaleEighth, nil)
		if err != nil {
			t.Fatalf("ReadTexture(%d) failed: %v", i, err)
		}
		if raster.Texels() != 0 {
			t.Errorf("texture %d: expected empty raster, got %d texels", i, raster.Texels())
		}
	}

	if bsp.Textures[0].Name != "wadtex" || bsp.Textures[0].Width != 64 {
		t.Errorf("external texture header not kept: %+v", bsp.Textures[0])
	}
}

func TestReadTexture_Errors(t *testing.T) {
	bsp := texturedLevel(0, formatstest.Texture{Name: "a", Width: 16, Height: 16})

	if _, err := bsp.ReadTexture(5, formats.ScaleFull, nil); !errors.Is(err, formats.ErrTextureIndex) {
		t.Errorf("expected ErrTextureIndex, got %v", err)
	}
	if _, err := bsp.ReadTexture(0, formats.TextureScale(7), nil); !errors.Is(err, formats.ErrInvalidScale) {
		t.Errorf("expected ErrInvalidScale, got %v", err)
	}
}

func TestParseTextureScale(t *testing.T) {
	for _, s := range []formats.TextureScale{formats.ScaleFull, formats.ScaleHalf, formats.ScaleQuarter, formats.ScaleEighth} {
		got, err := formats.ParseTextureScale(s.String())
		if err != nil {
			t.Fatalf("ParseTextureScale(%q) failed: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseTextureScale(%q) = %v", s, got)
		}
	}

	if _, err := formats.ParseTextureScale("double"); !errors.Is(err, formats.ErrInvalidScale) {
		t.Errorf("expected ErrInvalidScale, got %v", err)
	}
}

func TestRaster_Image(t *testing.T) {
	r := &formats.Raster{Width: 2, Height: 1, Data: []byte{10, 20, 30, 40, 50, 60}}
	img := r.Image()

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	c := img.RGBAAt(1, 0)
	if c.R != 40 || c.G != 50 || c.B != 60 || c.A != 255 {
		t.Errorf("unexpected pixel %v", c)
	}
}

func TestParsePalette(t *testing.T) {
	want := formatstest.UniformPalette([3]uint8{9, 8, 7})
	pal, err := formats.ParsePalette(formatstest.PaletteBytes(want))
	if err != nil {
		t.Fatalf("ParsePalette failed: %v", err)
	}
	if *pal != *want {
		t.Error("parsed palette differs from source")
	}

	if _, err := formats.ParsePalette(make([]byte, 100)); !errors.Is(err, formats.ErrInvalidPalette) {
		t.Errorf("expected ErrInvalidPalette, got %v", err)
	}
}

func TestGrayscalePalette(t *testing.T) {
	pal := formats.GrayscalePalette()
	if pal[0] != [3]uint8{0, 0, 0} || pal[255] != [3]uint8{255, 255, 255} {
		t.Errorf("unexpected grayscale endpoints %v %v", pal[0], pal[255])
	}
}

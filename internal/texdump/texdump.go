// Package texdump writes the textures embedded in a level as image files.
package texdump

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"

	"github.com/Faultbox/bsp2svg/pkg/formats"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatTGA = "tga"
)

// ErrUnknownFormat is returned for formats other than png and tga.
var ErrUnknownFormat = errors.New("unknown texture format")

// Options controls a dump.
type Options struct {
	Scale   formats.TextureScale
	Format  string
	Palette *formats.Palette // nil = grayscale unless the texture embeds one
	Log     *zap.Logger
}

// Dump writes every texture with embedded pixels into dir and returns the
// written paths in texture order. Textures stored outside the level are skipped.
func Dump(bsp *formats.BSP, dir string, opts Options) ([]string, error) {
	format := strings.ToLower(opts.Format)
	if format != FormatPNG && format != FormatTGA {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	var written []string
	for i := range bsp.Textures {
		tex := &bsp.Textures[i]
		if !tex.Embedded() {
			log.Debug("skipping texture without pixels", zap.Int("index", i), zap.String("name", tex.Name))
			continue
		}

		raster, err := bsp.ReadTexture(i, opts.Scale, opts.Palette)
		if err != nil {
			return written, fmt.Errorf("reading texture %q: %w", tex.Name, err)
		}
		if raster.Texels() == 0 {
			continue
		}

		base := FileName(tex.Name)
		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true

		path := filepath.Join(dir, name+"."+format)
		if err := writeImage(path, raster.Image(), format); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}

	log.Info("dumped textures",
		zap.Int("written", len(written)),
		zap.Int("textures", len(bsp.Textures)),
		zap.Stringer("scale", opts.Scale),
	)
	return written, nil
}

func writeImage(path string, img image.Image, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f, img, format)
}

func encode(w io.Writer, img image.Image, format string) error {
	if format == FormatTGA {
		return tga.Encode(w, img)
	}
	return png.Encode(w, img)
}

// FileName maps a texture name to a safe file name. Quake prefixes such as
// '*' (liquids) and '+' (animation frames) are spelled out.
func FileName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '*':
			sb.WriteString("star_")
		case r == '+':
			sb.WriteString("plus_")
		case r == '-' || r == '_' || r == '.':
			sb.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "unnamed"
	}
	return sb.String()
}

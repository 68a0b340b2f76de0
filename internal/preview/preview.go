// Package preview rasterizes composed map documents.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"github.com/Faultbox/bsp2svg/internal/mapsvg"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// ErrUnknownFormat is returned for output formats other than png and webp.
var ErrUnknownFormat = errors.New("unknown preview format")

// svgMiterLimit is the SVG default for stroke-miterlimit.
const svgMiterLimit = 4

// Options controls the raster size.
type Options struct {
	MaxSize     int // longest edge of the result in pixels
	Supersample int // render at this multiple, then downsample
}

// Size returns the output dimensions for a viewport, keeping its aspect ratio.
func (o Options) Size(view mapsvg.Viewport) (width, height int) {
	longest := math.Max(float64(view.Width), float64(view.Height))
	if longest <= 0 || o.MaxSize <= 0 {
		return 1, 1
	}
	scale := float64(o.MaxSize) / longest
	width = max(1, int(math.Ceil(float64(view.Width)*scale)))
	height = max(1, int(math.Ceil(float64(view.Height)*scale)))
	return width, height
}

// Render draws the document the way an SVG viewer would: the background,
// then every polygon with the thick border overlay, then every polygon
// again with the thin interior overlay. A polygon's own fill wins over the
// fill inherited from an overlay.
func Render(doc *mapsvg.Document, opts Options) (*image.RGBA, error) {
	width, height := opts.Size(doc.View)
	ss := max(1, opts.Supersample)

	dc := gg.NewContext(width*ss, height*ss)
	defer dc.Close()

	// Pixels per level unit on the supersampled canvas.
	k := 1.0
	if longest := math.Max(float64(doc.View.Width), float64(doc.View.Height)); longest > 0 {
		k = float64(max(width, height)*ss) / longest
	}

	dc.ClearWithColor(parseColor(doc.Style.Background))
	dc.SetLineJoin(gg.LineJoinMiter)
	dc.SetMiterLimit(svgMiterLimit)

	passes := []struct {
		stroke string
		width  float32
	}{
		{doc.Style.BorderStroke, doc.Style.BorderWidth},
		{doc.Style.InteriorStroke, doc.Style.InteriorWidth},
	}

	for _, pass := range passes {
		for _, shape := range doc.Shapes {
			if len(shape.Points) == 0 {
				continue
			}
			tracePolygon(dc, doc.View, k, shape)

			dc.SetRGB(channel(shape.Fill.R), channel(shape.Fill.G), channel(shape.Fill.B))
			if err := dc.FillPreserve(); err != nil {
				return nil, fmt.Errorf("filling polygon: %w", err)
			}

			if pass.width <= 0 || pass.stroke == "" || pass.stroke == "none" {
				dc.ClearPath()
				continue
			}
			dc.SetColor(parseColor(pass.stroke).Color())
			dc.SetLineWidth(float64(pass.width) * k)
			if err := dc.Stroke(); err != nil {
				return nil, fmt.Errorf("stroking polygon: %w", err)
			}
		}
	}

	src := dc.Image()
	if ss == 1 {
		return toRGBA(src), nil
	}
	return downsample(src, width, height), nil
}

func tracePolygon(dc *gg.Context, view mapsvg.Viewport, k float64, shape mapsvg.Shape) {
	for i, p := range shape.Points {
		x := float64(p.X-view.X) * k
		y := float64(p.Y-view.Y) * k
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

// downsample reduces a supersampled render with CatmullRom filtering.
func downsample(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

func channel(v uint8) float64 {
	return float64(v) / 255
}

// parseColor accepts #rgb, #rrggbb and SVG color keywords. Unknown values are black.
func parseColor(s string) gg.RGBA {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return gg.Hex(s)
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return gg.FromColor(c)
	}
	return gg.Black
}

// Encode writes img as PNG or WebP.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save encodes img to path, creating parent directories.
func Save(path string, img image.Image, format string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, img, format)
}

// OutputPath derives the preview path for a label: <dir>/<label>.<format>.
func OutputPath(dir, label, format string) string {
	return filepath.Join(dir, label+"."+strings.ToLower(format))
}

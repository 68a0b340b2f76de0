package mapsvg

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/bsp2svg/pkg/formats"
)

// Converter runs the whole level-to-SVG pipeline.
type Converter struct {
	Axis    Axis
	Scale   formats.TextureScale // mip level used for color sampling
	Workers int                  // concurrent color samplers, <= 1 runs inline
	Style   Style

	// Log receives per-run diagnostics after the document is composed.
	// Nil disables them.
	Log *zap.Logger
}

// NewConverter returns a top-down converter sampling eighth-size textures.
func NewConverter(log *zap.Logger) *Converter {
	return &Converter{
		Axis:    AxisZ,
		Scale:   formats.ScaleEighth,
		Workers: 1,
		Style:   DefaultStyle(),
		Log:     log,
	}
}

// Convert produces the SVG document for level. Nothing is written; errors
// from the raster source or depth computation abort the run.
func (c *Converter) Convert(level *Level, source RasterSource) (*Document, error) {
	points := Project(level.Vertices, c.Axis)

	colors, err := SampleColors(level.Textures, source, c.Scale, c.Workers)
	if err != nil {
		return nil, fmt.Errorf("sampling colors: %w", err)
	}

	faces, err := OrderFaces(level, c.Axis)
	if err != nil {
		return nil, fmt.Errorf("ordering faces: %w", err)
	}

	drawables, err := BuildDrawables(level, faces, points, c.Axis)
	if err != nil {
		return nil, fmt.Errorf("building polygons: %w", err)
	}

	doc, err := Compose(points, drawables, colors, c.Style)
	if err != nil {
		return nil, err
	}

	c.report(level, drawables, colors)
	return doc, nil
}

// report logs counts and the distinct depth spans per texture.
func (c *Converter) report(level *Level, drawables []DrawableFace, colors ColorTable) {
	if c.Log == nil {
		return
	}

	c.Log.Info("composed map",
		zap.Stringer("axis", c.Axis),
		zap.Int("faces", len(level.Faces)),
		zap.Int("drawn", len(drawables)),
		zap.Int("textures", len(colors)),
	)

	if !c.Log.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, s := range DepthSpans(drawables) {
		c.Log.Debug("depth span",
			zap.Float32("min", s.Min),
			zap.Float32("max", s.Max),
			zap.String("texture", s.Texture),
		)
	}
}

// DepthSpan is a distinct (min depth, max depth, texture) triple.
type DepthSpan struct {
	Min     float32
	Max     float32
	Texture string
}

// DepthSpans returns the distinct spans of drawables sorted by min, max, texture.
func DepthSpans(drawables []DrawableFace) []DepthSpan {
	seen := make(map[DepthSpan]struct{}, len(drawables))
	spans := make([]DepthSpan, 0, len(drawables))
	for _, d := range drawables {
		s := DepthSpan{Min: d.MinDepth, Max: d.MaxDepth, Texture: d.Texture}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		spans = append(spans, s)
	}

	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Min != b.Min {
			return a.Min < b.Min
		}
		if a.Max != b.Max {
			return a.Max < b.Max
		}
		return a.Texture < b.Texture
	})
	return spans
}

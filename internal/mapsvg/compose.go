package mapsvg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/bsp2svg/pkg/math"
)

// GroupID is the id of the hidden polygon group referenced by both overlays.
const GroupID = "bsp_ref"

const svgNamespace = "http://www.w3.org/2000/svg"

// Style holds the fixed presentation settings of a document.
type Style struct {
	Padding        float32 // added on every side of the projected bounds
	Background     string
	BorderStroke   string // overlay A: thick outline
	BorderWidth    float32
	InteriorFill   string // overlay B: thin outline over a light fill
	InteriorStroke string
	InteriorWidth  float32
}

// DefaultStyle returns black background, thick black borders and a thin
// black outline over a light fill.
func DefaultStyle() Style {
	return Style{
		Padding:        100,
		Background:     "black",
		BorderStroke:   "black",
		BorderWidth:    10,
		InteriorFill:   "#eee",
		InteriorStroke: "black",
		InteriorWidth:  0.5,
	}
}

// Viewport is the visible region in projected units.
type Viewport struct {
	X, Y, Width, Height float32
}

// Shape is a composed polygon with its resolved fill.
type Shape struct {
	Points []math.Vec2
	Fill   RGB
}

// Document is a composed SVG map. The xml-tagged fields are written out;
// View, Shapes and Style keep the typed values for raster previews.
type Document struct {
	XMLName    xml.Name `xml:"svg"`
	Xmlns      string   `xml:"xmlns,attr"`
	ViewBox    string   `xml:"viewBox,attr"`
	Background Rect     `xml:"rect"`
	Defs       Defs     `xml:"defs"`
	Overlays   []Use    `xml:"use"`

	View   Viewport `xml:"-"`
	Shapes []Shape  `xml:"-"`
	Style  Style    `xml:"-"`
}

// Rect is an SVG rect element.
type Rect struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Fill   string `xml:"fill,attr"`
}

// Defs holds elements that are only drawn through references.
type Defs struct {
	Group Group `xml:"g"`
}

// Group is an SVG g element.
type Group struct {
	ID       string    `xml:"id,attr"`
	Polygons []Polygon `xml:"polygon"`
}

// Polygon is an SVG polygon element. It carries no stroke so the
// referencing overlay decides the outline.
type Polygon struct {
	Points string `xml:"points,attr"`
	Fill   string `xml:"fill,attr"`
}

// Use is an SVG use element.
type Use struct {
	Href           string `xml:"href,attr"`
	Fill           string `xml:"fill,attr,omitempty"`
	Stroke         string `xml:"stroke,attr,omitempty"`
	StrokeWidth    string `xml:"stroke-width,attr,omitempty"`
	StrokeLinejoin string `xml:"stroke-linejoin,attr,omitempty"`
}

// Compose builds the document. The viewport frames all projected points,
// including those of filtered faces, so the map extent does not depend on
// the ignore list.
func Compose(points []math.Vec2, faces []DrawableFace, colors ColorTable, style Style) (*Document, error) {
	bounds := math.BoundsOf(points)
	if bounds.Empty() {
		return nil, ErrEmptyScene
	}

	size := bounds.Size()
	view := Viewport{
		X:      bounds.Min.X - style.Padding,
		Y:      bounds.Min.Y - style.Padding,
		Width:  size.X + 2*style.Padding,
		Height: size.Y + 2*style.Padding,
	}

	doc := &Document{
		Xmlns:   svgNamespace,
		ViewBox: strings.Join([]string{formatFloat(view.X), formatFloat(view.Y), formatFloat(view.Width), formatFloat(view.Height)}, " "),
		Background: Rect{
			X:      formatFloat(view.X),
			Y:      formatFloat(view.Y),
			Width:  formatFloat(view.Width),
			Height: formatFloat(view.Height),
			Fill:   style.Background,
		},
		Defs: Defs{
			Group: Group{
				ID:       GroupID,
				Polygons: make([]Polygon, 0, len(faces)),
			},
		},
		Overlays: []Use{
			{
				Href:           "#" + GroupID,
				Stroke:         style.BorderStroke,
				StrokeWidth:    formatFloat(style.BorderWidth),
				StrokeLinejoin: "miter",
			},
			{
				Href:        "#" + GroupID,
				Fill:        style.InteriorFill,
				Stroke:      style.InteriorStroke,
				StrokeWidth: formatFloat(style.InteriorWidth),
			},
		},
		View:   view,
		Shapes: make([]Shape, 0, len(faces)),
		Style:  style,
	}

	for _, f := range faces {
		fill := colors.Lookup(f.Texture)
		doc.Defs.Group.Polygons = append(doc.Defs.Group.Polygons, Polygon{
			Points: formatPoints(f.Points),
			Fill:   fill.Hex(),
		})
		doc.Shapes = append(doc.Shapes, Shape{Points: f.Points, Fill: fill})
	}

	return doc, nil
}

// formatFloat prints the shortest decimal that round-trips the float32.
// Negative zero prints as 0.
func formatFloat(v float32) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func formatPoints(points []math.Vec2) string {
	var sb strings.Builder
	for i, p := range points {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(formatFloat(p.X))
		sb.WriteByte(',')
		sb.WriteString(formatFloat(p.Y))
	}
	return sb.String()
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo encodes the document as indented SVG.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding SVG: %w", err)
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OutputPath derives the document path for a label: <dir>/<label>.svg.
func OutputPath(dir, label string) string {
	return filepath.Join(dir, label+".svg")
}

// Package mapsvg turns a level's planar faces into a flat, colored SVG map.
//
// The pipeline projects every vertex along one axis, drops faces whose
// texture is on the ignore list, orders the rest back to front by their
// minimum depth (painter's algorithm, no depth buffer), samples one mean
// color per texture and composes the result into a single SVG document:
//
//	points := Project(level.Vertices, AxisZ)
//	faces, err := OrderFaces(level, AxisZ)
//	colors, err := SampleColors(level.Textures, source, formats.ScaleEighth, 1)
//	drawables, err := BuildDrawables(level, faces, points, AxisZ)
//	doc, err := Compose(points, drawables, colors, DefaultStyle())
//
// Converter runs the same steps in one call.
package mapsvg

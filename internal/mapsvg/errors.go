package mapsvg

import "errors"

// Conversion errors.
var (
	// ErrDepthComputation is returned when a face has no vertices, references a
	// vertex that does not exist, or has a coordinate that cannot be ordered (NaN).
	ErrDepthComputation = errors.New("depth computation failed")

	// ErrTextureFetch is returned when a raster cannot be read for color sampling.
	ErrTextureFetch = errors.New("texture fetch failed")

	// ErrEmptyScene is returned when there are no projected points to frame.
	ErrEmptyScene = errors.New("scene has no vertices")

	// ErrInvalidAxis is returned for an unknown projection axis name.
	ErrInvalidAxis = errors.New("invalid projection axis")
)

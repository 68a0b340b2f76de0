package mapsvg

import (
	"fmt"
	"sort"
)

// OrderFaces filters ignored faces and sorts the rest by their minimum
// coordinate along axis, ascending. Faces with equal minimums keep level order.
//
// Minimums are kept in a slice aligned with the filtered faces rather than a
// map keyed by Face.Key, so faces that share a key cannot collide.
func OrderFaces(level *Level, axis Axis) ([]Face, error) {
	faces := FilterFaces(level)

	minimums := make([]float32, len(faces))
	for i, f := range faces {
		lo, _, err := depthRange(level, f, axis)
		if err != nil {
			return nil, err
		}
		minimums[i] = lo
	}

	order := make([]int, len(faces))
	for i := range order {
		order[i] = i
	}
	// NaN was rejected above, so < is a strict weak order here.
	sort.SliceStable(order, func(a, b int) bool {
		return minimums[order[a]] < minimums[order[b]]
	})

	sorted := make([]Face, len(faces))
	for i, idx := range order {
		sorted[i] = faces[idx]
	}
	return sorted, nil
}

// depthRange returns the minimum and maximum coordinate of the face's
// original 3D vertices along axis.
func depthRange(level *Level, f Face, axis Axis) (lo, hi float32, err error) {
	if len(f.Vertices) == 0 {
		return 0, 0, fmt.Errorf("%w: face %d has no vertices", ErrDepthComputation, f.Key)
	}

	vertices, ok := level.FaceVertices(f)
	if !ok {
		return 0, 0, fmt.Errorf("%w: face %d references a vertex outside [0,%d)",
			ErrDepthComputation, f.Key, len(level.Vertices))
	}

	for i, v := range vertices {
		d := axis.Depth(v)
		if d != d {
			return 0, 0, fmt.Errorf("%w: face %d has an unordered %s coordinate", ErrDepthComputation, f.Key, axis)
		}
		if i == 0 {
			lo, hi = d, d
			continue
		}
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi, nil
}

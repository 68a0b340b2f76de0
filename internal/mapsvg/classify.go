package mapsvg

import "strings"

// Textures that never render: brush entities and compiler helpers.
var ignoredTextureNames = []string{"clip", "hint", "trigger", "163"}

// Substrings of textures that clutter a top-down map.
var ignoredTextureNeedles = []string{"sky", "light", "tech", "wood"}

// IsIgnoredTexture reports whether faces with this texture are left off the map.
// Exact names are checked before substrings; matching is case-sensitive.
func IsIgnoredTexture(name string) bool {
	for _, n := range ignoredTextureNames {
		if n == name {
			return true
		}
	}
	for _, needle := range ignoredTextureNeedles {
		if strings.Contains(name, needle) {
			return true
		}
	}
	return false
}

// FilterFaces returns the faces whose texture is not ignored, in level order.
func FilterFaces(level *Level) []Face {
	faces := make([]Face, 0, len(level.Faces))
	for _, f := range level.Faces {
		if !IsIgnoredTexture(level.FaceTexture(f).Name) {
			faces = append(faces, f)
		}
	}
	return faces
}

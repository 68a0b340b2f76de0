// Package formats provides parsers for Quake family level files.
package formats

// Note: BSP (Binary Space Partition level) is implemented in bsp.go
// Note: miptex texture decoding is implemented in texture.go
// Note: palette.lmp loading is implemented in palette.go

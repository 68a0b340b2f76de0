package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/bsp2svg/pkg/formats/formatstest"
	"github.com/Faultbox/bsp2svg/pkg/math"
	"github.com/Faultbox/bsp2svg/pkg/pak/paktest"
)

// workspace isolates config discovery and returns a scratch directory.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Chdir(dir)
	return dir
}

func squareMap() []byte {
	return formatstest.BuildBSP(formatstest.Level{
		Vertices: []math.Vec3{{0, 0, 0}, {64, 0, 0}, {64, 64, 0}, {0, 64, 0}},
		Faces:    []formatstest.Face{{Vertices: []int{0, 1, 2, 3}}},
		Textures: []formatstest.Texture{{Name: "metal", Width: 16, Height: 16, Fill: 3}},
	})
}

func TestConvertFromDisk(t *testing.T) {
	dir := workspace(t)
	mapPath := filepath.Join(dir, "e1m1.bsp")
	if err := os.WriteFile(mapPath, squareMap(), 0644); err != nil {
		t.Fatal(err)
	}

	if err := cmdConvert([]string{"-out", "out", "-preview", "png", mapPath}); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "e1m1.svg"))
	if err != nil {
		t.Fatalf("SVG not written: %v", err)
	}
	// No palette anywhere: grayscale index 3.
	if !strings.Contains(string(data), `fill="#030303"`) {
		t.Errorf("expected grayscale fill in:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "e1m1.png")); err != nil {
		t.Errorf("preview not written: %v", err)
	}
}

func TestConvertFromPAK(t *testing.T) {
	dir := workspace(t)
	pal := formatstest.PaletteBytes(formatstest.UniformPalette([3]uint8{10, 20, 30}))
	pakPath := filepath.Join(dir, "pak0.pak")
	if err := paktest.Write(pakPath, map[string][]byte{
		"maps/start.bsp":  squareMap(),
		"gfx/palette.lmp": pal,
	}); err != nil {
		t.Fatal(err)
	}

	if err := cmdConvert([]string{"-pak", pakPath, "-axis", "x", "start", "start_side"}); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "target", "start_side.svg"))
	if err != nil {
		t.Fatalf("SVG not written: %v", err)
	}
	if !strings.Contains(string(data), `fill="#0a141e"`) {
		t.Errorf("expected palette color in:\n%s", data)
	}

	if err := cmdMaps([]string{"-pak", pakPath}); err != nil {
		t.Errorf("maps failed: %v", err)
	}
}

func TestConvertMissingMap(t *testing.T) {
	workspace(t)
	if err := cmdConvert([]string{"nowhere.bsp"}); err == nil {
		t.Error("expected error for missing map")
	}
}

func TestTexturesCommand(t *testing.T) {
	dir := workspace(t)
	mapPath := filepath.Join(dir, "e1m1.bsp")
	if err := os.WriteFile(mapPath, squareMap(), 0644); err != nil {
		t.Fatal(err)
	}

	if err := cmdTextures([]string{"-format", "tga", "-scale", "quarter", mapPath, "tex"}); err != nil {
		t.Fatalf("textures failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tex", "metal.tga")); err != nil {
		t.Errorf("texture not written: %v", err)
	}
}

func TestInfoAndColors(t *testing.T) {
	dir := workspace(t)
	mapPath := filepath.Join(dir, "e1m1.bsp")
	if err := os.WriteFile(mapPath, squareMap(), 0644); err != nil {
		t.Fatal(err)
	}

	if err := cmdInfo([]string{mapPath}); err != nil {
		t.Errorf("info failed: %v", err)
	}
	if err := cmdColors([]string{"-workers", "2", mapPath}); err != nil {
		t.Errorf("colors failed: %v", err)
	}
}

package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/formats/formatstest"
	"github.com/Faultbox/bsp2svg/pkg/math"
	"github.com/Faultbox/bsp2svg/pkg/pak/paktest"
)

func testMap(name string) []byte {
	return formatstest.BuildBSP(formatstest.Level{
		Vertices: []math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		Faces:    []formatstest.Face{{Vertices: []int{0, 1, 2}}},
		Textures: []formatstest.Texture{{Name: name, Width: 8, Height: 8}},
	})
}

func writePAK(t *testing.T, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pak0.pak")
	if err := paktest.Write(path, files); err != nil {
		t.Fatalf("failed to write PAK: %v", err)
	}
	return path
}

func TestLoadPriority(t *testing.T) {
	first := writePAK(t, map[string][]byte{"progs/a.mdl": []byte("old"), "only/first.txt": []byte("1")})
	second := writePAK(t, map[string][]byte{"progs/a.mdl": []byte("new")})

	m := NewManager(nil)
	defer m.Close()
	if err := m.AddArchive(first); err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}
	if err := m.AddArchive(second); err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}

	data, err := m.Load("progs/a.mdl")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("expected last archive to win, got %q", data)
	}

	data, err = m.Load(`ONLY\first.txt`)
	if err != nil {
		t.Fatalf("Load with unnormalized name failed: %v", err)
	}
	if string(data) != "1" {
		t.Errorf("unexpected data %q", data)
	}

	if _, err := m.Load("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadUsesCache(t *testing.T) {
	m := NewManager(nil)
	defer m.Close()
	if err := m.AddArchive(writePAK(t, map[string][]byte{"a.txt": []byte("a")})); err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Load("a.txt"); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	hits, misses := m.cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
	}
}

func TestAddArchiveInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pak")
	if err := os.WriteFile(path, []byte("not a pak archive"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil)
	defer m.Close()
	if err := m.AddArchive(path); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestList(t *testing.T) {
	m := NewManager(nil)
	defer m.Close()
	m.AddArchive(writePAK(t, map[string][]byte{"maps/e1m1.bsp": nil, "maps/e1m2.bsp": nil, "gfx/palette.lmp": nil}))
	m.AddArchive(writePAK(t, map[string][]byte{"maps/e1m1.bsp": nil, "maps/start.BSP": nil}))

	got := m.List(".bsp")
	want := []string{"maps/e1m1.bsp", "maps/e1m2.bsp", "maps/start.bsp"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if n := len(m.List("")); n != 4 {
		t.Errorf("expected 4 files in total, got %d", n)
	}
	if !m.Contains("gfx/palette.lmp") {
		t.Error("expected palette to be found")
	}
	if m.Contains("maps/e1m9.bsp") {
		t.Error("expected e1m9 to be missing")
	}
}

func TestSize(t *testing.T) {
	m := NewManager(nil)
	defer m.Close()
	m.AddArchive(writePAK(t, map[string][]byte{"maps/e1m1.bsp": make([]byte, 5), "maps/e1m2.bsp": make([]byte, 7)}))
	m.AddArchive(writePAK(t, map[string][]byte{"maps/e1m1.bsp": make([]byte, 11)}))

	tests := []struct {
		name string
		size int64
		ok   bool
	}{
		{"maps/e1m1.bsp", 11, true},
		{"MAPS\\E1M2.BSP", 7, true},
		{"maps/e1m9.bsp", 0, false},
	}
	for _, tt := range tests {
		size, ok := m.Size(tt.name)
		if size != tt.size || ok != tt.ok {
			t.Errorf("Size(%q) = %d, %v; want %d, %v", tt.name, size, ok, tt.size, tt.ok)
		}
	}
}

func TestLoadMap(t *testing.T) {
	dir := t.TempDir()
	diskMap := filepath.Join(dir, "disk.bsp")
	if err := os.WriteFile(diskMap, testMap("fromdisk"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(nil)
	defer m.Close()
	if err := m.AddArchive(writePAK(t, map[string][]byte{
		"maps/e1m1.bsp":   testMap("frompak"),
		"maps/broken.bsp": []byte("garbage"),
	})); err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}

	tests := []struct {
		ref     string
		texture string
		wantErr error
	}{
		{diskMap, "fromdisk", nil},
		{"maps/e1m1.bsp", "frompak", nil},
		{"e1m1", "frompak", nil},
		{"e1m9", "", ErrNotFound},
		{"broken", "", formats.ErrTruncatedBSPData},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bsp, err := m.LoadMap(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadMap failed: %v", err)
			}
			if bsp.Textures[0].Name != tt.texture {
				t.Errorf("expected texture %s, got %s", tt.texture, bsp.Textures[0].Name)
			}
		})
	}
}

func TestPalette(t *testing.T) {
	red := formatstest.PaletteBytes(formatstest.UniformPalette([3]uint8{255, 0, 0}))
	blue := formatstest.PaletteBytes(formatstest.UniformPalette([3]uint8{0, 0, 255}))

	paletteFile := filepath.Join(t.TempDir(), "palette.lmp")
	if err := os.WriteFile(paletteFile, blue, 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("explicit file wins", func(t *testing.T) {
		m := NewManager(nil)
		defer m.Close()
		m.AddArchive(writePAK(t, map[string][]byte{PalettePath: red}))

		pal, err := m.Palette(paletteFile)
		if err != nil {
			t.Fatalf("Palette failed: %v", err)
		}
		if pal[7] != [3]uint8{0, 0, 255} {
			t.Errorf("expected blue, got %v", pal[7])
		}
	})

	t.Run("archive", func(t *testing.T) {
		m := NewManager(nil)
		defer m.Close()
		m.AddArchive(writePAK(t, map[string][]byte{PalettePath: red}))

		pal, err := m.Palette("")
		if err != nil {
			t.Fatalf("Palette failed: %v", err)
		}
		if pal[7] != [3]uint8{255, 0, 0} {
			t.Errorf("expected red, got %v", pal[7])
		}
	})

	t.Run("grayscale fallback", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		m := NewManager(zap.New(core))
		defer m.Close()

		pal, err := m.Palette("")
		if err != nil {
			t.Fatalf("Palette failed: %v", err)
		}
		if pal[200] != [3]uint8{200, 200, 200} {
			t.Errorf("expected gray, got %v", pal[200])
		}
		if logs.Len() != 1 {
			t.Errorf("expected one warning, got %d", logs.Len())
		}
	})

	t.Run("short palette in archive", func(t *testing.T) {
		m := NewManager(nil)
		defer m.Close()
		m.AddArchive(writePAK(t, map[string][]byte{PalettePath: red[:30]}))

		if _, err := m.Palette(""); !errors.Is(err, formats.ErrInvalidPalette) {
			t.Errorf("expected ErrInvalidPalette, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		m := NewManager(nil)
		defer m.Close()
		if _, err := m.Palette(filepath.Join(t.TempDir(), "nope.lmp")); err == nil {
			t.Error("expected error for missing palette file")
		}
	})
}

func TestClose(t *testing.T) {
	m := NewManager(nil)
	if err := m.AddArchive(writePAK(t, map[string][]byte{"a.txt": []byte("a")})); err != nil {
		t.Fatalf("AddArchive failed: %v", err)
	}
	if _, err := m.Load("a.txt"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := m.Load("a.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after close, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"maps/e1m1.bsp":       "e1m1",
		"e1m1":                "e1m1",
		"/tmp/dm6.BSP":        "dm6",
		"levels/start.v2.bsp": "start.v2",
	}
	for ref, want := range tests {
		if got := Label(ref); got != want {
			t.Errorf("Label(%q) = %q, want %q", ref, got, want)
		}
	}
}

// Package assets resolves levels and palettes from disk or PAK archives.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/bsp2svg/pkg/encoding"
	"github.com/Faultbox/bsp2svg/pkg/formats"
	"github.com/Faultbox/bsp2svg/pkg/pak"
)

// PalettePath is where Quake keeps its palette inside pak0.pak.
const PalettePath = "gfx/palette.lmp"

// ErrNotFound is returned when no archive contains a file.
var ErrNotFound = errors.New("asset not found")

// Manager handles asset loading from PAK archives and the filesystem.
type Manager struct {
	archives []*pak.Archive
	names    []string
	cache    *Cache
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a new asset manager. A nil logger discards messages.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		log:   log,
	}
}

// AddArchive adds a PAK archive to the manager.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	archive, err := pak.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.names = append(m.names, path)
	m.mu.Unlock()

	m.log.Debug("added archive", zap.String("path", path), zap.Int("files", archive.Len()))
	return nil
}

// Load loads a file from the archives.
func (m *Manager) Load(name string) ([]byte, error) {
	key := encoding.NormalizePath(name)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		if !m.archives[i].Contains(key) {
			continue
		}
		data, err := m.archives[i].Read(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.names[i], err)
		}
		m.cache.Set(key, data)
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Contains reports whether any archive holds name.
func (m *Manager) Contains(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.archives {
		if a.Contains(name) {
			return true
		}
	}
	return false
}

// Size returns the stored size of name in the highest priority archive holding it.
func (m *Manager) Size(name string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		if entry, ok := m.archives[i].Stat(name); ok {
			return int64(entry.Size), true
		}
	}
	return 0, false
}

// List returns the distinct files of all archives matching the extension
// (with dot, empty for all), sorted.
func (m *Manager) List(ext string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, a := range m.archives {
		for _, name := range a.List() {
			if ext != "" && !strings.EqualFold(path.Ext(name), ext) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// LoadMap parses the level named by ref. A path that exists on disk is read
// directly; otherwise ref is looked up in the archives as given and as
// maps/<ref>.bsp.
func (m *Manager) LoadMap(ref string) (*formats.BSP, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		m.log.Debug("loading map from disk", zap.String("path", ref))
		return formats.ParseBSPFile(ref)
	}

	for _, candidate := range mapCandidates(ref) {
		if !m.Contains(candidate) {
			continue
		}
		data, err := m.Load(candidate)
		if err != nil {
			return nil, err
		}

		m.log.Debug("loading map from archive", zap.String("path", candidate))
		bsp, err := formats.ParseBSP(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", candidate, err)
		}
		return bsp, nil
	}

	return nil, fmt.Errorf("%w: map %s", ErrNotFound, ref)
}

func mapCandidates(ref string) []string {
	candidates := []string{ref}
	if !strings.EqualFold(path.Ext(ref), ".bsp") {
		candidates = append(candidates, path.Join("maps", ref+".bsp"))
	}
	return candidates
}

// Palette resolves the color palette: an explicit file first, then
// gfx/palette.lmp from the archives, then grayscale.
func (m *Manager) Palette(file string) (*formats.Palette, error) {
	if file != "" {
		return formats.ParsePaletteFile(file)
	}

	data, err := m.Load(PalettePath)
	switch {
	case err == nil:
		return formats.ParsePalette(data)
	case errors.Is(err, ErrNotFound):
		m.log.Warn("no palette configured or found in archives, using grayscale")
		return formats.GrayscalePalette(), nil
	default:
		return nil, err
	}
}

// Close closes all archives.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	for i, archive := range m.archives {
		if cerr := archive.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("closing %s: %w", m.names[i], cerr))
		}
	}

	hits, misses := m.cache.Stats()
	m.log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))

	m.archives = nil
	m.names = nil
	m.cache.Clear()
	return err
}

// Label derives an output name from a map reference: the base name without extension.
func Label(ref string) string {
	base := filepath.Base(filepath.FromSlash(ref))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

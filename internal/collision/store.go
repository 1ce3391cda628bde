package collision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// Region grid dimensions of the Store.
const (
	RegionsX = 64
	RegionsY = 256
)

// SceneExt is the file extension of scene files.
const SceneExt = ".pts"

// Store holds loaded scenes keyed by region.
// Thread-safe: scenes are swapped atomically and never modified.
type Store struct {
	scenes [RegionsX * RegionsY]atomic.Pointer[Scene]
	loaded atomic.Int32
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// LoadDir loads all scene files from dir.
// File naming convention: "<regionX>_<regionY>.pts"
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading scene dir %s: %w", dir, err)
	}

	loaded, fresh := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != SceneExt {
			continue
		}

		rx, ry, ok := ParseRegionName(name[:len(name)-len(ext)])
		if !ok {
			slog.Warn("skip scene file (bad name)", "file", name)
			continue
		}
		if !regionInRange(rx, ry) {
			slog.Warn("skip scene file (out of range)", "file", name, "rx", rx, "ry", ry)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading scene %s: %w", name, err)
		}
		scene, err := DecodeScene(data)
		if err != nil {
			return fmt.Errorf("parsing scene %s: %w", name, err)
		}

		if s.scenes[rx*RegionsY+ry].Swap(scene) == nil {
			fresh++
		}
		loaded++
	}

	s.loaded.Add(int32(fresh))
	slog.Info("scenes loaded", "regions", loaded, "dir", dir)
	return nil
}

// Put installs a scene for region (rx, ry), replacing any previous one.
func (s *Store) Put(rx, ry int, scene *Scene) error {
	if !regionInRange(rx, ry) {
		return fmt.Errorf("put scene %d_%d: region out of range", rx, ry)
	}
	if s.scenes[rx*RegionsY+ry].Swap(scene) == nil {
		s.loaded.Add(1)
	}
	return nil
}

// Scene returns the scene of region (rx, ry), or nil if none is loaded.
func (s *Store) Scene(rx, ry int) *Scene {
	if !regionInRange(rx, ry) {
		return nil
	}
	return s.scenes[rx*RegionsY+ry].Load()
}

// Grid returns the plane z grid of region (rx, ry), or nil.
func (s *Store) Grid(rx, ry, z int) *Grid {
	return s.Scene(rx, ry).Plane(z)
}

// IsLoaded returns true if any scene is loaded.
func (s *Store) IsLoaded() bool {
	return s.loaded.Load() > 0
}

// ParseRegionName parses "<regionX>_<regionY>". Both parts must be plain
// decimal integers with nothing else around them.
func ParseRegionName(base string) (rx, ry int, ok bool) {
	xs, ys, found := strings.Cut(base, "_")
	if !found {
		return 0, 0, false
	}
	rx, errX := strconv.Atoi(xs)
	ry, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return rx, ry, true
}

func regionInRange(rx, ry int) bool {
	return rx >= 0 && rx < RegionsX && ry >= 0 && ry < RegionsY
}

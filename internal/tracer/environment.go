package tracer

import (
	"context"
	"errors"
	"sync"

	"github.com/udisondev/pathtracer/internal/collision"
)

// ErrNoCollisionData is returned by environments without a grid.
var ErrNoCollisionData = errors.New("no collision data loaded")

// StaticEnvironment is an Environment with values set by the caller.
// Safe for concurrent use.
type StaticEnvironment struct {
	mu       sync.RWMutex
	start    *collision.Point
	selected *collision.Point
	grid     *collision.Grid
}

// NewStaticEnvironment creates an environment over grid with no agent or selection.
func NewStaticEnvironment(grid *collision.Grid) *StaticEnvironment {
	return &StaticEnvironment{grid: grid}
}

// SetCurrent places the agent at p.
func (e *StaticEnvironment) SetCurrent(p collision.Point) {
	e.mu.Lock()
	e.start = &p
	e.mu.Unlock()
}

// Select marks p as the destination tile.
func (e *StaticEnvironment) Select(p collision.Point) {
	e.mu.Lock()
	e.selected = &p
	e.mu.Unlock()
}

// SetGrid replaces the collision snapshot.
func (e *StaticEnvironment) SetGrid(g *collision.Grid) {
	e.mu.Lock()
	e.grid = g
	e.mu.Unlock()
}

// CurrentTile returns the agent tile, or false before SetCurrent.
func (e *StaticEnvironment) CurrentTile(context.Context) (collision.Point, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.start == nil {
		return collision.Point{}, false
	}
	return *e.start, true
}

// SelectedTile returns the destination tile, or false before Select.
func (e *StaticEnvironment) SelectedTile(context.Context) (collision.Point, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.selected == nil {
		return collision.Point{}, false
	}
	return *e.selected, true
}

// Collision returns the grid, or ErrNoCollisionData when none is loaded.
func (e *StaticEnvironment) Collision(context.Context) (*collision.Grid, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.grid.IsLoaded() {
		return nil, ErrNoCollisionData
	}
	return e.grid, nil
}

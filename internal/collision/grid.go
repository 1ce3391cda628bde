package collision

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Index answers walkability queries. Implementations must not change
// while a search is running.
type Index interface {
	IsEnterable(p Point) bool
	CanTraverse(from, to Point) bool
}

// Grid is an immutable snapshot of collision flags for one plane.
// Thread-safe: a Grid is never modified after construction.
type Grid struct {
	width, height int
	flags         []Flags // row major: y*width + x
}

// NewGrid copies flags into a new Grid. len(flags) must be width*height.
func NewGrid(width, height int, flags []Flags) *Grid {
	if width <= 0 || height <= 0 || len(flags) != width*height {
		return &Grid{}
	}
	return wrapGrid(width, height, append([]Flags(nil), flags...))
}

// wrapGrid takes ownership of flags without copying.
func wrapGrid(width, height int, flags []Flags) *Grid {
	return &Grid{width: width, height: height, flags: flags}
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return g.height
}

// IsLoaded reports whether the grid holds any tiles.
func (g *Grid) IsLoaded() bool {
	return g != nil && len(g.flags) > 0
}

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Point) bool {
	return g.IsLoaded() && p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Flags returns the mask at p, or BlockFull outside the grid.
func (g *Grid) Flags(p Point) Flags {
	if !g.InBounds(p) {
		return BlockFull
	}
	return g.flags[p.Y*g.width+p.X]
}

// IsEnterable fails closed: out of bounds, no data and full blocks are all false.
func (g *Grid) IsEnterable(p Point) bool {
	if !g.InBounds(p) {
		return false
	}
	return !g.flags[p.Y*g.width+p.X].Has(BlockFull)
}

// CanTraverse reports whether an agent may step from one tile to an
// 8-adjacent tile. Non-adjacent pairs return false.
func (g *Grid) CanTraverse(from, to Point) bool {
	if !g.IsEnterable(to) {
		return false
	}
	d, ok := DirectionBetween(from, to)
	if !ok {
		return false
	}
	if !d.Diagonal() {
		return g.crossEdge(from, to, d)
	}

	// Corner rule: both contributing cardinal edges of from must be open,
	// along with the diagonal flag on from and its mirror on to.
	h, v := d.Horizontal(), d.Vertical()
	return !g.Flags(from).Has(h.BlockFlag()|v.BlockFlag()|d.BlockFlag()) &&
		!g.Flags(to).Has(d.Opposite().BlockFlag())
}

// crossEdge checks the shared edge of two cardinally adjacent tiles from both sides.
func (g *Grid) crossEdge(from, to Point, d Direction) bool {
	return !g.Flags(from).Has(d.BlockFlag()) && !g.Flags(to).Has(d.Opposite().BlockFlag())
}

// Digest returns a BLAKE2b-256 fingerprint of dimensions and flags.
// Equal grids have equal digests.
func (g *Grid) Digest() [32]byte {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.Width()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.Height()))
	h.Write(buf[:])
	if g != nil {
		for _, f := range g.flags {
			binary.LittleEndian.PutUint32(buf[:4], uint32(f))
			h.Write(buf[:4])
		}
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Builder assembles collision flags before freezing them into a Grid.
// Not safe for concurrent use.
type Builder struct {
	width, height int
	flags         []Flags
}

// NewBuilder creates a builder for an open width×height grid.
func NewBuilder(width, height int) *Builder {
	return &Builder{width: width, height: height, flags: make([]Flags, width*height)}
}

func (b *Builder) index(p Point) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= b.width || p.Y >= b.height {
		return 0, false
	}
	return p.Y*b.width + p.X, true
}

// Set replaces the mask at p. Out of range points are ignored.
func (b *Builder) Set(p Point, f Flags) *Builder {
	if i, ok := b.index(p); ok {
		b.flags[i] = f
	}
	return b
}

// Add ORs f into the mask at p.
func (b *Builder) Add(p Point, f Flags) *Builder {
	if i, ok := b.index(p); ok {
		b.flags[i] |= f
	}
	return b
}

// Block marks p as not enterable.
func (b *Builder) Block(p Point) *Builder {
	return b.Add(p, BlockObject)
}

// AddWall blocks the edge on side d of p, on both tiles sharing it.
func (b *Builder) AddWall(p Point, d Direction) *Builder {
	b.Add(p, d.BlockFlag())
	b.Add(p.Add(d), d.Opposite().BlockFlag())
	return b
}

// Build returns an immutable copy of the current flags.
func (b *Builder) Build() *Grid {
	return NewGrid(b.width, b.height, b.flags)
}

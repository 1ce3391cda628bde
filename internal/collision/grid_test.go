package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEnterable(t *testing.T) {
	g := NewBuilder(3, 3).
		Block(Pt(1, 1)).
		Add(Pt(2, 2), BlockFloor).
		Add(Pt(0, 2), BlockNorth|BlockLineOfSightFull).
		Build()

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"open", Pt(0, 0), true},
		{"object", Pt(1, 1), false},
		{"floor", Pt(2, 2), false},
		{"walls and LOS only", Pt(0, 2), true},
		{"negative x", Pt(-1, 0), false},
		{"past width", Pt(3, 0), false},
		{"past height", Pt(0, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.IsEnterable(tt.p))
		})
	}
}

func TestIsEnterableNoData(t *testing.T) {
	var nilGrid *Grid
	assert.False(t, nilGrid.IsEnterable(Pt(0, 0)))
	assert.False(t, nilGrid.CanTraverse(Pt(0, 0), Pt(1, 0)))
	assert.False(t, NewGrid(0, 0, nil).IsEnterable(Pt(0, 0)))
	assert.False(t, NewGrid(2, 2, make([]Flags, 3)).IsLoaded(), "mismatched length yields empty grid")
}

func TestCanTraverseOpenGrid(t *testing.T) {
	g := NewBuilder(3, 3).Build()
	center := Pt(1, 1)

	for _, d := range Neighbours {
		n := center.Add(d)
		assert.True(t, g.CanTraverse(center, n), "center -> %s", d)
		assert.True(t, g.CanTraverse(n, center), "%s -> center", d)
	}
}

func TestCanTraverseNotAdjacent(t *testing.T) {
	g := NewBuilder(5, 5).Build()
	assert.False(t, g.CanTraverse(Pt(0, 0), Pt(2, 0)))
	assert.False(t, g.CanTraverse(Pt(0, 0), Pt(0, 0)))
}

func TestCanTraverseCardinal(t *testing.T) {
	tests := []struct {
		name     string
		at       Point
		flags    Flags
		from, to Point
		want     bool
	}{
		{"outgoing north on from", Pt(1, 1), BlockNorth, Pt(1, 1), Pt(1, 2), false},
		{"incoming south on to", Pt(1, 2), BlockSouth, Pt(1, 1), Pt(1, 2), false},
		{"unrelated flag on from", Pt(1, 1), BlockEast, Pt(1, 1), Pt(1, 2), true},
		{"east wall blocks westward entry", Pt(1, 1), BlockEast, Pt(2, 1), Pt(1, 1), false},
		{"west flag on from", Pt(1, 1), BlockWest, Pt(1, 1), Pt(0, 1), false},
		{"target blocked", Pt(1, 0), BlockObject, Pt(1, 1), Pt(1, 0), false},
		{"diagonal flag ignored for cardinal", Pt(1, 1), BlockNorthEast, Pt(1, 1), Pt(1, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewBuilder(3, 3).Set(tt.at, tt.flags).Build()
			assert.Equal(t, tt.want, g.CanTraverse(tt.from, tt.to))
		})
	}
}

func TestCanTraverseCornerRule(t *testing.T) {
	origin := Pt(1, 1)
	ne := Pt(2, 2)

	tests := []struct {
		name          string
		setup         func(b *Builder)
		forward, back bool
	}{
		{"north edge on from", func(b *Builder) { b.Set(origin, BlockNorth) }, false, true},
		{"east edge on from", func(b *Builder) { b.Set(origin, BlockEast) }, false, true},
		{"diagonal flag on from", func(b *Builder) { b.Set(origin, BlockNorthEast) }, false, false},
		{"mirrored diagonal on to", func(b *Builder) { b.Set(ne, BlockSouthWest) }, false, false},
		{"south edge on to", func(b *Builder) { b.Set(ne, BlockSouth) }, true, false},
		{"west edge on to", func(b *Builder) { b.Set(ne, BlockWest) }, true, false},
		{"both edges walled on from", func(b *Builder) { b.AddWall(origin, North).AddWall(origin, East) }, false, true},
		{"target blocked", func(b *Builder) { b.Block(ne) }, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(4, 4)
			tt.setup(b)
			g := b.Build()
			assert.Equal(t, tt.forward, g.CanTraverse(origin, ne), "origin -> ne")
			assert.Equal(t, tt.back, g.CanTraverse(ne, origin), "ne -> origin")
		})
	}
}

func TestCanTraverseUnflaggedNeighboursIgnoreSurroundings(t *testing.T) {
	// Only the two endpoint masks matter: blocked tiles and walls next to
	// an unflagged diagonal pair never close it.
	tests := []struct {
		name  string
		setup func(b *Builder)
	}{
		{"east neighbour blocked", func(b *Builder) { b.Block(Pt(1, 0)) }},
		{"north neighbour blocked", func(b *Builder) { b.Block(Pt(0, 1)) }},
		{"both neighbours blocked", func(b *Builder) { b.Block(Pt(1, 0)).Block(Pt(0, 1)) }},
		{"north edge on east neighbour", func(b *Builder) { b.Set(Pt(1, 0), BlockNorth) }},
		{"east edge on north neighbour", func(b *Builder) { b.Set(Pt(0, 1), BlockEast) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(3, 3)
			tt.setup(b)
			g := b.Build()
			require.Zero(t, g.Flags(Pt(0, 0)))
			require.Zero(t, g.Flags(Pt(1, 1)))
			assert.True(t, g.CanTraverse(Pt(0, 0), Pt(1, 1)))
			assert.True(t, g.CanTraverse(Pt(1, 1), Pt(0, 0)))
		})
	}
}

func TestCanTraverseCornerWithoutDiagonalFlag(t *testing.T) {
	// Single blocked cardinal edge, no diagonal flag anywhere.
	g := NewBuilder(3, 3).Set(Pt(0, 0), BlockNorth).Build()

	assert.True(t, g.CanTraverse(Pt(0, 0), Pt(1, 0)), "east along the wall is open")
	assert.False(t, g.CanTraverse(Pt(0, 0), Pt(0, 1)))
	assert.False(t, g.CanTraverse(Pt(0, 0), Pt(1, 1)), "corner cut through north edge")
}

func TestBuilderAddWall(t *testing.T) {
	g := NewBuilder(2, 2).AddWall(Pt(0, 0), East).Build()

	assert.Equal(t, BlockEast, g.Flags(Pt(0, 0)))
	assert.Equal(t, BlockWest, g.Flags(Pt(1, 0)))
	assert.False(t, g.CanTraverse(Pt(0, 0), Pt(1, 0)))
	assert.False(t, g.CanTraverse(Pt(1, 0), Pt(0, 0)))
}

func TestBuilderIgnoresOutOfRange(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(Pt(5, 5), BlockObject).AddWall(Pt(1, 1), North)

	g := b.Build()
	assert.Equal(t, BlockNorth, g.Flags(Pt(1, 1)))
	assert.Equal(t, BlockFull, g.Flags(Pt(5, 5)), "out of bounds reads as full")
}

func TestBuildIsSnapshot(t *testing.T) {
	b := NewBuilder(2, 2)
	g := b.Build()
	b.Block(Pt(0, 0))

	assert.True(t, g.IsEnterable(Pt(0, 0)), "built grid must not see later builder writes")
	assert.False(t, b.Build().IsEnterable(Pt(0, 0)))
}

func TestDigest(t *testing.T) {
	a := NewBuilder(3, 3).Block(Pt(1, 1)).Build()
	b := NewBuilder(3, 3).Block(Pt(1, 1)).Build()
	c := NewBuilder(3, 3).Block(Pt(1, 2)).Build()
	d := NewBuilder(9, 1).Block(Pt(4, 0)).Build()

	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
	assert.NotEqual(t, a.Digest(), d.Digest(), "same flags, different shape")
}

func TestDirectionBetween(t *testing.T) {
	d, ok := DirectionBetween(Pt(3, 3), Pt(4, 2))
	require.True(t, ok)
	assert.Equal(t, SouthEast, d)
	assert.True(t, d.Diagonal())
	assert.Equal(t, East, d.Horizontal())
	assert.Equal(t, South, d.Vertical())
	assert.Equal(t, NorthWest, d.Opposite())

	_, ok = DirectionBetween(Pt(0, 0), Pt(0, 2))
	assert.False(t, ok)
}

func TestDistances(t *testing.T) {
	assert.Equal(t, 7, Manhattan(Pt(0, 0), Pt(3, -4)))
	assert.Equal(t, 4, Chebyshev(Pt(0, 0), Pt(3, -4)))
	assert.Equal(t, 0, Manhattan(Pt(2, 2), Pt(2, 2)))
}

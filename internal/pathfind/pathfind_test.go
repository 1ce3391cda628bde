package pathfind

import (
	"container/heap"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathtracer/internal/collision"
)

var pt = collision.Pt

func openGrid(w, h int) *collision.Grid {
	return collision.NewBuilder(w, h).Build()
}

// requireWalkable checks that path runs from start to goal in legal steps.
func requireWalkable(t *testing.T, g collision.Index, path []collision.Point, start, goal collision.Point) {
	t.Helper()
	require.NotEmpty(t, path)
	require.Equal(t, start, path[0])
	require.Equal(t, goal, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		require.True(t, g.CanTraverse(path[i-1], path[i]), "step %d: %s -> %s", i, path[i-1], path[i])
	}
}

func TestFindPathSameTile(t *testing.T) {
	g := openGrid(5, 5)
	for _, p := range []collision.Point{pt(0, 0), pt(2, 3), pt(4, 4)} {
		path, err := FindPath(p, p, g)
		require.NoError(t, err)
		assert.Equal(t, []collision.Point{p}, path)
	}
}

func TestFindPathStraightLine(t *testing.T) {
	g := openGrid(5, 5)

	path, err := FindPath(pt(0, 0), pt(3, 0), g)
	require.NoError(t, err)
	assert.Equal(t, []collision.Point{pt(0, 0), pt(1, 0), pt(2, 0), pt(3, 0)}, path)
}

func TestFindPathOpenGridOptimal(t *testing.T) {
	g := openGrid(12, 12)

	tests := []struct {
		start, goal collision.Point
		steps       int
	}{
		{pt(0, 0), pt(11, 0), 11},
		{pt(5, 11), pt(5, 2), 9},
		{pt(10, 4), pt(1, 4), 9},
		{pt(0, 0), pt(6, 6), 6},
		{pt(9, 2), pt(3, 8), 6},
	}
	for _, tt := range tests {
		t.Run(tt.start.String()+"->"+tt.goal.String(), func(t *testing.T) {
			path, err := FindPath(tt.start, tt.goal, g)
			require.NoError(t, err)
			requireWalkable(t, g, path, tt.start, tt.goal)
			assert.Equal(t, tt.steps, len(path)-1)
		})
	}
}

func TestFindPathAxisAlignedMatchesHeuristic(t *testing.T) {
	g := openGrid(8, 8)
	start := pt(3, 3)
	for _, goal := range []collision.Point{pt(3, 7), pt(3, 0), pt(0, 3), pt(7, 3)} {
		path, err := FindPath(start, goal, g)
		require.NoError(t, err)
		assert.Equal(t, Heuristic(start, goal), len(path)-1, "goal %s", goal)
	}
}

func TestFindPathWallWithGap(t *testing.T) {
	b := collision.NewBuilder(5, 5)
	for y := range 5 {
		if y != 2 {
			b.Set(pt(1, y), collision.BlockEast)
		}
	}
	g := b.Build()

	path, err := FindPath(pt(0, 0), pt(3, 0), g)
	require.NoError(t, err)
	requireWalkable(t, g, path, pt(0, 0), pt(3, 0))

	// Tiles at x=1 carry BlockEast except the gap, so every crossing
	// leaves from (1,2), cardinally or diagonally.
	crossing := -1
	for i := 1; i < len(path); i++ {
		if path[i-1].X <= 1 && path[i].X >= 2 {
			crossing = i
			break
		}
	}
	require.Positive(t, crossing, "path never crosses the wall: %v", path)
	assert.Equal(t, pt(1, 2), path[crossing-1])
	assert.Equal(t, 2, path[crossing].X)

	far, err := FindPath(pt(0, 4), pt(3, 4), g)
	require.NoError(t, err)
	requireWalkable(t, g, far, pt(0, 4), pt(3, 4))
	assert.Contains(t, far, pt(1, 2))
}

func TestFindPathGoalNotEnterable(t *testing.T) {
	g := collision.NewBuilder(5, 5).Block(pt(4, 4)).Build()

	res := New().Search(pt(0, 0), pt(4, 4), g)
	assert.False(t, res.Reachable())
	assert.Zero(t, res.Expanded, "must fail before searching")

	_, err := FindPath(pt(0, 0), pt(4, 4), g)
	assert.ErrorIs(t, err, ErrUnreachable)

	_, err = FindPath(pt(0, 0), pt(9, 9), g)
	assert.ErrorIs(t, err, ErrUnreachable, "out of bounds goal")
}

func TestFindPathGoalEnclosed(t *testing.T) {
	b := collision.NewBuilder(7, 7)
	goal := pt(3, 3)
	for _, d := range collision.Neighbours {
		b.Set(goal.Add(d), collision.BlockFull)
	}
	g := b.Build()

	res := New().Search(pt(0, 0), goal, g)
	assert.False(t, res.Reachable())
	assert.Positive(t, res.Expanded)

	_, err := FindPath(pt(0, 0), goal, g)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestFindPathClosedWall(t *testing.T) {
	b := collision.NewBuilder(6, 4)
	for y := range 4 {
		b.AddWall(pt(2, y), collision.East)
	}
	g := b.Build()

	_, err := FindPath(pt(0, 0), pt(5, 3), g)
	assert.ErrorIs(t, err, ErrUnreachable)

	_, err = FindPath(pt(5, 3), pt(0, 0), g)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestFindPathNoCornerCutting(t *testing.T) {
	// (1,1) is walled on its north and east edges.
	g, err := collision.ParseText(`
		....
		._..
		.|..
		....
	`)
	require.NoError(t, err)
	require.Equal(t, collision.BlockNorth|collision.BlockEast, g.Flags(pt(1, 1)))

	assert.False(t, g.CanTraverse(pt(1, 1), pt(2, 2)))

	path, err := FindPath(pt(1, 1), pt(2, 2), g)
	require.NoError(t, err)
	requireWalkable(t, g, path, pt(1, 1), pt(2, 2))
	assert.Greater(t, len(path), 2)
}

func TestFindPathAroundPillar(t *testing.T) {
	// A lone object adds no edge flags to its neighbours, so the route
	// slips diagonally past it.
	g := collision.NewBuilder(5, 5).Block(pt(2, 1)).Build()

	path, err := FindPath(pt(1, 1), pt(3, 1), g)
	require.NoError(t, err)
	requireWalkable(t, g, path, pt(1, 1), pt(3, 1))
	assert.Len(t, path, 3)
	assert.NotContains(t, path, pt(2, 1))
}

func TestFindPathMaze(t *testing.T) {
	g, err := collision.ParseText(`
		.......#..
		.#####.#..
		.#...#.#..
		.#.#.#.##.
		.#.#...#..
		.#.#####..
		.#........
		.#########
	`)
	require.NoError(t, err)

	start, goal := pt(2, 5), pt(9, 7)
	path, err := FindPath(start, goal, g)
	require.NoError(t, err)
	requireWalkable(t, g, path, start, goal)
}

func TestFindPathDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	b := collision.NewBuilder(collision.SceneSize, collision.SceneSize)
	walls := []collision.Direction{collision.North, collision.East, collision.South, collision.West}
	for range 1500 {
		p := pt(rng.IntN(collision.SceneSize), rng.IntN(collision.SceneSize))
		if rng.IntN(3) == 0 {
			b.Block(p)
		} else {
			b.AddWall(p, walls[rng.IntN(len(walls))])
		}
	}
	start, goal := pt(0, 0), pt(collision.SceneSize-1, collision.SceneSize-1)
	b.Set(start, 0).Set(goal, 0)
	g := b.Build()

	first := New().Search(start, goal, g)
	for range 5 {
		again := New(WithNodeHint(64)).Search(start, goal, g)
		assert.Equal(t, first, again)
	}
	if first.Reachable() {
		requireWalkable(t, g, first.Path, start, goal)
		assert.GreaterOrEqual(t, first.Discovered, first.Expanded)
	}
}

func TestFindPathNilIndex(t *testing.T) {
	_, err := FindPath(pt(0, 0), pt(1, 1), nil)
	assert.ErrorIs(t, err, ErrUnreachable)

	var g *collision.Grid
	_, err = FindPath(pt(0, 0), pt(1, 1), g)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestHeuristic(t *testing.T) {
	assert.Equal(t, 0, Heuristic(pt(2, 2), pt(2, 2)))
	assert.Equal(t, 10, Heuristic(pt(0, 0), pt(4, 6)))
	assert.Equal(t, 10, Heuristic(pt(4, 6), pt(0, 0)))
}

func TestOpenQueueOrder(t *testing.T) {
	q := &openQueue{}
	heap.Push(q, entry{node: 0, f: 5, seq: 0})
	heap.Push(q, entry{node: 1, f: 3, seq: 1})
	heap.Push(q, entry{node: 2, f: 3, seq: 2})
	heap.Push(q, entry{node: 3, f: 7, seq: 3})
	heap.Push(q, entry{node: 4, f: 3, seq: 4})

	var order []int32
	for q.Len() > 0 {
		order = append(order, heap.Pop(q).(entry).node)
	}
	assert.Equal(t, []int32{1, 2, 4, 0, 3}, order, "lowest f first, then first discovered")
}

func BenchmarkFindPathScene(b *testing.B) {
	g := openGrid(collision.SceneSize, collision.SceneSize)
	f := New(WithNodeHint(collision.SceneSize * collision.SceneSize))
	start, goal := pt(0, 0), pt(collision.SceneSize-1, collision.SceneSize/2)

	b.ResetTimer()
	for range b.N {
		if _, err := f.FindPath(start, goal, g); err != nil {
			b.Fatal(err)
		}
	}
}

// Package pathfind finds tile routes with A* over a collision index.
package pathfind

import (
	"container/heap"
	"errors"

	"github.com/udisondev/pathtracer/internal/collision"
)

// ErrUnreachable is returned when the goal cannot be entered or the
// frontier is exhausted before reaching it.
var ErrUnreachable = errors.New("destination unreachable")

// stepCost is the cost of every move, cardinal or diagonal.
// Uniform cost keeps the Manhattan heuristic paired with the edge costs.
const stepCost = 1

const defaultNodeHint = 256

// Result is the outcome of a single search.
type Result struct {
	Path       []collision.Point // nil when unreachable
	Expanded   int               // nodes moved to the closed set
	Discovered int               // distinct coordinates inserted into the open set
}

// Reachable reports whether a path was found.
func (r Result) Reachable() bool {
	return len(r.Path) > 0
}

// Finder runs A* searches. It holds no per-search state and is safe
// for concurrent use.
type Finder struct {
	nodeHint int
}

// Option configures a Finder.
type Option func(*Finder)

// WithNodeHint pre-sizes the per-search node arena.
func WithNodeHint(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.nodeHint = n
		}
	}
}

// New creates a Finder.
func New(opts ...Option) *Finder {
	f := &Finder{nodeHint: defaultNodeHint}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindPath returns the tiles from start to goal inclusive, or ErrUnreachable.
func (f *Finder) FindPath(start, goal collision.Point, idx collision.Index) ([]collision.Point, error) {
	res := f.Search(start, goal, idx)
	if !res.Reachable() {
		return nil, ErrUnreachable
	}
	return res.Path, nil
}

// FindPath runs a search with a default Finder.
func FindPath(start, goal collision.Point, idx collision.Index) ([]collision.Point, error) {
	return New().FindPath(start, goal, idx)
}

// Heuristic is the Manhattan distance between a and b.
func Heuristic(a, b collision.Point) int {
	return collision.Manhattan(a, b)
}

// node is one arena slot. parent is an arena index, -1 for the start.
type node struct {
	p      collision.Point
	parent int32
	g, h   int
	closed bool
}

func (n *node) f() int { return n.g + n.h }

// Search runs A* from start to goal.
func (f *Finder) Search(start, goal collision.Point, idx collision.Index) Result {
	if start == goal {
		return Result{Path: []collision.Point{start}}
	}
	if idx == nil || !idx.IsEnterable(goal) {
		return Result{}
	}

	s := search{
		goal:  goal,
		idx:   idx,
		nodes: make([]node, 0, f.nodeHint),
		index: make(map[collision.Point]int32, f.nodeHint),
	}
	return s.run(start)
}

// search holds the state of one run.
type search struct {
	goal  collision.Point
	idx   collision.Index
	nodes []node
	index map[collision.Point]int32 // coordinate -> arena slot
	open  openQueue
	res   Result
}

func (s *search) run(start collision.Point) Result {
	s.discover(start, -1, 0)

	for s.open.Len() > 0 {
		e := heap.Pop(&s.open).(entry)
		cur := &s.nodes[e.node]
		// Lazy deletion: skip entries superseded by a cheaper push.
		if cur.closed || cur.g != e.g {
			continue
		}
		cur.closed = true
		s.res.Expanded++

		if cur.p == s.goal {
			s.res.Path = s.reconstruct(e.node)
			return s.res
		}
		s.expand(e.node)
	}
	return s.res
}

// expand relaxes the neighbours of the node at slot i in canonical order.
func (s *search) expand(i int32) {
	from := s.nodes[i].p
	g := s.nodes[i].g + stepCost

	for _, d := range collision.Neighbours {
		next := from.Add(d)
		slot, known := s.index[next]
		if known && s.nodes[slot].closed {
			continue
		}
		if !s.idx.CanTraverse(from, next) {
			continue
		}
		if !known {
			s.discover(next, i, g)
			continue
		}
		n := &s.nodes[slot]
		if g < n.g {
			n.g = g
			n.parent = i
			s.push(slot)
		}
	}
}

// discover appends a new node to the arena and the open set.
func (s *search) discover(p collision.Point, parent int32, g int) {
	slot := int32(len(s.nodes))
	s.nodes = append(s.nodes, node{
		p:      p,
		parent: parent,
		g:      g,
		h:      Heuristic(p, s.goal),
	})
	s.index[p] = slot
	s.res.Discovered++
	s.push(slot)
}

func (s *search) push(slot int32) {
	n := &s.nodes[slot]
	heap.Push(&s.open, entry{node: slot, f: n.f(), g: n.g, seq: slot})
}

// reconstruct follows parent links back to the start and reverses them.
func (s *search) reconstruct(end int32) []collision.Point {
	path := make([]collision.Point, 0, s.nodes[end].g+1)
	for i := end; i >= 0; i = s.nodes[i].parent {
		path = append(path, s.nodes[i].p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

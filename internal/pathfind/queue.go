package pathfind

// entry is a queued reference to an arena node.
// g is the node cost at push time; a differing node cost marks the entry stale.
type entry struct {
	node int32
	f, g int
	seq  int32 // discovery order of the node, lower wins ties
}

// openQueue implements container/heap for the open set (min-heap by f, then seq).
type openQueue []entry

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q openQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *openQueue) Push(x any)   { *q = append(*q, x.(entry)) }
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

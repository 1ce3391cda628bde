package collision

// CanSee checks line of sight between two tiles using the LOS flags only.
// Movement walls do not block sight and LOS flags do not block movement.
func (g *Grid) CanSee(from, to Point) bool {
	if !g.InBounds(from) || !g.InBounds(to) {
		return false
	}
	if g.Flags(to).Has(BlockLineOfSightFull) {
		return false
	}

	it := NewLineIterator(from, to)
	it.Next() // start tile
	prev := it.Point()

	for it.Next() {
		cur := it.Point()
		if g.Flags(cur).Has(BlockLineOfSightFull) {
			return false
		}
		d, _ := DirectionBetween(prev, cur)
		if !g.seeAcross(prev, cur, d) {
			return false
		}
		prev = cur
	}
	return true
}

// seeAcross checks sight between adjacent tiles. Diagonal steps are open
// if at least one L-shaped route around the corner is clear.
func (g *Grid) seeAcross(from, to Point, d Direction) bool {
	if !d.Diagonal() {
		return !g.Flags(from).Has(d.SightFlag()) && !g.Flags(to).Has(d.Opposite().SightFlag())
	}
	h, v := d.Horizontal(), d.Vertical()
	hp, vp := from.Add(h), from.Add(v)
	viaH := !g.Flags(hp).Has(BlockLineOfSightFull) && g.seeAcross(from, hp, h) && g.seeAcross(hp, to, v)
	viaV := !g.Flags(vp).Has(BlockLineOfSightFull) && g.seeAcross(from, vp, v) && g.seeAcross(vp, to, h)
	return viaH || viaV
}

// LineIterator walks the tiles of a 2D Bresenham line, start included.
type LineIterator struct {
	cur, target  Point
	deltaX       int
	deltaY       int
	stepX, stepY int
	err          int
	started      bool
}

// NewLineIterator creates an iterator from start to end.
func NewLineIterator(start, end Point) *LineIterator {
	it := &LineIterator{
		cur:    start,
		target: end,
		deltaX: abs(end.X - start.X),
		deltaY: abs(end.Y - start.Y),
		stepX:  1,
		stepY:  1,
	}
	if end.X < start.X {
		it.stepX = -1
	}
	if end.Y < start.Y {
		it.stepY = -1
	}
	it.err = it.deltaX - it.deltaY
	return it
}

// Next advances to the next tile. Returns false once the target has been visited.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.cur == it.target {
		return false
	}

	e2 := 2 * it.err
	if e2 > -it.deltaY {
		it.err -= it.deltaY
		it.cur.X += it.stepX
	}
	if e2 < it.deltaX {
		it.err += it.deltaX
		it.cur.Y += it.stepY
	}
	return true
}

// Point returns the current tile.
func (it *LineIterator) Point() Point {
	return it.cur
}

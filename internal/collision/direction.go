package collision

// Direction is a unit step between 8-adjacent tiles.
type Direction struct {
	DX, DY int
}

// Unit directions.
var (
	SouthWest = Direction{-1, -1}
	West      = Direction{-1, 0}
	NorthWest = Direction{-1, 1}
	South     = Direction{0, -1}
	North     = Direction{0, 1}
	SouthEast = Direction{1, -1}
	East      = Direction{1, 0}
	NorthEast = Direction{1, 1}
)

// Neighbours lists the 8 directions in canonical expansion order.
// Search determinism depends on this order.
var Neighbours = [8]Direction{SouthWest, West, NorthWest, South, North, SouthEast, East, NorthEast}

// DirectionBetween returns the unit direction from a to b.
// ok is false unless a and b are 8-adjacent.
func DirectionBetween(a, b Point) (d Direction, ok bool) {
	if Chebyshev(a, b) != 1 {
		return Direction{}, false
	}
	return Direction{DX: b.X - a.X, DY: b.Y - a.Y}, true
}

// Diagonal reports whether both components are non-zero.
func (d Direction) Diagonal() bool {
	return d.DX != 0 && d.DY != 0
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// Horizontal returns the east/west component of d.
func (d Direction) Horizontal() Direction {
	return Direction{DX: d.DX}
}

// Vertical returns the north/south component of d.
func (d Direction) Vertical() Direction {
	return Direction{DY: d.DY}
}

// BlockFlag returns the movement flag that blocks leaving a tile in d.
func (d Direction) BlockFlag() Flags {
	switch d {
	case North:
		return BlockNorth
	case South:
		return BlockSouth
	case East:
		return BlockEast
	case West:
		return BlockWest
	case NorthEast:
		return BlockNorthEast
	case NorthWest:
		return BlockNorthWest
	case SouthEast:
		return BlockSouthEast
	case SouthWest:
		return BlockSouthWest
	}
	return 0
}

// SightFlag returns the line of sight flag for cardinal d (0 for diagonals).
func (d Direction) SightFlag() Flags {
	switch d {
	case North:
		return BlockLineOfSightNorth
	case South:
		return BlockLineOfSightSouth
	case East:
		return BlockLineOfSightEast
	case West:
		return BlockLineOfSightWest
	}
	return 0
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	case NorthEast:
		return "NE"
	case NorthWest:
		return "NW"
	case SouthEast:
		return "SE"
	case SouthWest:
		return "SW"
	}
	return "none"
}

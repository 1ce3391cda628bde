package collision

// Flags is a per-tile collision bitmask.
// Bit layout matches the host client's collision data.
type Flags uint32

// Directional movement flags.
// A flag on a tile means its boundary on that side cannot be crossed,
// either leaving the tile or entering it from the neighbour.
const (
	BlockNorthWest Flags = 0x1
	BlockNorth     Flags = 0x2
	BlockNorthEast Flags = 0x4
	BlockEast      Flags = 0x8
	BlockSouthEast Flags = 0x10
	BlockSouth     Flags = 0x20
	BlockSouthWest Flags = 0x40
	BlockWest      Flags = 0x80
)

// Tile occupancy flags.
const (
	BlockObject          Flags = 0x100
	BlockFloorDecoration Flags = 0x40000
	BlockFloor           Flags = 0x200000
	BlockMovementFloor   Flags = 0x1000000

	// BlockFull marks a tile that cannot be entered at all.
	BlockFull = BlockObject | BlockFloorDecoration | BlockFloor | BlockMovementFloor
)

// Line of sight flags. Never consulted for movement.
const (
	BlockLineOfSightNorth Flags = 0x400
	BlockLineOfSightEast  Flags = 0x1000
	BlockLineOfSightSouth Flags = 0x4000
	BlockLineOfSightWest  Flags = 0x10000
	BlockLineOfSightFull  Flags = 0x20000
)

// Has reports whether any bit of mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask != 0
}

package collision

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Scene file layout (.pts), at most SceneSize tiles per side and Planes planes:
//
//	magic "PTSC" | version u8 | width u16 | height u16 | planes u8 | plane blocks...
//
// Every plane block starts with a block type byte.
const (
	sceneMagic   = "PTSC"
	sceneVersion = 1
	headerSize   = 4 + 1 + 2 + 2 + 1
)

// Plane block types.
const (
	PlaneTypeFlat    byte = 0x00 // one u32 mask shared by every tile
	PlaneTypeComplex byte = 0x01 // width*height u32 masks, row major
)

// ErrBadScene is returned for malformed scene data.
var ErrBadScene = errors.New("malformed scene data")

// Scene holds the collision grids of every plane in one region.
type Scene struct {
	width, height int
	planes        []*Grid
}

// NewScene groups plane grids into a scene. All planes must share dimensions.
func NewScene(planes ...*Grid) (*Scene, error) {
	if len(planes) == 0 || len(planes) > Planes {
		return nil, fmt.Errorf("new scene: %d planes: %w", len(planes), ErrBadScene)
	}
	w, h := planes[0].Width(), planes[0].Height()
	for i, p := range planes {
		if p.Width() != w || p.Height() != h {
			return nil, fmt.Errorf("new scene: plane %d is %dx%d, want %dx%d: %w", i, p.Width(), p.Height(), w, h, ErrBadScene)
		}
	}
	return &Scene{width: w, height: h, planes: planes}, nil
}

// Plane returns the grid for plane z, or nil if the scene has no such plane.
func (s *Scene) Plane(z int) *Grid {
	if s == nil || z < 0 || z >= len(s.planes) {
		return nil
	}
	return s.planes[z]
}

// PlaneCount returns the number of planes.
func (s *Scene) PlaneCount() int {
	return len(s.planes)
}

// DecodeScene parses scene bytes.
func DecodeScene(data []byte) (*Scene, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("decode scene: header needs %d bytes, got %d: %w", headerSize, len(data), ErrBadScene)
	}
	if string(data[:4]) != sceneMagic {
		return nil, fmt.Errorf("decode scene: bad magic %q: %w", data[:4], ErrBadScene)
	}
	if data[4] != sceneVersion {
		return nil, fmt.Errorf("decode scene: unsupported version %d: %w", data[4], ErrBadScene)
	}
	width := int(binary.LittleEndian.Uint16(data[5:]))
	height := int(binary.LittleEndian.Uint16(data[7:]))
	count := int(data[9])
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("decode scene: empty dimensions %dx%d: %w", width, height, ErrBadScene)
	}
	if width > SceneSize || height > SceneSize {
		return nil, fmt.Errorf("decode scene: dimensions %dx%d exceed %d: %w", width, height, SceneSize, ErrBadScene)
	}
	if count == 0 || count > Planes {
		return nil, fmt.Errorf("decode scene: %d planes, want 1..%d: %w", count, Planes, ErrBadScene)
	}

	offset := headerSize
	planes := make([]*Grid, 0, count)
	for z := range count {
		grid, consumed, err := parsePlane(data, offset, width, height)
		if err != nil {
			return nil, fmt.Errorf("decode scene plane %d: %w", z, err)
		}
		planes = append(planes, grid)
		offset += consumed
	}
	if offset != len(data) {
		return nil, fmt.Errorf("decode scene: %d trailing bytes: %w", len(data)-offset, ErrBadScene)
	}

	return NewScene(planes...)
}

// parsePlane reads one plane block at offset.
// Returns the grid and the number of bytes consumed.
func parsePlane(data []byte, offset, width, height int) (*Grid, int, error) {
	if offset >= len(data) {
		return nil, 0, fmt.Errorf("offset %d beyond data length %d: %w", offset, len(data), ErrBadScene)
	}

	planeType := data[offset]
	offset++
	tiles := width * height

	switch planeType {
	case PlaneTypeFlat:
		if offset+4 > len(data) {
			return nil, 0, fmt.Errorf("flat plane: insufficient data at offset %d: %w", offset, ErrBadScene)
		}
		f := Flags(binary.LittleEndian.Uint32(data[offset:]))
		flags := make([]Flags, tiles)
		for i := range flags {
			flags[i] = f
		}
		return wrapGrid(width, height, flags), 1 + 4, nil

	case PlaneTypeComplex:
		need := tiles * 4
		if offset+need > len(data) {
			return nil, 0, fmt.Errorf("complex plane: insufficient data at offset %d: %w", offset, ErrBadScene)
		}
		flags := make([]Flags, tiles)
		for i := range flags {
			flags[i] = Flags(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
		return wrapGrid(width, height, flags), 1 + need, nil

	default:
		return nil, 0, fmt.Errorf("unknown plane type 0x%02X at offset %d: %w", planeType, offset-1, ErrBadScene)
	}
}

// EncodeScene serializes s. Planes with a single shared mask are written flat.
func EncodeScene(s *Scene) ([]byte, error) {
	if s == nil || len(s.planes) == 0 {
		return nil, fmt.Errorf("encode scene: no planes: %w", ErrBadScene)
	}
	if s.width > SceneSize || s.height > SceneSize {
		return nil, fmt.Errorf("encode scene: dimensions %dx%d exceed %d: %w", s.width, s.height, SceneSize, ErrBadScene)
	}

	var buf bytes.Buffer
	buf.WriteString(sceneMagic)
	buf.WriteByte(sceneVersion)
	buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(s.width)))
	buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(s.height)))
	buf.WriteByte(byte(len(s.planes)))

	for _, p := range s.planes {
		if f, flat := p.uniform(); flat {
			buf.WriteByte(PlaneTypeFlat)
			buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(f)))
			continue
		}
		buf.WriteByte(PlaneTypeComplex)
		for _, f := range p.flags {
			buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(f)))
		}
	}
	return buf.Bytes(), nil
}

// uniform reports whether every tile shares one mask.
func (g *Grid) uniform() (Flags, bool) {
	if !g.IsLoaded() {
		return 0, false
	}
	first := g.flags[0]
	for _, f := range g.flags[1:] {
		if f != first {
			return 0, false
		}
	}
	return first, true
}

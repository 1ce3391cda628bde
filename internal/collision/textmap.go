package collision

import (
	"fmt"
	"strings"
)

// Text map glyphs.
const (
	GlyphOpen      = '.'
	GlyphBlocked   = '#'
	GlyphEastWall  = '|'
	GlyphSouthWall = '_'
	GlyphCorner    = 'L' // east and south walls
)

// ParseText builds a grid from an ASCII map. The first line is the
// northmost row. Walls are applied to both tiles sharing the edge.
func ParseText(text string) (*Grid, error) {
	rows := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	for len(rows) > 0 && strings.TrimSpace(rows[0]) == "" {
		rows = rows[1:]
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse text map: no rows")
	}

	height := len(rows)
	width := len(strings.TrimSpace(rows[0]))
	b := NewBuilder(width, height)

	for i, raw := range rows {
		row := strings.TrimSpace(raw)
		if len(row) != width {
			return nil, fmt.Errorf("parse text map: row %d has %d tiles, want %d", i, len(row), width)
		}
		y := height - 1 - i
		for x, c := range []byte(row) {
			p := Pt(x, y)
			switch c {
			case GlyphOpen:
			case GlyphBlocked:
				b.Block(p)
			case GlyphEastWall:
				b.AddWall(p, East)
			case GlyphSouthWall:
				b.AddWall(p, South)
			case GlyphCorner:
				b.AddWall(p, East).AddWall(p, South)
			default:
				return nil, fmt.Errorf("parse text map: unknown glyph %q at row %d col %d", c, i, x)
			}
		}
	}
	return b.Build(), nil
}

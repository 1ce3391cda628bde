// Package overlay presents traced paths as text.
package overlay

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/udisondev/pathtracer/internal/collision"
	"github.com/udisondev/pathtracer/internal/config"
)

// Overlay glyphs. Map glyphs follow collision.ParseText.
const (
	GlyphPath        = '*'
	GlyphStart       = 'S'
	GlyphDestination = 'D'
)

// Style holds the cosmetic highlight settings.
type Style struct {
	Path        colorful.Color
	Destination colorful.Color
	BorderWidth float64
}

// DefaultStyle matches config.Default().
func DefaultStyle() Style {
	s, _ := StyleFromConfig(config.Default().Highlight)
	return s
}

// StyleFromConfig parses the configured colors.
func StyleFromConfig(h config.Highlight) (Style, error) {
	path, err := h.PathRGB()
	if err != nil {
		return Style{}, err
	}
	dest, err := h.DestinationRGB()
	if err != nil {
		return Style{}, err
	}
	return Style{Path: path, Destination: dest, BorderWidth: h.BorderWidth}, nil
}

// Text writes an ASCII overlay of the last path to w.
// Safe for concurrent use.
type Text struct {
	mu    sync.Mutex
	w     io.Writer
	grid  *collision.Grid
	style Style
	color bool
}

// NewText creates a text presenter. With color set, path and destination
// glyphs are wrapped in 24-bit ANSI escapes from style.
func NewText(w io.Writer, style Style, color bool) *Text {
	return &Text{w: w, style: style, color: color}
}

// SetGrid sets the collision grid drawn under the path.
func (t *Text) SetGrid(g *collision.Grid) {
	t.mu.Lock()
	t.grid = g
	t.mu.Unlock()
}

// ShowPath draws path over the current grid, or lists the tiles when no grid is set.
func (t *Text) ShowPath(path []collision.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.grid.IsLoaded() {
		fmt.Fprintf(t.w, "path (%d tiles): %s\n", len(path), FormatPath(path))
		return
	}
	io.WriteString(t.w, t.render(path))
}

// ClearPath reports that the highlight was dropped.
func (t *Text) ClearPath() {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.w, "path cleared\n")
}

// Notify writes a user-visible notice.
func (t *Text) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "! %s\n", msg)
}

// Render returns the ASCII overlay of path on g without colors.
func Render(g *collision.Grid, path []collision.Point) string {
	t := &Text{grid: g}
	return t.render(path)
}

func (t *Text) render(path []collision.Point) string {
	marks := make(map[collision.Point]byte, len(path))
	for i, p := range path {
		switch i {
		case 0:
			marks[p] = GlyphStart
		case len(path) - 1:
			marks[p] = GlyphDestination
		default:
			marks[p] = GlyphPath
		}
	}

	var sb strings.Builder
	for y := t.grid.Height() - 1; y >= 0; y-- {
		for x := range t.grid.Width() {
			p := collision.Pt(x, y)
			if m, ok := marks[p]; ok {
				sb.WriteString(t.paint(m))
				continue
			}
			sb.WriteByte(tileGlyph(t.grid.Flags(p)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (t *Text) paint(glyph byte) string {
	if !t.color {
		return string(glyph)
	}
	c := t.style.Path
	if glyph == GlyphDestination {
		c = t.style.Destination
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%c\x1b[0m", r, g, b, glyph)
}

func tileGlyph(f collision.Flags) byte {
	switch {
	case f.Has(collision.BlockFull):
		return collision.GlyphBlocked
	case f.Has(collision.BlockEast) && f.Has(collision.BlockSouth):
		return collision.GlyphCorner
	case f.Has(collision.BlockEast):
		return collision.GlyphEastWall
	case f.Has(collision.BlockSouth):
		return collision.GlyphSouthWall
	}
	return collision.GlyphOpen
}

// FormatPath renders points as "(x,y) (x,y) ...".
func FormatPath(path []collision.Point) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

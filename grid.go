package fontmatrix

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// PixelGrid is a monochrome glyph raster. Pixels are stored row-major in a
// single slice, row 0 is the top row. A grid is not modified once it has
// been handed out by a rasterizer.
type PixelGrid struct {
	width  int
	height int
	pix    []bool
}

// NewPixelGrid returns an all-off grid of the given size.
func NewPixelGrid(width, height int) *PixelGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelGrid{
		width:  width,
		height: height,
		pix:    make([]bool, width*height),
	}
}

// Width returns the number of columns.
func (g *PixelGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *PixelGrid) Height() int { return g.height }

// At reports whether the pixel at (x, y) is on. Out of range is off.
func (g *PixelGrid) At(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	return g.pix[y*g.width+x]
}

// set is only used while a grid is being built.
func (g *PixelGrid) set(x, y int, on bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.pix[y*g.width+x] = on
}

// Row returns row y. The slice aliases the grid and must not be modified.
func (g *PixelGrid) Row(y int) []bool {
	start := y * g.width
	return g.pix[start : start+g.width : start+g.width]
}

// RowMask returns a bitset with bit y set iff row y has an on pixel.
func (g *PixelGrid) RowMask() *bitset.BitSet {
	mask := bitset.New(uint(g.height))
	for y := 0; y < g.height; y++ {
		for _, on := range g.Row(y) {
			if on {
				mask.Set(uint(y))
				break
			}
		}
	}
	return mask
}

// CropRows returns a new grid made of the rows set in mask, in top to
// bottom order. Bits beyond the grid height are ignored.
func (g *PixelGrid) CropRows(mask *bitset.BitSet) *PixelGrid {
	rows := 0
	for y := 0; y < g.height; y++ {
		if mask.Test(uint(y)) {
			rows++
		}
	}
	out := NewPixelGrid(g.width, rows)
	dst := 0
	for y := 0; y < g.height; y++ {
		if !mask.Test(uint(y)) {
			continue
		}
		copy(out.pix[dst*g.width:(dst+1)*g.width], g.Row(y))
		dst++
	}
	return out
}

// Ink returns the number of on pixels.
func (g *PixelGrid) Ink() int {
	n := 0
	for _, on := range g.pix {
		if on {
			n++
		}
	}
	return n
}

// String draws the grid with '#' for on and '.' for off, one line per row.
func (g *PixelGrid) String() string {
	var sb strings.Builder
	sb.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		for _, on := range g.Row(y) {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParsePixelGrid builds a grid from rows drawn with '#' (on) and any other
// byte (off). Rows shorter than the longest one are padded with off pixels.
func ParsePixelGrid(rows ...string) *PixelGrid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := NewPixelGrid(width, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			g.set(x, y, r[x] == '#')
		}
	}
	return g
}

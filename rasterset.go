package fontmatrix

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// CanvasDimensions is the common canvas every glyph is drawn on.
type CanvasDimensions struct {
	Width  int
	Height int
	// Baseline is the row the pen sits on. It puts the highest ink top
	// of the alphabet on row 0.
	Baseline int
}

// MeasureCanvas returns the widest ink box of the alphabet and twice the
// tallest one. The extra height leaves room for ascenders and descenders
// that a single tight box does not show. When the alphabet's ink spans
// more rows than that, from the highest top to the lowest bottom, the
// canvas grows to the span so no glyph is clipped.
func MeasureCanvas(m GlyphMetricsProvider, alphabet string, size int) (CanvasDimensions, error) {
	var (
		c           CanvasDimensions
		tallest     int
		top, bottom int
		inked       bool
	)
	for _, r := range alphabet {
		b, err := m.Bounds(string(r), size)
		if err != nil {
			return CanvasDimensions{}, fmt.Errorf("failed to measure %q: %w", r, err)
		}
		if b.Empty() {
			continue
		}
		c.Width = max(c.Width, b.Dx())
		tallest = max(tallest, b.Dy())
		if !inked {
			top, bottom, inked = b.Min.Y, b.Max.Y, true
			continue
		}
		top = min(top, b.Min.Y)
		bottom = max(bottom, b.Max.Y)
	}
	c.Height = max(2*tallest, bottom-top)
	c.Baseline = -top
	if c.Width == 0 || c.Height == 0 {
		return CanvasDimensions{}, fmt.Errorf("%w (canvas %dx%d at size %d)", ErrNoInk, c.Width, c.Height, size)
	}
	return c, nil
}

// RasterSet holds one grid and one row mask per alphabet character, in
// alphabet order.
type RasterSet struct {
	Canvas CanvasDimensions
	Runes  []rune
	Grids  []*PixelGrid
	Masks  []*bitset.BitSet
}

// RasterizeAlphabet draws every character of alphabet onto canvas.
func RasterizeAlphabet(ras GlyphRasterizer, alphabet string, size int, canvas CanvasDimensions) (*RasterSet, error) {
	set := &RasterSet{Canvas: canvas}
	for _, r := range alphabet {
		grid, err := ras.Rasterize(r, size, canvas)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize %q: %w", r, err)
		}
		if grid.Width() != canvas.Width || grid.Height() != canvas.Height {
			return nil, fmt.Errorf("%w: rasterizer returned %dx%d for %q, want %dx%d",
				ErrResource, grid.Width(), grid.Height(), r, canvas.Width, canvas.Height)
		}
		set.Runes = append(set.Runes, r)
		set.Grids = append(set.Grids, grid)
		set.Masks = append(set.Masks, grid.RowMask())
	}
	return set, nil
}

// Crop applies the shared mask to every grid.
func (s *RasterSet) Crop(shared *bitset.BitSet) []*PixelGrid {
	out := make([]*PixelGrid, len(s.Grids))
	for i, g := range s.Grids {
		out[i] = g.CropRows(shared)
	}
	return out
}

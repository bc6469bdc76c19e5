package fontmatrix

import (
	"fmt"
	"image"
	"unicode/utf8"
)

// fakeEngine draws glyphs from ASCII art. Art row 0 is the baseline row
// of the glyph's own coordinate space, so art whose ink starts lower down
// sits lower in the line. Columns are drawn as they are. measure, when
// set, replaces the art-based ink box; blank lists runes that rasterize
// to nothing even though they have ink.
type fakeEngine struct {
	glyphs  map[rune][]string
	measure func(text string, size int) (int, int)
	blank   map[rune]bool
	name    string

	measured   int
	rasterized int
}

func (e *fakeEngine) Bounds(text string, size int) (image.Rectangle, error) {
	e.measured++
	if e.measure != nil {
		w, h := e.measure(text, size)
		return image.Rect(0, 0, w, h), nil
	}
	var box image.Rectangle
	x := 0
	for _, r := range text {
		art, ok := e.glyphs[r]
		if !ok {
			return image.Rectangle{}, fmt.Errorf("%w: no glyph %q", ErrResource, r)
		}
		b := inkBox(art)
		w := 0
		for _, row := range art {
			w = max(w, len(row))
		}
		box = box.Union(b.Add(image.Pt(x, 0)))
		x += w
	}
	return box, nil
}

func (e *fakeEngine) Measure(text string, size int) (int, int, error) {
	b, err := e.Bounds(text, size)
	if err != nil {
		return 0, 0, err
	}
	return b.Dx(), b.Dy(), nil
}

func (e *fakeEngine) Rasterize(r rune, size int, canvas CanvasDimensions) (*PixelGrid, error) {
	e.rasterized++
	art, ok := e.glyphs[r]
	if !ok {
		return nil, fmt.Errorf("%w: no glyph %q", ErrResource, r)
	}
	g := NewPixelGrid(canvas.Width, canvas.Height)
	if e.blank[r] {
		return g, nil
	}
	for y, row := range art {
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				g.set(x, y+canvas.Baseline, true)
			}
		}
	}
	return g, nil
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) Close() error { return nil }

// inkBox returns the smallest rectangle holding every '#' of art.
func inkBox(art []string) image.Rectangle {
	var box image.Rectangle
	for y, row := range art {
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				box = box.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return box
}

// linearMetrics grows height with size and width with size times the rune
// count of the text.
func linearMetrics(text string, size int) (int, int) {
	return size * utf8.RuneCountInString(text), size
}

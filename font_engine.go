package fontmatrix

import (
	"fmt"
	"image"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// FreetypeEngine measures and rasterizes TrueType fonts with
// github.com/golang/freetype. The parsed font is read-only, so the engine
// is safe for concurrent use.
type FreetypeEngine struct {
	font *truetype.Font
	cfg  engineConfig
}

var _ FontEngine = (*FreetypeEngine)(nil)

// NewFreetypeEngine parses TrueType data.
func NewFreetypeEngine(data []byte, opts ...EngineOption) (*FreetypeEngine, error) {
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse font: %v", ErrResource, err)
	}
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FreetypeEngine{font: f, cfg: cfg}, nil
}

// newFace builds a face for one measurement. Faces are not cached: each
// one reserves a mask buffer the size of the font's bounding box.
func (e *FreetypeEngine) newFace(size int) font.Face {
	return truetype.NewFace(e.font, &truetype.Options{
		Size:              float64(size),
		DPI:               e.cfg.dpi,
		Hinting:           e.cfg.hinting,
		GlyphCacheEntries: 1,
	})
}

func (e *FreetypeEngine) checkRunes(text string) error {
	for _, r := range text {
		if e.font.Index(r) == 0 {
			return fmt.Errorf("%w: font has no glyph for %q (U+%04X)", ErrResource, r, r)
		}
	}
	return nil
}

// Bounds returns the ink box of text relative to the pen on the baseline.
func (e *FreetypeEngine) Bounds(text string, size int) (image.Rectangle, error) {
	if err := e.checkRunes(text); err != nil {
		return image.Rectangle{}, err
	}
	face := e.newFace(size)
	defer face.Close()

	bounds, _ := font.BoundString(face, text)
	return pixelBounds(bounds), nil
}

// Measure returns the size of the ink box of text.
func (e *FreetypeEngine) Measure(text string, size int) (int, int, error) {
	b, err := e.Bounds(text, size)
	if err != nil {
		return 0, 0, err
	}
	return b.Dx(), b.Dy(), nil
}

// Rasterize draws r with its ink box starting at column 0 and its
// baseline on row canvas.Baseline.
func (e *FreetypeEngine) Rasterize(r rune, size int, canvas CanvasDimensions) (*PixelGrid, error) {
	bounds, err := e.Bounds(string(r), size)
	if err != nil {
		return nil, err
	}
	grid := NewPixelGrid(canvas.Width, canvas.Height)
	if canvas.Width == 0 || canvas.Height == 0 {
		return grid, nil
	}

	img := image.NewAlpha(image.Rect(0, 0, canvas.Width, canvas.Height))
	ctx := freetype.NewContext()
	ctx.SetDPI(e.cfg.dpi)
	ctx.SetFont(e.font)
	ctx.SetFontSize(float64(size))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(e.cfg.hinting)

	pt := freetype.Pt(-bounds.Min.X, canvas.Baseline)
	if _, err := ctx.DrawString(string(r), pt); err != nil {
		return nil, fmt.Errorf("%w: failed to draw %q: %v", ErrResource, r, err)
	}

	thresholdAlpha(grid, img, e.cfg.threshold)
	return grid, nil
}

// Name returns the font's full name.
func (e *FreetypeEngine) Name() string {
	return e.font.Name(truetype.NameIDFontFullName)
}

// Close is a no-op; faces are released after every call.
func (e *FreetypeEngine) Close() error {
	return nil
}

// thresholdAlpha turns coverage into on/off pixels.
func thresholdAlpha(grid *PixelGrid, img *image.Alpha, threshold uint8) {
	for y := 0; y < grid.height; y++ {
		for x := 0; x < grid.width; x++ {
			if img.AlphaAt(x, y).A > threshold {
				grid.set(x, y, true)
			}
		}
	}
}

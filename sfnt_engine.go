package fontmatrix

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// SfntEngine measures fonts through golang.org/x/image/font/opentype and
// rasterizes glyph outlines with golang.org/x/image/vector. Unlike
// FreetypeEngine it also reads CFF-flavoured OpenType fonts.
type SfntEngine struct {
	font *sfnt.Font
	cfg  engineConfig

	// mu guards buf; sfnt.Buffer is not safe for concurrent use.
	mu  sync.Mutex
	buf sfnt.Buffer
}

var _ FontEngine = (*SfntEngine)(nil)

// NewSfntEngine parses TrueType or OpenType data.
func NewSfntEngine(data []byte, opts ...EngineOption) (*SfntEngine, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse font: %v", ErrResource, err)
	}
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SfntEngine{font: f, cfg: cfg}, nil
}

func (e *SfntEngine) ppem(size int) fixed.Int26_6 {
	return fixed.Int26_6(float64(size)*e.cfg.dpi/72*64 + 0.5)
}

// glyphIndex must be called with mu held.
func (e *SfntEngine) glyphIndex(r rune) (sfnt.GlyphIndex, error) {
	idx, err := e.font.GlyphIndex(&e.buf, r)
	if err != nil {
		return 0, fmt.Errorf("%w: glyph lookup for %q: %v", ErrResource, r, err)
	}
	if idx == 0 {
		return 0, fmt.Errorf("%w: font has no glyph for %q (U+%04X)", ErrResource, r, r)
	}
	return idx, nil
}

// bounds must be called with mu held.
func (e *SfntEngine) bounds(text string, size int) (image.Rectangle, error) {
	for _, r := range text {
		if _, err := e.glyphIndex(r); err != nil {
			return image.Rectangle{}, err
		}
	}
	face, err := opentype.NewFace(e.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     e.cfg.dpi,
		Hinting: e.cfg.hinting,
	})
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("%w: failed to create face at size %d: %v", ErrResource, size, err)
	}
	defer face.Close()

	b, _ := font.BoundString(face, text)
	return pixelBounds(b), nil
}

// Bounds returns the ink box of text relative to the pen on the baseline.
func (e *SfntEngine) Bounds(text string, size int) (image.Rectangle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds(text, size)
}

// Measure returns the size of the ink box of text.
func (e *SfntEngine) Measure(text string, size int) (int, int, error) {
	b, err := e.Bounds(text, size)
	if err != nil {
		return 0, 0, err
	}
	return b.Dx(), b.Dy(), nil
}

// Rasterize draws the outline of r with its ink box starting at column 0
// and its baseline on row canvas.Baseline.
func (e *SfntEngine) Rasterize(r rune, size int, canvas CanvasDimensions) (*PixelGrid, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, err := e.glyphIndex(r)
	if err != nil {
		return nil, err
	}
	bounds, err := e.bounds(string(r), size)
	if err != nil {
		return nil, err
	}
	grid := NewPixelGrid(canvas.Width, canvas.Height)
	if canvas.Width == 0 || canvas.Height == 0 {
		return grid, nil
	}

	segments, err := e.font.LoadGlyph(&e.buf, idx, e.ppem(size), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load glyph %q: %v", ErrResource, r, err)
	}

	originX := float32(-bounds.Min.X)
	originY := float32(canvas.Baseline)
	ras := vector.NewRasterizer(canvas.Width, canvas.Height)
	ras.DrawOp = draw.Src
	// Segment coordinates are 26.6 fixed point with Y growing downwards.
	pt := func(p fixed.Point26_6) (float32, float32) {
		return originX + float32(p.X)/64, originY + float32(p.Y)/64
	}
	for i, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if i > 0 {
				ras.ClosePath()
			}
			ras.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			ras.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(seg.Args[0])
			x2, y2 := pt(seg.Args[1])
			ras.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(seg.Args[0])
			x2, y2 := pt(seg.Args[1])
			x3, y3 := pt(seg.Args[2])
			ras.CubeTo(x1, y1, x2, y2, x3, y3)
		default:
			return nil, fmt.Errorf("%w: unknown outline op %v in %q", ErrResource, seg.Op, r)
		}
	}
	ras.ClosePath()

	img := image.NewAlpha(image.Rect(0, 0, canvas.Width, canvas.Height))
	ras.Draw(img, img.Bounds(), image.Opaque, image.Point{})
	thresholdAlpha(grid, img, e.cfg.threshold)
	return grid, nil
}

// Name returns the font's full name.
func (e *SfntEngine) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	name, err := e.font.Name(&e.buf, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}

// Close is a no-op; faces are released after every call.
func (e *SfntEngine) Close() error {
	return nil
}

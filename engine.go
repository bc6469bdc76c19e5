package fontmatrix

import (
	"fmt"
	"image"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// GlyphMetricsProvider measures the ink bounding box of text at a size.
// Sizes are in pixels per em at the default 72 DPI.
type GlyphMetricsProvider interface {
	Measure(text string, size int) (width, height int, err error)
	// Bounds returns the ink box in whole pixels relative to the pen,
	// which sits on the baseline at the origin. Y grows downwards, so ink
	// above the baseline has negative Y. Text without ink yields an empty
	// rectangle.
	Bounds(text string, size int) (image.Rectangle, error)
}

// GlyphRasterizer draws a single character onto canvas. The glyph's ink
// box starts at column 0 and its baseline sits on row canvas.Baseline.
type GlyphRasterizer interface {
	Rasterize(r rune, size int, canvas CanvasDimensions) (*PixelGrid, error)
}

// FontEngine is a loaded font that can both measure and rasterize.
type FontEngine interface {
	GlyphMetricsProvider
	GlyphRasterizer
	// Name returns the font's full name, or "" when the font has none.
	Name() string
	Close() error
}

// Engine names accepted by OpenEngine.
const (
	EngineFreetype = "freetype"
	EngineSfnt     = "sfnt"
)

func engineKind(name string) (string, error) {
	switch k := strings.ToLower(name); k {
	case "", EngineFreetype:
		return EngineFreetype, nil
	case EngineSfnt, "opentype":
		return EngineSfnt, nil
	default:
		return "", configErr("unknown font engine %q", name)
	}
}

// engineConfig is shared by both engine implementations.
type engineConfig struct {
	threshold uint8
	dpi       float64
	hinting   font.Hinting
}

func defaultEngineConfig() engineConfig {
	// 72 DPI makes the point size equal to pixels per em.
	return engineConfig{
		threshold: 0,
		dpi:       72,
		hinting:   font.HintingNone,
	}
}

// EngineOption configures a font engine.
type EngineOption func(*engineConfig)

// WithThreshold sets the coverage a pixel must exceed to count as on.
func WithThreshold(t uint8) EngineOption {
	return func(c *engineConfig) {
		c.threshold = t
	}
}

// WithDPI sets the rendering resolution.
func WithDPI(dpi float64) EngineOption {
	return func(c *engineConfig) {
		if dpi > 0 {
			c.dpi = dpi
		}
	}
}

// WithHinting sets the outline hinting mode.
func WithHinting(h font.Hinting) EngineOption {
	return func(c *engineConfig) {
		c.hinting = h
	}
}

// OpenEngine loads the font at path with the named engine.
func OpenEngine(kind, path string, opts ...EngineOption) (FontEngine, error) {
	k, err := engineKind(kind)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read font: %v", ErrResource, err)
	}
	switch k {
	case EngineSfnt:
		return NewSfntEngine(data, opts...)
	default:
		return NewFreetypeEngine(data, opts...)
	}
}

// ParseHinting parses a hinting mode name: none, vertical or full.
func ParseHinting(name string) (font.Hinting, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return font.HintingNone, nil
	case "vertical":
		return font.HintingVertical, nil
	case "full":
		return font.HintingFull, nil
	}
	return font.HintingNone, configErr("unknown hinting mode %q", name)
}

// pixelBounds rounds a box from font.BoundString outwards to whole pixels.
func pixelBounds(b fixed.Rectangle26_6) image.Rectangle {
	if b.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

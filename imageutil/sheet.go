// Package imageutil draws monochrome glyph bitmaps into images for visual
// inspection.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// Bitmap is a monochrome raster.
type Bitmap interface {
	Width() int
	Height() int
	At(x, y int) bool
}

var (
	// Ink is the color of on pixels.
	Ink = color.Gray{Y: 0}
	// Paper is the color of off pixels.
	Paper = color.Gray{Y: 255}
	// Gutter separates neighbouring glyphs.
	Gutter = color.Gray{Y: 192}
)

// GlyphSheet lays the bitmaps out left to right, each pixel drawn as a
// scale x scale square and glyphs separated by a one pixel gutter column.
func GlyphSheet(glyphs []Bitmap, scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	width, height := 0, 0
	for i, g := range glyphs {
		if i > 0 {
			width++
		}
		width += g.Width()
		height = max(height, g.Height())
	}

	img := image.NewGray(image.Rect(0, 0, width*scale, height*scale))
	draw.Draw(img, img.Bounds(), &image.Uniform{Gutter}, image.Point{}, draw.Src)

	x0 := 0
	for _, g := range glyphs {
		drawBitmap(img, g, x0, scale)
		x0 += g.Width() + 1
	}
	return img
}

func drawBitmap(img *image.Gray, g Bitmap, x0, scale int) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			c := Paper
			if g.At(x, y) {
				c = Ink
			}
			rect := image.Rect((x0+x)*scale, y*scale, (x0+x+1)*scale, (y+1)*scale)
			draw.Draw(img, rect, &image.Uniform{c}, image.Point{}, draw.Src)
		}
	}
}

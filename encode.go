package fontmatrix

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/icza/bitio"
)

// RowEncoder turns pixel rows into C byte literals and a readable comment.
//
// Rows are packed MSB first, leftmost pixel in the most significant bit,
// and padded with off bits on the right up to a whole byte. A row of
// Width pixels therefore always yields (Width+7)/8 bytes.
type RowEncoder struct {
	Width     int
	Fill      string
	Empty     string
	Separator string
	Hex       bool
}

// EncodedRow is one encoded pixel row.
type EncodedRow struct {
	// Hex is the comma separated list of 0xhh literals.
	Hex string
	// Comment has one Fill or Empty string per pixel.
	Comment string
}

// NewRowEncoder returns an encoder for tables width pixels wide using the
// output settings of cfg.
func NewRowEncoder(width int, cfg Config) RowEncoder {
	return RowEncoder{
		Width:     width,
		Fill:      cfg.Fill,
		Empty:     cfg.Empty,
		Separator: cfg.Separator,
		Hex:       cfg.Hex,
	}
}

// ByteCount returns the number of bytes per encoded row.
func (e RowEncoder) ByteCount() int {
	return (e.Width + 7) / 8
}

// Encode packs row. Rows shorter than Width are padded with off pixels.
func (e RowEncoder) Encode(row []bool) (EncodedRow, error) {
	if e.Width < 1 {
		return EncodedRow{}, configErr("row width must be positive, got %d", e.Width)
	}
	if len(row) > e.Width {
		return EncodedRow{}, fmt.Errorf("%w: %d pixels, table is %d", ErrRowWidth, len(row), e.Width)
	}

	var packed bytes.Buffer
	packed.Grow(e.ByteCount())
	w := bitio.NewWriter(&packed)
	var comment strings.Builder
	for x := 0; x < e.Width; x++ {
		on := x < len(row) && row[x]
		if err := w.WriteBool(on); err != nil {
			return EncodedRow{}, fmt.Errorf("failed to pack row: %w", err)
		}
		if on {
			comment.WriteString(e.Fill)
		} else {
			comment.WriteString(e.Empty)
		}
	}
	// Close flushes the partial byte, zero padded.
	if err := w.Close(); err != nil {
		return EncodedRow{}, fmt.Errorf("failed to pack row: %w", err)
	}

	literals := make([]string, 0, packed.Len())
	for _, b := range packed.Bytes() {
		literals = append(literals, fmt.Sprintf("0x%02x", b))
	}
	return EncodedRow{
		Hex:     strings.Join(literals, ", "),
		Comment: comment.String(),
	}, nil
}

// Line formats one encoded row as it appears in the table.
func (e RowEncoder) Line(row EncodedRow) string {
	if e.Hex {
		return row.Hex + ",\t " + e.Separator + row.Comment
	}
	return e.Separator + row.Comment
}

// WriteGlyph writes every row of g followed by a blank line.
func (e RowEncoder) WriteGlyph(w io.Writer, g *PixelGrid) error {
	lines := make([]string, 0, g.Height())
	for y := 0; y < g.Height(); y++ {
		row, err := e.Encode(g.Row(y))
		if err != nil {
			return fmt.Errorf("row %d: %w", y, err)
		}
		lines = append(lines, e.Line(row))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrResource, err)
	}
	return nil
}

package fontmatrix

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
)

func TestPixelGridAccess(t *testing.T) {
	g := ParsePixelGrid(
		"#..",
		".#.",
		"..#",
	)
	if g.Width() != 3 || g.Height() != 3 {
		t.Fatalf("size = %dx%d, want 3x3", g.Width(), g.Height())
	}
	for i := 0; i < 3; i++ {
		if !g.At(i, i) {
			t.Errorf("At(%d, %d) = false, want true", i, i)
		}
	}
	if g.At(1, 0) {
		t.Error("At(1, 0) = true, want false")
	}
	if g.At(-1, 0) || g.At(0, 3) || g.At(3, 0) {
		t.Error("out of range pixels should be off")
	}
	if got := g.Ink(); got != 3 {
		t.Errorf("Ink() = %d, want 3", got)
	}
}

func TestParsePixelGridPadsShortRows(t *testing.T) {
	g := ParsePixelGrid("#", "###")
	if g.Width() != 3 {
		t.Fatalf("Width() = %d, want 3", g.Width())
	}
	if g.At(1, 0) || g.At(2, 0) {
		t.Error("padding pixels should be off")
	}
}

func TestPixelGridRowMask(t *testing.T) {
	g := ParsePixelGrid(
		"...",
		".#.",
		"...",
		"#..",
	)
	mask := g.RowMask()
	want := []bool{false, true, false, true}
	for i, w := range want {
		if mask.Test(uint(i)) != w {
			t.Errorf("mask[%d] = %v, want %v", i, mask.Test(uint(i)), w)
		}
	}
	if mask.Len() != 4 {
		t.Errorf("mask length = %d, want 4", mask.Len())
	}
}

func TestPixelGridCropRows(t *testing.T) {
	g := ParsePixelGrid(
		"#..",
		".#.",
		"..#",
		"###",
	)
	mask := bitset.New(4).Set(1).Set(3)
	crop := g.CropRows(mask)

	want := ".#.\n###\n"
	if got := crop.String(); got != want {
		t.Errorf("CropRows =\n%s\nwant\n%s", got, want)
	}
	// Source grid is untouched.
	if g.Height() != 4 || !g.At(0, 0) {
		t.Error("CropRows modified the source grid")
	}
}

func TestPixelGridString(t *testing.T) {
	g := NewPixelGrid(2, 2)
	g.set(1, 1, true)
	if got, want := g.String(), "..\n.#\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

package imageutil

// JaccardIndex returns the share of on pixels two bitmaps have in common,
// from 0 (no overlap) to 1 (identical). Bitmaps of different sizes score 0.
func JaccardIndex(a, b Bitmap) float64 {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return 0
	}

	var intersection, union int
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			p, q := a.At(x, y), b.At(x, y)
			if p && q {
				intersection++
			}
			if p || q {
				union++
			}
		}
	}

	if union == 0 {
		return 1.0 // Both empty
	}
	return float64(intersection) / float64(union)
}

// PixelDiff counts the positions where a and b differ. Pixels outside the
// smaller bitmap count as off.
func PixelDiff(a, b Bitmap) int {
	w := max(a.Width(), b.Width())
	h := max(a.Height(), b.Height())
	diff := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if at(a, x, y) != at(b, x, y) {
				diff++
			}
		}
	}
	return diff
}

func at(b Bitmap, x, y int) bool {
	if x >= b.Width() || y >= b.Height() {
		return false
	}
	return b.At(x, y)
}

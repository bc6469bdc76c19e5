package fontmatrix

import "github.com/bits-and-blooms/bitset"

// TrimHeight unions the per-glyph row masks, each dilated by one row, into
// a single mask of length height. A row survives when some glyph has ink on
// it or on a neighbouring row. The second result is the number of
// surviving rows.
func TrimHeight(masks []*bitset.BitSet, height int) (*bitset.BitSet, int) {
	shared := bitset.New(uint(max(height, 0)))
	if height <= 0 {
		return shared, 0
	}
	last := uint(height - 1)
	for _, mask := range masks {
		for i := uint(0); i <= last; i++ {
			prev := i
			if i > 0 {
				prev = i - 1
			}
			next := min(i+1, last)
			if mask.Test(i) || mask.Test(prev) || mask.Test(next) {
				shared.Set(i)
			}
		}
	}
	return shared, int(shared.Count())
}

package fontmatrix

import "fmt"

// heightPadding is the number of rows the rasterizer's one-row dilation
// adds around the text, above and below.
const heightPadding = 2

// SizeResolver finds the largest font size that keeps a probe string within
// a pixel limit.
//
// The scan starts at size 1 and stops at the first size whose measurement
// exceeds the limit. Metrics are assumed to be monotonic non-decreasing in
// size; when they are not, the result is the size found by the ascending
// scan, not necessarily the largest fitting size.
type SizeResolver struct {
	Metrics GlyphMetricsProvider
	// MaxSize bounds the scan. Zero means 1000.
	MaxSize int
}

func (r SizeResolver) maxSize() int {
	if r.MaxSize > 0 {
		return r.MaxSize
	}
	return 1000
}

// ByHeight returns the size for which probe's ink height fits limit minus
// the padding rows.
func (r SizeResolver) ByHeight(probe string, limit int) (int, error) {
	if limit < 1 {
		return 0, configErr("max height must be positive, got %d", limit)
	}
	return r.scan(probe, limit-heightPadding, func(_, h int) int { return h })
}

// ByWidth returns the size for which probe's ink width fits limit.
func (r SizeResolver) ByWidth(probe string, limit int) (int, error) {
	if limit < 1 {
		return 0, configErr("max width must be positive, got %d", limit)
	}
	return r.scan(probe, limit, func(w, _ int) int { return w })
}

func (r SizeResolver) scan(probe string, limit int, dim func(w, h int) int) (int, error) {
	if probe == "" {
		return 0, configErr("probe string is empty")
	}
	bound := r.maxSize()
	for size := 1; size <= bound; size++ {
		w, h, err := r.Metrics.Measure(probe, size)
		if err != nil {
			return 0, fmt.Errorf("failed to measure %q at size %d: %w", probe, size, err)
		}
		if dim(w, h) > limit {
			if size == 1 {
				return 1, nil
			}
			return size - 1, nil
		}
	}
	return 0, fmt.Errorf("%w (limit %d px, max size %d)", ErrSearchBound, limit, bound)
}

// Resolve picks the rendering size according to cfg.SizeMode.
func (r SizeResolver) Resolve(cfg Config) (int, error) {
	switch cfg.SizeMode {
	case SizeFixed:
		if cfg.FontSize < 1 {
			return 0, configErr("font size must be positive, got %d", cfg.FontSize)
		}
		return cfg.FontSize, nil
	case SizeByHeight:
		return r.ByHeight(cfg.Alphabet, cfg.MaxHeight)
	case SizeByWidth:
		return r.ByWidth(cfg.WidthSample, cfg.MaxWidth)
	case SizeByBoth:
		byHeight, err := r.ByHeight(cfg.Alphabet, cfg.MaxHeight)
		if err != nil {
			return 0, err
		}
		byWidth, err := r.ByWidth(cfg.WidthSample, cfg.MaxWidth)
		if err != nil {
			return 0, err
		}
		return min(byHeight, byWidth), nil
	}
	return 0, configErr("unknown size mode %v", cfg.SizeMode)
}

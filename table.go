package fontmatrix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/fontmatrix/imageutil"
)

// Banner is the first comment line of every generated table.
const Banner = "// This is a file generated by fontmatrix"

var logger = log.New(os.Stderr, "", log.LstdFlags)

// SetLogOutput redirects the package's progress and diagnostic lines.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Table is a fully rasterized and trimmed glyph table.
type Table struct {
	Runes  []rune
	Glyphs []*PixelGrid
	// Width and Height are the dimensions of every glyph in Glyphs.
	Width    int
	Height   int
	Size     int
	FontName string
}

// Build runs the size search, rasterizes the alphabet and trims the shared
// height. Nothing is written.
func Build(cfg Config, engine FontEngine) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageErr(StageConfig, err)
	}

	resolver := SizeResolver{Metrics: engine, MaxSize: cfg.MaxSearchSize}
	size, err := resolver.Resolve(cfg)
	if err != nil {
		return nil, stageErr(StageResolve, err)
	}

	canvas, err := MeasureCanvas(engine, cfg.Alphabet, size)
	if err != nil {
		return nil, stageErr(StageMeasure, err)
	}

	set, err := RasterizeAlphabet(engine, cfg.Alphabet, size, canvas)
	if err != nil {
		return nil, stageErr(StageRasterize, err)
	}

	shared, height := TrimHeight(set.Masks, canvas.Height)
	glyphs := set.Crop(shared)
	if err := checkInk(engine, set.Runes, glyphs, size); err != nil {
		return nil, stageErr(StageRasterize, err)
	}
	return &Table{
		Runes:    set.Runes,
		Glyphs:   glyphs,
		Width:    canvas.Width,
		Height:   height,
		Size:     size,
		FontName: engine.Name(),
	}, nil
}

// checkInk fails when a glyph the font measures with ink came out blank.
func checkInk(m GlyphMetricsProvider, runes []rune, glyphs []*PixelGrid, size int) error {
	for i, g := range glyphs {
		if g.Ink() > 0 {
			continue
		}
		b, err := m.Bounds(string(runes[i]), size)
		if err != nil {
			return fmt.Errorf("failed to measure %q: %w", runes[i], err)
		}
		if !b.Empty() {
			return fmt.Errorf("%w: %q has a %dx%d ink box but no pixels in the table",
				ErrNoInk, runes[i], b.Dx(), b.Dy())
		}
	}
	return nil
}

// Render writes the C array for t using the output settings of cfg.
func (t *Table) Render(w io.Writer, cfg Config) error {
	enc := NewRowEncoder(t.Width, cfg)

	if _, err := io.WriteString(w, t.header(cfg)); err != nil {
		return fmt.Errorf("%w: %v", ErrResource, err)
	}
	for i, g := range t.Glyphs {
		if cfg.Labels {
			if _, err := fmt.Fprintf(w, "// '%c' U+%04X\n", t.Runes[i], t.Runes[i]); err != nil {
				return fmt.Errorf("%w: %v", ErrResource, err)
			}
		}
		if err := enc.WriteGlyph(w, g); err != nil {
			return fmt.Errorf("glyph %q: %w", t.Runes[i], err)
		}
	}
	footer := fmt.Sprintf("};\n  /* Width = %d */\n  /* Height = %d */\n", t.Width, t.Height)
	if _, err := io.WriteString(w, footer); err != nil {
		return fmt.Errorf("%w: %v", ErrResource, err)
	}
	return nil
}

func (t *Table) header(cfg Config) string {
	var b bytes.Buffer
	b.WriteString("\n" + Banner + "\n")
	if cfg.Labels && t.FontName != "" {
		fmt.Fprintf(&b, "// Font: %s, size %d\n", t.FontName, t.Size)
	}
	b.WriteString("const uint8_t " + cfg.TableName + " []")
	if cfg.Qualifier != "" {
		b.WriteString(" " + cfg.Qualifier)
	}
	b.WriteString(" = {\n")
	return b.String()
}

// Generate builds the table and renders it into memory.
func Generate(cfg Config, engine FontEngine) ([]byte, *Table, error) {
	table, err := Build(cfg, engine)
	if err != nil {
		return nil, nil, err
	}
	logger.Printf("Pixel size H x W: %d x %d", table.Height, table.Width)

	var buf bytes.Buffer
	if err := table.Render(&buf, cfg); err != nil {
		return nil, nil, stageErr(StageEncode, err)
	}
	return buf.Bytes(), table, nil
}

// Run generates one table from the font on disk and writes cfg.Output.
// The output file is replaced only once the whole table has been built.
func Run(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return stageErr(StageConfig, err)
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return stageErr(StageConfig, err)
	}
	engine, err := OpenEngine(cfg.Engine, cfg.FontPath, opts...)
	if err != nil {
		return stageErr(StageFont, err)
	}
	defer engine.Close()

	out, table, err := Generate(cfg, engine)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(cfg.Output, out); err != nil {
		return stageErr(StageWrite, err)
	}
	logger.Printf("Wrote %d glyphs (size %d) to %s", len(table.Glyphs), table.Size, cfg.Output)

	if cfg.Preview != "" {
		if err := SavePreview(table, cfg.Preview, cfg.PreviewScale); err != nil {
			return stageErr(StagePreview, err)
		}
		logger.Printf("Wrote preview to %s", cfg.Preview)
	}
	return nil
}

// RunAll runs independent jobs in parallel. The first failure stops jobs
// that have not started yet.
func RunAll(ctx context.Context, jobs []Config) error {
	seen := make(map[string]int, len(jobs))
	for i, job := range jobs {
		out := filepath.Clean(job.Output)
		if prev, ok := seen[out]; ok {
			return stageErr(StageConfig, configErr("jobs %d and %d both write %s", prev, i, job.Output))
		}
		seen[out] = i
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := Run(job); err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Output, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// SavePreview draws the table's glyphs side by side into a PNG.
func SavePreview(t *Table, path string, scale int) error {
	bitmaps := make([]imageutil.Bitmap, len(t.Glyphs))
	for i, g := range t.Glyphs {
		bitmaps[i] = g
	}
	img := imageutil.GlyphSheet(bitmaps, scale)
	if err := imageutil.SavePNG(img, path); err != nil {
		return fmt.Errorf("%w: %v", ErrResource, err)
	}
	return nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create output: %v", ErrResource, err)
	}
	name := tmp.Name()
	cleanup := func() { os.Remove(name) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: failed to write output: %v", ErrResource, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: failed to set output mode: %v", ErrResource, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to close output: %v", ErrResource, err)
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to move output into place: %v", ErrResource, err)
	}
	return nil
}

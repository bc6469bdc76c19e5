package fontmatrix

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func init() {
	SetLogOutput(io.Discard)
}

func digitsEngine() *fakeEngine {
	return &fakeEngine{
		name: "Fake Digits",
		glyphs: map[rune][]string{
			'0': {"###", "#.#", "###"},
			'1': {".#.", ".#.", ".#."},
		},
	}
}

func digitsConfig() Config {
	cfg := DefaultConfig()
	cfg.Alphabet = "01"
	cfg.SizeMode = SizeFixed
	cfg.FontSize = 3
	return cfg
}

const digitsTable = `
// This is a file generated by fontmatrix
const uint8_t FontPy_Table [] = {
0xe0,	 // 111
0xa0,	 // 101
0xe0,	 // 111
0x00,	 // 000

0x40,	 // 010
0x40,	 // 010
0x40,	 // 010
0x00,	 // 000

};
  /* Width = 3 */
  /* Height = 4 */
`

func TestGenerateDigits(t *testing.T) {
	out, table, err := Generate(digitsConfig(), digitsEngine())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != digitsTable {
		t.Errorf("Generate =\n%s\nwant\n%s", got, digitsTable)
	}
	// Canvas is 3x6; rows 0-2 carry ink, row 3 is the dilation row.
	if table.Width != 3 || table.Height != 4 {
		t.Errorf("table is %dx%d, want 3x4", table.Width, table.Height)
	}
	for i, g := range table.Glyphs {
		if g.Width() != table.Width || g.Height() != table.Height {
			t.Errorf("glyph %d is %dx%d, want %dx%d", i, g.Width(), g.Height(), table.Width, table.Height)
		}
	}
}

func TestGenerateCommentsOnly(t *testing.T) {
	cfg := digitsConfig()
	cfg.Hex = false
	cfg.Fill = "#"
	cfg.Empty = "."
	out, _, err := Generate(cfg, digitsEngine())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "0x") {
		t.Error("hex literals written with Hex disabled")
	}
	if !strings.Contains(string(out), "\n// #.#\n") {
		t.Errorf("missing comment row in\n%s", out)
	}
}

func TestGenerateLabelsAndQualifier(t *testing.T) {
	cfg := digitsConfig()
	cfg.Labels = true
	cfg.Qualifier = "PROGMEM"
	cfg.TableName = "Digits"
	out, _, err := Generate(cfg, digitsEngine())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"// Font: Fake Digits, size 3\n",
		"const uint8_t Digits [] PROGMEM = {\n",
		"// '0' U+0030\n0xe0,",
		"// '1' U+0031\n0x40,",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	first, _, err := Generate(digitsConfig(), digitsEngine())
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := Generate(digitsConfig(), digitsEngine())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two runs produced different output")
	}
}

func TestBuildStageErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		engine *fakeEngine
		stage  string
		target error
	}{
		{
			name:   "empty alphabet",
			mutate: func(c *Config) { c.Alphabet = "" },
			engine: digitsEngine(),
			stage:  StageConfig,
			target: ErrConfig,
		},
		{
			name: "search bound",
			mutate: func(c *Config) {
				c.SizeMode = SizeByHeight
				c.MaxSearchSize = 5
			},
			engine: &fakeEngine{measure: func(string, int) (int, int) { return 0, 0 }},
			stage:  StageResolve,
			target: ErrSearchBound,
		},
		{
			name:   "missing glyph",
			mutate: func(c *Config) { c.Alphabet = "012" },
			engine: digitsEngine(),
			stage:  StageMeasure,
			target: ErrResource,
		},
		{
			name:   "no ink",
			mutate: func(c *Config) { c.Alphabet = " " },
			engine: &fakeEngine{glyphs: map[rune][]string{' ': {"..."}}},
			stage:  StageMeasure,
			target: ErrNoInk,
		},
		{
			name:   "glyph clipped to nothing",
			mutate: func(c *Config) {},
			engine: &fakeEngine{
				glyphs: digitsEngine().glyphs,
				blank:  map[rune]bool{'1': true},
			},
			stage:  StageRasterize,
			target: ErrNoInk,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := digitsConfig()
			tt.mutate(&cfg)
			_, err := Build(cfg, tt.engine)
			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StageError", err)
			}
			if se.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", se.Stage, tt.stage)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestBuildKeepsLowGlyphs(t *testing.T) {
	e := &fakeEngine{glyphs: map[rune][]string{
		'.': {"...", "...", "...", "...", "##."},
		'-': {"...", "...", "###"},
		'^': {"#.#"},
	}}
	for _, alphabet := range []string{".", "-", "-.", "^."} {
		t.Run(alphabet, func(t *testing.T) {
			cfg := digitsConfig()
			cfg.Alphabet = alphabet
			table, err := Build(cfg, e)
			if err != nil {
				t.Fatal(err)
			}
			if table.Height == 0 {
				t.Fatal("table height is 0")
			}
			for i, g := range table.Glyphs {
				if g.Ink() == 0 {
					t.Errorf("%q lost its ink", table.Runes[i])
				}
			}
		})
	}
}

func TestBuildRasterizesOncePerRune(t *testing.T) {
	e := digitsEngine()
	cfg := digitsConfig()
	cfg.Alphabet = "0110"
	table, err := Build(cfg, e)
	if err != nil {
		t.Fatal(err)
	}
	if e.rasterized != 4 || len(table.Glyphs) != 4 {
		t.Errorf("rasterized %d, %d glyphs; want 4 and 4", e.rasterized, len(table.Glyphs))
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.h")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("file = %q, want %q", got, "new")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("left %d files behind, want 1", len(entries))
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "table.h")
	err := writeFileAtomic(path, []byte("x"))
	if !errors.Is(err, ErrResource) {
		t.Fatalf("err = %v, want ErrResource", err)
	}
}

func TestRunMissingFont(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.FontPath = filepath.Join(dir, "nope.ttf")
	cfg.Output = filepath.Join(dir, "out.h")

	err := Run(cfg)
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageFont {
		t.Fatalf("err = %v, want font stage error", err)
	}
	if !errors.Is(err, ErrResource) {
		t.Errorf("err = %v, want ErrResource", err)
	}
	if _, err := os.Stat(cfg.Output); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written despite failure")
	}
}

func TestRunAllRejectsDuplicateOutputs(t *testing.T) {
	a := DefaultConfig()
	a.Output = "out/table.h"
	b := DefaultConfig()
	b.Output = "out/./table.h"
	err := RunAll(context.Background(), []Config{a, b})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestSavePreview(t *testing.T) {
	_, table, err := Generate(digitsConfig(), digitsEngine())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := SavePreview(table, path, 2); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("preview is empty")
	}
}

// Command fontmatrix converts the glyphs of a TrueType/OpenType font into a
// monochrome bitmap table for display firmware.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/wbrown/fontmatrix"
)

type options struct {
	Config string `short:"c" long:"config" env:"FONTMATRIX_CONFIG" description:"YAML configuration file (may list several jobs)"`

	Font   string `short:"f" long:"font" env:"FONTMATRIX_FONT" description:"path to the font file"`
	Output string `short:"o" long:"output" env:"FONTMATRIX_OUTPUT" description:"path of the generated table"`
	Engine string `short:"e" long:"engine" env:"FONTMATRIX_ENGINE" description:"font engine: freetype or sfnt"`

	Alphabet    string  `short:"a" long:"alphabet" env:"FONTMATRIX_ALPHABET" description:"characters to include, in table order"`
	Mode        string  `short:"m" long:"mode" env:"FONTMATRIX_MODE" description:"size selection: fixed, height, width or both"`
	Size        int     `short:"s" long:"size" env:"FONTMATRIX_SIZE" description:"font size for --mode fixed"`
	MaxHeight   int     `long:"max-height" env:"FONTMATRIX_MAX_HEIGHT" description:"maximum glyph height in pixels"`
	MaxWidth    int     `long:"max-width" env:"FONTMATRIX_MAX_WIDTH" description:"maximum width of the width sample in pixels"`
	WidthSample string  `long:"width-sample" env:"FONTMATRIX_WIDTH_SAMPLE" description:"string measured against --max-width"`
	MaxSearch   int     `long:"max-search" description:"upper bound of the font size search"`
	Threshold   int     `short:"t" long:"threshold" default:"-1" description:"coverage (0-255) a pixel must exceed to be on"`
	DPI         float64 `long:"dpi" description:"rendering resolution; at 72 sizes are pixels per em"`
	Hinting     string  `long:"hinting" env:"FONTMATRIX_HINTING" description:"outline hinting: none, vertical or full"`

	Fill      string `long:"fill" description:"comment string for on pixels"`
	Empty     string `long:"empty" description:"comment string for off pixels"`
	Separator string `long:"separator" description:"text written before each row comment"`
	NoHex     bool   `long:"no-hex" description:"write only the row comments"`
	Name      string `short:"n" long:"name" description:"name of the C array"`
	Qualifier string `long:"qualifier" description:"storage qualifier placed after [] (e.g. PROGMEM)"`
	Labels    bool   `short:"l" long:"labels" description:"label every glyph and the font in comments"`

	Preview      string `short:"p" long:"preview" description:"write a PNG preview of the glyphs"`
	PreviewScale int    `long:"preview-scale" description:"pixel size of the preview"`

	Quiet bool `short:"q" long:"quiet" description:"do not print progress"`

	// given reports whether the option with this long name was passed,
	// even when its value is empty.
	given func(long string) bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := loadEnvFile(".env"); err != nil {
		log.Printf("Error loading .env: %v", err)
		return 1
	}

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}
	opts.given = func(long string) bool {
		opt := parser.FindOptionByLongName(long)
		return opt != nil && opt.IsSet()
	}
	if len(rest) > 0 {
		log.Printf("Error: unexpected arguments %q", rest)
		return 2
	}

	jobs, err := opts.jobs()
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	if opts.Quiet {
		fontmatrix.SetLogOutput(io.Discard)
	}

	if err := fontmatrix.RunAll(context.Background(), jobs); err != nil {
		log.Printf("Failed to generate table: %v", err)
		return 1
	}
	return 0
}

// loadEnvFile loads FONTMATRIX_* defaults from path when it exists.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// jobs builds the job list: defaults, then the config file, then flags.
func (o *options) jobs() ([]fontmatrix.Config, error) {
	base := fontmatrix.DefaultConfig()
	jobs := []fontmatrix.Config{base}
	if o.Config != "" {
		loaded, err := fontmatrix.LoadConfigFile(o.Config, base)
		if err != nil {
			return nil, err
		}
		jobs = loaded
	}
	for i := range jobs {
		if err := o.apply(&jobs[i]); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// apply overrides cfg with every option that was given.
func (o *options) apply(cfg *fontmatrix.Config) error {
	setString(&cfg.FontPath, o.Font)
	setString(&cfg.Output, o.Output)
	setString(&cfg.Engine, o.Engine)
	setString(&cfg.Alphabet, o.Alphabet)
	setString(&cfg.WidthSample, o.WidthSample)
	setString(&cfg.Fill, o.Fill)
	setString(&cfg.Empty, o.Empty)
	setString(&cfg.TableName, o.Name)
	setString(&cfg.Hinting, o.Hinting)
	o.setClearable(&cfg.Separator, "separator", o.Separator)
	o.setClearable(&cfg.Qualifier, "qualifier", o.Qualifier)
	setString(&cfg.Preview, o.Preview)

	setInt(&cfg.FontSize, o.Size)
	setInt(&cfg.MaxHeight, o.MaxHeight)
	setInt(&cfg.MaxWidth, o.MaxWidth)
	setInt(&cfg.MaxSearchSize, o.MaxSearch)
	setInt(&cfg.PreviewScale, o.PreviewScale)

	if o.DPI != 0 {
		cfg.DPI = o.DPI
	}
	if o.Mode != "" {
		mode, err := fontmatrix.ParseSizeMode(o.Mode)
		if err != nil {
			return err
		}
		cfg.SizeMode = mode
	}
	if o.Threshold >= 0 {
		if o.Threshold > 255 {
			return fmt.Errorf("%w: threshold must be in 0-255, got %d", fontmatrix.ErrConfig, o.Threshold)
		}
		cfg.Threshold = uint8(o.Threshold)
	}
	if o.NoHex {
		cfg.Hex = false
	}
	if o.Labels {
		cfg.Labels = true
	}
	return nil
}

// setClearable is setString for options where an explicit empty value
// clears the setting.
func (o *options) setClearable(dst *string, long, v string) {
	if v != "" || (o.given != nil && o.given(long)) {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

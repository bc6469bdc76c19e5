package fontmatrix

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// SizeMode selects how the rendering size is chosen.
type SizeMode int

const (
	// SizeFixed uses Config.FontSize as is.
	SizeFixed SizeMode = iota
	// SizeByHeight fits the alphabet into Config.MaxHeight pixels.
	SizeByHeight
	// SizeByWidth fits Config.WidthSample into Config.MaxWidth pixels.
	SizeByWidth
	// SizeByBoth takes the smaller of the height and width sizes.
	SizeByBoth
)

var sizeModeNames = map[string]SizeMode{
	"fixed":  SizeFixed,
	"height": SizeByHeight,
	"width":  SizeByWidth,
	"both":   SizeByBoth,

	// long names kept for older configuration files
	"font_size":           SizeFixed,
	"letter_max_px_width": SizeByHeight,
	"str_max_px_width":    SizeByWidth,
	"max_px_both":         SizeByBoth,
}

func (m SizeMode) String() string {
	switch m {
	case SizeFixed:
		return "fixed"
	case SizeByHeight:
		return "height"
	case SizeByWidth:
		return "width"
	case SizeByBoth:
		return "both"
	}
	return fmt.Sprintf("SizeMode(%d)", int(m))
}

// ParseSizeMode parses a size mode name.
func ParseSizeMode(s string) (SizeMode, error) {
	m, ok := sizeModeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, configErr("unknown size mode %q", s)
	}
	return m, nil
}

// UnmarshalText lets SizeMode be read from YAML scalars.
func (m *SizeMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSizeMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText writes the canonical mode name.
func (m SizeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Config holds everything one table generation needs.
type Config struct {
	FontPath string `yaml:"font"`
	Output   string `yaml:"output"`
	Engine   string `yaml:"engine"`

	// Alphabet lists the characters in table order. Duplicates are kept.
	Alphabet string `yaml:"alphabet"`

	SizeMode    SizeMode `yaml:"size_mode"`
	FontSize    int      `yaml:"font_size"`
	MaxHeight   int      `yaml:"max_height"`
	MaxWidth    int      `yaml:"max_width"`
	WidthSample string   `yaml:"width_sample"`
	// MaxSearchSize bounds the ascending size scan.
	MaxSearchSize int `yaml:"max_search_size"`

	// Threshold is the coverage (0-255) a pixel must exceed to be on.
	Threshold uint8 `yaml:"threshold"`

	// DPI scales sizes; at 72 a size is in pixels per em.
	DPI     float64 `yaml:"dpi"`
	Hinting string  `yaml:"hinting"`

	Fill      string `yaml:"fill"`
	Empty     string `yaml:"empty"`
	Separator string `yaml:"separator"`
	Hex       bool   `yaml:"hex"`
	TableName string `yaml:"table_name"`
	Qualifier string `yaml:"qualifier"`
	Labels    bool   `yaml:"labels"`

	Preview      string `yaml:"preview"`
	PreviewScale int    `yaml:"preview_scale"`
}

// DefaultConfig returns the configuration the generator ships with.
func DefaultConfig() Config {
	return Config{
		FontPath:      "calibri.ttf",
		Output:        "output_file.cpp",
		Engine:        EngineFreetype,
		Alphabet:      "0123456789.C° ",
		SizeMode:      SizeByBoth,
		FontSize:      60,
		MaxHeight:     40,
		MaxWidth:      360,
		WidthSample:   "23.45°C",
		MaxSearchSize: 1000,
		DPI:           72,
		Hinting:       "none",
		Fill:          "1",
		Empty:         "0",
		Separator:     "// ",
		Hex:           true,
		TableName:     "FontPy_Table",
		PreviewScale:  4,
	}
}

// Validate checks the configuration before any font work is done.
func (c Config) Validate() error {
	if c.Alphabet == "" {
		return configErr("alphabet is empty")
	}
	if !utf8.ValidString(c.Alphabet) {
		return configErr("alphabet is not valid UTF-8")
	}
	if c.MaxSearchSize < 1 {
		return configErr("max search size must be positive, got %d", c.MaxSearchSize)
	}
	switch c.SizeMode {
	case SizeFixed:
		if c.FontSize < 1 {
			return configErr("font size must be positive, got %d", c.FontSize)
		}
	case SizeByHeight:
		if err := c.checkHeight(); err != nil {
			return err
		}
	case SizeByWidth:
		if err := c.checkWidth(); err != nil {
			return err
		}
	case SizeByBoth:
		if err := c.checkHeight(); err != nil {
			return err
		}
		if err := c.checkWidth(); err != nil {
			return err
		}
	default:
		return configErr("unknown size mode %v", c.SizeMode)
	}
	if c.Fill == "" || c.Empty == "" {
		return configErr("fill and empty strings must not be empty")
	}
	if c.Fill == c.Empty {
		return configErr("fill and empty strings must differ, both are %q", c.Fill)
	}
	if c.TableName == "" {
		return configErr("table name is empty")
	}
	if _, err := engineKind(c.Engine); err != nil {
		return err
	}
	if c.DPI <= 0 {
		return configErr("dpi must be positive, got %v", c.DPI)
	}
	if _, err := ParseHinting(c.Hinting); err != nil {
		return err
	}
	if c.Preview != "" && c.PreviewScale < 1 {
		return configErr("preview scale must be positive, got %d", c.PreviewScale)
	}
	return nil
}

// EngineOptions returns the engine settings carried by c.
func (c Config) EngineOptions() ([]EngineOption, error) {
	hinting, err := ParseHinting(c.Hinting)
	if err != nil {
		return nil, err
	}
	return []EngineOption{
		WithThreshold(c.Threshold),
		WithDPI(c.DPI),
		WithHinting(hinting),
	}, nil
}

func (c Config) checkHeight() error {
	if c.MaxHeight < 1 {
		return configErr("max height must be positive, got %d", c.MaxHeight)
	}
	return nil
}

func (c Config) checkWidth() error {
	if c.MaxWidth < 1 {
		return configErr("max width must be positive, got %d", c.MaxWidth)
	}
	if c.WidthSample == "" {
		return configErr("width sample is empty")
	}
	return nil
}

// configFile is the on-disk layout: one job at the top level, and
// optional jobs that start from the top level values.
type configFile struct {
	Config `yaml:",inline"`
	Jobs   []yaml.Node `yaml:"jobs"`
}

// LoadConfigFile reads a YAML configuration on top of base. A file without
// a jobs list yields exactly one config.
func LoadConfigFile(path string, base Config) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config: %v", ErrConfig, err)
	}
	return ParseConfig(data, base)
}

// ParseConfig is LoadConfigFile on an in-memory document.
func ParseConfig(data []byte, base Config) ([]Config, error) {
	file := configFile{Config: base}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfig, err)
	}
	if len(file.Jobs) == 0 {
		return []Config{file.Config}, nil
	}
	jobs := make([]Config, 0, len(file.Jobs))
	for i := range file.Jobs {
		job := file.Config
		if err := file.Jobs[i].Decode(&job); err != nil {
			return nil, fmt.Errorf("%w: failed to parse job %d: %v", ErrConfig, i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

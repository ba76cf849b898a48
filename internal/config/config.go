package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	InputPath        string      `yaml:"input"`
	OutputDir        string      `yaml:"output_dir"`
	OutputFormat     string      `yaml:"output_format"` // xlsx, csv
	DPI              int         `yaml:"dpi"`
	StartPage        int         `yaml:"start_page"` // 1-based
	Workers          int         `yaml:"workers"`
	Detector         string      `yaml:"detector"`
	Normalizer       string      `yaml:"normalizer"` // refined, basic
	LexiconPath      string      `yaml:"lexicon"`
	ScanAllNameLines bool        `yaml:"scan_all_name_lines"`
	OCR              OCR         `yaml:"ocr"`
	Calibration      Calibration `yaml:"calibration"`
	ShowStats        bool        `yaml:"stats"`
	DetectOnly       bool        `yaml:"detect_only"` // write layout files, skip OCR
	Layouts          []string    `yaml:"layouts"`     // layout files replacing detection
	BuildVersion     string      `yaml:"-"`
}

type OCR struct {
	Engine         string        `yaml:"engine"` // tesseract, cli
	Binary         string        `yaml:"binary"` // used by the cli engine
	HouseLanguages []string      `yaml:"house_languages"`
	BlockLanguages []string      `yaml:"block_languages"`
	HouseWhitelist string        `yaml:"house_whitelist"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Calibration holds the layout constants of the roll template. Pixel values
// are given at ReferenceDPI and scaled with Scaled.
type Calibration struct {
	ReferenceDPI   int     `yaml:"reference_dpi"`
	MinWidth       int     `yaml:"min_width"`
	MinHeight      int     `yaml:"min_height"`
	ThresholdBlock int     `yaml:"threshold_block"`
	ThresholdC     int     `yaml:"threshold_c"`
	HouseX0        float64 `yaml:"house_x0"`
	HouseX1        float64 `yaml:"house_x1"`
	HouseY0        float64 `yaml:"house_y0"`
	HouseY1        float64 `yaml:"house_y1"`
	HouseThreshold uint8   `yaml:"house_threshold"`
	HouseScale     float64 `yaml:"house_scale"`
}

func Default() *Config {
	return &Config{
		InputPath:    "input/pdf",
		OutputDir:    "output",
		OutputFormat: "xlsx",
		DPI:          300,
		StartPage:    3,
		Workers:      1,
		Detector:     "adaptive",
		Normalizer:   "refined",
		OCR: OCR{
			Engine:         "tesseract",
			Binary:         "tesseract",
			HouseLanguages: []string{"eng"},
			BlockLanguages: []string{"mal", "eng"},
			HouseWhitelist: "0123456789",
			Timeout:        30 * time.Second,
		},
		Calibration: DefaultCalibration(),
	}
}

func DefaultCalibration() Calibration {
	return Calibration{
		ReferenceDPI:   300,
		MinWidth:       140,
		MinHeight:      95,
		ThresholdBlock: 35,
		ThresholdC:     15,
		HouseX0:        0.02,
		HouseX1:        0.25,
		HouseY0:        0.02,
		HouseY1:        0.25,
		HouseThreshold: 150,
		HouseScale:     1,
	}
}

// Scaled returns the calibration with pixel values converted to dpi.
// The threshold block size stays odd.
func (c Calibration) Scaled(dpi int) Calibration {
	if dpi <= 0 || c.ReferenceDPI <= 0 || dpi == c.ReferenceDPI {
		return c
	}
	scale := func(v int) int {
		return (v*dpi + c.ReferenceDPI/2) / c.ReferenceDPI
	}
	out := c
	out.MinWidth = scale(c.MinWidth)
	out.MinHeight = scale(c.MinHeight)
	out.ThresholdBlock = scale(c.ThresholdBlock)
	if out.ThresholdBlock%2 == 0 {
		out.ThresholdBlock++
	}
	if out.ThresholdBlock < 3 {
		out.ThresholdBlock = 3
	}
	out.ReferenceDPI = dpi
	return out
}

// Load merges the YAML file at path into cfg. Keys missing from the file keep
// their current values.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

var ErrInvalid = errors.New("invalid config")

func (c *Config) Validate() error {
	switch {
	case c.InputPath == "":
		return fmt.Errorf("%w: empty input path", ErrInvalid)
	case c.DPI <= 0:
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalid, c.DPI)
	case c.StartPage < 1:
		return fmt.Errorf("%w: start page is 1-based, got %d", ErrInvalid, c.StartPage)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	case c.OutputFormat != "xlsx" && c.OutputFormat != "csv":
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.OutputFormat)
	}
	cal := c.Calibration
	if cal.HouseX0 < 0 || cal.HouseX1 > 1 || cal.HouseY0 < 0 || cal.HouseY1 > 1 {
		return fmt.Errorf("%w: house crop fractions must be within [0,1]", ErrInvalid)
	}
	if cal.ThresholdBlock < 3 || cal.ThresholdBlock%2 == 0 {
		return fmt.Errorf("%w: threshold block must be odd and >= 3, got %d", ErrInvalid, cal.ThresholdBlock)
	}
	return nil
}

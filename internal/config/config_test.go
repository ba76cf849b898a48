package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCalibrationScaled(t *testing.T) {
	base := DefaultCalibration()

	if got := base.Scaled(300); got != base {
		t.Errorf("Scaled(300) changed calibration: %+v", got)
	}

	tests := []struct {
		dpi       int
		minW      int
		minH      int
		block     int
		wantOddOK bool
	}{
		{150, 70, 48, 19, true},
		{600, 280, 190, 71, true},
		{200, 93, 63, 23, true},
	}
	for _, tt := range tests {
		got := base.Scaled(tt.dpi)
		if got.MinWidth != tt.minW || got.MinHeight != tt.minH {
			t.Errorf("Scaled(%d) = %dx%d, want %dx%d", tt.dpi, got.MinWidth, got.MinHeight, tt.minW, tt.minH)
		}
		if got.ThresholdBlock != tt.block {
			t.Errorf("Scaled(%d) block = %d, want %d", tt.dpi, got.ThresholdBlock, tt.block)
		}
		if got.ThresholdBlock%2 == 0 {
			t.Errorf("Scaled(%d) block %d is even", tt.dpi, got.ThresholdBlock)
		}
		if got.HouseX1 != base.HouseX1 || got.ThresholdC != base.ThresholdC {
			t.Errorf("Scaled(%d) changed resolution independent values", tt.dpi)
		}
	}
}

func TestLoadMergesIntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voterroll.yaml")
	data := []byte(`
dpi: 200
start_page: 1
ocr:
  engine: cli
  timeout: 5s
calibration:
  house_threshold: 130
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DPI != 200 || cfg.StartPage != 1 {
		t.Errorf("dpi/start page not loaded: %d/%d", cfg.DPI, cfg.StartPage)
	}
	if cfg.OCR.Engine != "cli" || cfg.OCR.Timeout != 5*time.Second {
		t.Errorf("ocr section not loaded: %+v", cfg.OCR)
	}
	if cfg.OCR.Binary != "tesseract" {
		t.Errorf("ocr binary default lost: %q", cfg.OCR.Binary)
	}
	if cfg.Calibration.HouseThreshold != 130 {
		t.Errorf("house threshold = %d", cfg.Calibration.HouseThreshold)
	}
	if cfg.Calibration.MinWidth != 140 {
		t.Errorf("min width default lost: %d", cfg.Calibration.MinWidth)
	}
	if cfg.OutputFormat != "xlsx" {
		t.Errorf("output format default lost: %q", cfg.OutputFormat)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero start page", func(c *Config) { c.StartPage = 0 }, false},
		{"negative dpi", func(c *Config) { c.DPI = -1 }, false},
		{"bad format", func(c *Config) { c.OutputFormat = "pdf" }, false},
		{"even block", func(c *Config) { c.Calibration.ThresholdBlock = 34 }, false},
		{"crop outside block", func(c *Config) { c.Calibration.HouseX1 = 1.5 }, false},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error %v is not ErrInvalid", err)
				}
			}
		})
	}
}

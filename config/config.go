// Package config holds the per-run session settings shared by the scan and
// crop stages. A Config is created once per run and passed to each stage.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDPI          = 150
	DefaultLanguage     = "spa"
	DefaultKeyPhrase    = "copia de la figura compleja de benson"
	DefaultSplit        = 0.45
	DefaultDisplayWidth = 500
	DefaultRasterizer   = "fitz"
	DefaultUIAddr       = "127.0.0.1:8765"

	LogFileName = "results_log.txt"
	DetectedDir = "detected_pages"
	CropDir     = "confirmed_crops"
	DetectedTag = "_benson_page_ocr"
	CropTag     = "_copia_paciente_gui"
	ImageExt    = ".png"
	InputPDFExt = ".pdf"
)

// ErrCancelled reports that the user declined to pick a folder.
var ErrCancelled = errors.New("folder selection cancelled")

// Config is the session object threaded through every stage of a run.
type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	DPI       int    `yaml:"dpi"`
	Language  string `yaml:"language"`
	KeyPhrase string `yaml:"key_phrase"`
	// NormalizeWhitespace collapses whitespace runs in OCR output before
	// matching, for scans where the phrase wraps across lines.
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`
	// TesseractPSM overrides the Tesseract page segmentation mode; zero keeps
	// the engine default.
	TesseractPSM int `yaml:"tesseract_psm"`

	Rasterizer string `yaml:"rasterizer"`

	DefaultSplit float64 `yaml:"default_split"`
	DisplayWidth int     `yaml:"display_width"`
	UIAddr       string  `yaml:"ui_addr"`

	// Strict stops the batch on the first document failure.
	Strict bool `yaml:"strict"`
}

// Default returns the fixed settings of the tool.
func Default() Config {
	return Config{
		DPI:          DefaultDPI,
		Language:     DefaultLanguage,
		KeyPhrase:    DefaultKeyPhrase,
		Rasterizer:   DefaultRasterizer,
		DefaultSplit: DefaultSplit,
		DisplayWidth: DefaultDisplayWidth,
		UIAddr:       DefaultUIAddr,
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that later stages rely on.
func (c Config) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if strings.TrimSpace(c.Language) == "" {
		return errors.New("language is required")
	}
	if strings.TrimSpace(c.KeyPhrase) == "" {
		return errors.New("key phrase is required")
	}
	if c.TesseractPSM < 0 || c.TesseractPSM > 13 {
		return fmt.Errorf("tesseract psm must be in [0,13], got %d", c.TesseractPSM)
	}
	if c.DefaultSplit < 0 || c.DefaultSplit >= 1 {
		return fmt.Errorf("default split must be in [0,1), got %v", c.DefaultSplit)
	}
	if c.DisplayWidth <= 0 {
		return fmt.Errorf("display width must be positive, got %d", c.DisplayWidth)
	}
	switch c.Rasterizer {
	case "fitz", "pdftoppm":
	default:
		return fmt.Errorf("unknown rasterizer %q", c.Rasterizer)
	}
	return nil
}

// Phrase returns the key phrase in the form matched against OCR text.
func (c Config) Phrase() string {
	return strings.ToLower(c.KeyPhrase)
}

func (c Config) LogPath() string      { return filepath.Join(c.OutputDir, LogFileName) }
func (c Config) DetectedPath() string { return filepath.Join(c.OutputDir, DetectedDir) }
func (c Config) CropPath() string     { return filepath.Join(c.OutputDir, CropDir) }

// Package extract persists the successor page found by the scanner.
package extract

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/wudi/bensonscan/config"
	"github.com/wudi/bensonscan/scan"
)

// Status is the per-document outcome recorded in the run log.
type Status int

const (
	NotFound Status = iota
	Detected
	Failed
)

func (s Status) String() string {
	switch s {
	case Detected:
		return "detected"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Outcome describes what happened to one document. Page is 1-based.
type Outcome struct {
	Document string
	Status   Status
	Page     int
	File     string
	Path     string
	Err      error
}

// Extractor writes detected pages below dir.
type Extractor struct {
	dir string
}

// New returns an extractor writing to dir, which is created on first save.
func New(dir string) *Extractor {
	return &Extractor{dir: dir}
}

// DetectedName derives the artifact name from a document file name.
func DetectedName(document string) string {
	base := filepath.Base(document)
	return strings.TrimSuffix(base, filepath.Ext(base)) + config.DetectedTag + config.ImageExt
}

// Extract saves page m.Index of pages as a PNG when the match has a successor
// within bounds. Otherwise nothing is written and the outcome is NotFound.
func (e *Extractor) Extract(document string, m scan.Match, pages scan.PageSource) (Outcome, error) {
	out := Outcome{Document: filepath.Base(document), Status: NotFound}
	if !m.Found || m.Index < 0 || m.Index >= pages.NumPages() {
		return out, nil
	}
	img, err := pages.Page(m.Index)
	if err != nil {
		return out, fmt.Errorf("rasterize page %d: %w", m.Index, err)
	}
	name := DetectedName(document)
	path := filepath.Join(e.dir, name)
	if err := save(path, img); err != nil {
		return out, err
	}
	out.Status = Detected
	out.Page = m.Index + 1
	out.File = name
	out.Path = path
	return out, nil
}

func save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Package scan finds the page that follows the first OCR match of the key
// phrase in a rendered document.
package scan

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/wudi/bensonscan/config"
	"github.com/wudi/bensonscan/observability"
	"github.com/wudi/bensonscan/ocr"
)

// PageSource is the subset of raster.Document the scanner reads.
type PageSource interface {
	NumPages() int
	Page(index int) (image.Image, error)
}

// Match is the outcome of a scan. Index is the successor page to extract and
// MatchedOn the page whose text contained the phrase; both are zero-based and
// only meaningful when Found is set.
type Match struct {
	Found     bool
	Index     int
	MatchedOn int
}

// NoMatch is the zero Match.
var NoMatch = Match{}

// Scanner runs OCR page by page and stops at the first match.
type Scanner struct {
	engine    ocr.Engine
	phrase    string
	language  string
	dpi       int
	psm       int
	normalize bool
	logger    observability.Logger
}

// New builds a scanner for the phrase, language and resolution in cfg.
func New(engine ocr.Engine, cfg config.Config) *Scanner {
	return &Scanner{
		engine:    engine,
		phrase:    normalize(cfg.Phrase(), cfg.NormalizeWhitespace),
		language:  cfg.Language,
		dpi:       cfg.DPI,
		psm:       cfg.TesseractPSM,
		normalize: cfg.NormalizeWhitespace,
		logger:    observability.NopLogger{},
	}
}

// WithLogger sets the logger used for per-page debug output.
func (s *Scanner) WithLogger(l observability.Logger) *Scanner {
	if l != nil {
		s.logger = l
	}
	return s
}

// Matches reports whether recognized text contains the key phrase, ignoring
// case.
func (s *Scanner) Matches(text string) bool {
	return strings.Contains(normalize(strings.ToLower(text), s.normalize), s.phrase)
}

// Scan examines every page except the last one, since a match there has no
// successor to extract.
func (s *Scanner) Scan(ctx context.Context, pages PageSource) (Match, error) {
	last := pages.NumPages() - 1
	for i := 0; i < last; i++ {
		if err := ctx.Err(); err != nil {
			return NoMatch, err
		}
		img, err := pages.Page(i)
		if err != nil {
			return NoMatch, fmt.Errorf("rasterize page %d: %w", i, err)
		}
		res, err := ocr.RecognizeImage(ctx, s.engine, img, i,
			ocr.WithLanguages(s.language), ocr.WithDPI(s.dpi), ocr.WithTesseractPSM(s.psm))
		if err != nil {
			return NoMatch, err
		}
		s.logger.Debug("page recognized",
			observability.Int("page", i),
			observability.Int("chars", len(res.PlainText)),
			observability.Float64("confidence", res.Confidence))
		if s.Matches(res.PlainText) {
			return Match{Found: true, Index: i + 1, MatchedOn: i}, nil
		}
	}
	return NoMatch, nil
}

func normalize(text string, collapse bool) string {
	if !collapse {
		return text
	}
	return strings.Join(strings.Fields(text), " ")
}

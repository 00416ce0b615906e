package scan

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/wudi/bensonscan/config"
	"github.com/wudi/bensonscan/ocr"
	"github.com/wudi/bensonscan/ocr/ocrtest"
	"github.com/wudi/bensonscan/raster"
)

func blankPages(n int) raster.Memory {
	pages := make(raster.Memory, n)
	for i := range pages {
		pages[i] = image.NewGray(image.Rect(0, 0, 2, 2+i))
	}
	return pages
}

func TestScan(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		text      map[int]string
		want      Match
		wantCalls []int
	}{
		{
			name:      "match on middle page",
			pages:     5,
			text:      map[int]string{2: "COPIA DE LA FIGURA COMPLEJA DE BENSON"},
			want:      Match{Found: true, Index: 3, MatchedOn: 2},
			wantCalls: []int{0, 1, 2},
		},
		{
			name:      "substring in longer sentence",
			pages:     3,
			text:      map[int]string{0: "Instrucciones: realice la Copia de la Figura Compleja de Benson ahora."},
			want:      Match{Found: true, Index: 1, MatchedOn: 0},
			wantCalls: []int{0},
		},
		{
			name:      "first match wins",
			pages:     6,
			text:      map[int]string{1: "copia de la figura compleja de benson", 3: "copia de la figura compleja de benson"},
			want:      Match{Found: true, Index: 2, MatchedOn: 1},
			wantCalls: []int{0, 1},
		},
		{
			name:      "phrase only on last page",
			pages:     4,
			text:      map[int]string{3: "copia de la figura compleja de benson"},
			want:      NoMatch,
			wantCalls: []int{0, 1, 2},
		},
		{
			name:      "no match",
			pages:     3,
			text:      map[int]string{0: "figura compleja", 1: "copia de la figura"},
			want:      NoMatch,
			wantCalls: []int{0, 1},
		},
		{
			name:      "single page is never scanned",
			pages:     1,
			text:      map[int]string{0: "copia de la figura compleja de benson"},
			want:      NoMatch,
			wantCalls: []int{},
		},
		{
			name:      "empty document",
			pages:     0,
			want:      NoMatch,
			wantCalls: []int{},
		},
		{
			name:      "line break inside phrase does not match",
			pages:     3,
			text:      map[int]string{0: "copia de la figura\ncompleja de benson"},
			want:      NoMatch,
			wantCalls: []int{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &ocrtest.Script{Text: tt.text}
			got, err := New(engine, config.Default()).Scan(context.Background(), blankPages(tt.pages))
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Scan() = %+v, want %+v", got, tt.want)
			}
			if calls := engine.Pages(); !reflect.DeepEqual(calls, tt.wantCalls) && !(len(calls) == 0 && len(tt.wantCalls) == 0) {
				t.Fatalf("OCR pages = %v, want %v", calls, tt.wantCalls)
			}
		})
	}
}

func TestScanPassesLanguageAndDPI(t *testing.T) {
	engine := &ocrtest.Script{}
	if _, err := New(engine, config.Default()).Scan(context.Background(), blankPages(2)); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	calls := engine.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 OCR call, got %d", len(calls))
	}
	if !reflect.DeepEqual(calls[0].Languages, []string{"spa"}) || calls[0].DPI != 150 {
		t.Fatalf("unexpected OCR input: %+v", calls[0])
	}
	if calls[0].Metadata != nil {
		t.Fatalf("default config should not set engine variables: %+v", calls[0].Metadata)
	}
}

func TestScanPassesTesseractPSM(t *testing.T) {
	cfg := config.Default()
	cfg.TesseractPSM = 6
	engine := &ocrtest.Script{}
	if _, err := New(engine, cfg).Scan(context.Background(), blankPages(3)); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	for _, in := range engine.Calls() {
		if got := in.Metadata[ocr.TesseractPSMVar]; got != "6" {
			t.Fatalf("page %d psm = %q, want 6", in.PageIndex, got)
		}
	}
}

func TestScanNormalizeWhitespace(t *testing.T) {
	cfg := config.Default()
	cfg.NormalizeWhitespace = true
	engine := &ocrtest.Script{Text: map[int]string{0: "copia de la  figura\ncompleja de\tbenson"}}
	got, err := New(engine, cfg).Scan(context.Background(), blankPages(2))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !got.Found || got.Index != 1 {
		t.Fatalf("expected match with normalized whitespace, got %+v", got)
	}
}

func TestScanCustomPhraseIsCaseInsensitive(t *testing.T) {
	cfg := config.Default()
	cfg.KeyPhrase = "Figura COMPLEJA"
	s := New(&ocrtest.Script{}, cfg)
	if !s.Matches("la figura compleja de rey") {
		t.Fatalf("expected mixed-case phrase to match lowercase text")
	}
	if s.Matches("figura simple") {
		t.Fatalf("unexpected match")
	}
}

func TestScanOCRError(t *testing.T) {
	boom := errors.New("tesseract: missing spa.traineddata")
	engine := &ocrtest.Script{Errors: map[int]error{1: boom}}
	_, err := New(engine, config.Default()).Scan(context.Background(), blankPages(4))
	if !errors.Is(err, boom) {
		t.Fatalf("expected OCR error, got %v", err)
	}
	if got := engine.Pages(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("scan should stop at the failing page, got %v", got)
	}
}

type brokenPages struct{ raster.Memory }

func (brokenPages) Page(int) (image.Image, error) { return nil, errors.New("corrupt page") }

func TestScanRasterError(t *testing.T) {
	_, err := New(&ocrtest.Script{}, config.Default()).Scan(context.Background(), brokenPages{blankPages(3)})
	if err == nil {
		t.Fatalf("expected rasterization error")
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := &ocrtest.Script{}
	_, err := New(engine, config.Default()).Scan(ctx, blankPages(3))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(engine.Pages()) != 0 {
		t.Fatalf("no page should be recognized after cancellation")
	}
}

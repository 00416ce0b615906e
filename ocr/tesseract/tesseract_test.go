package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/bensonscan/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(t *testing.T, text string) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40+7*len(text), 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)
	return img
}

func TestInitInstallsDefaultEngine(t *testing.T) {
	if got := ocr.DefaultEngine().Name(); got != "tesseract" {
		t.Fatalf("default engine = %q, want tesseract", got)
	}
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	res, err := ocr.RecognizeImage(context.Background(), NewTesseractEngine(), renderText(t, "Hello PDF"), 0,
		ocr.WithLanguages("eng"), ocr.WithDPI(300))
	if err != nil {
		t.Fatalf("RecognizeImage() error = %v", err)
	}
	got := strings.ToLower(res.PlainText)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "pdf") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
	if res.InputID != "page-0" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
	if res.Language != "eng" {
		t.Fatalf("unexpected language: %s", res.Language)
	}
}

func TestTesseractEngineSingleLinePSM(t *testing.T) {
	ensureTesseractAvailable(t)

	res, err := ocr.RecognizeImage(context.Background(), NewTesseractEngine(), renderText(t, "Benson figure"), 0,
		ocr.WithLanguages("eng"), ocr.WithDPI(300), ocr.WithTesseractPSM(7))
	if err != nil {
		t.Fatalf("RecognizeImage() error = %v", err)
	}
	if got := strings.ToLower(res.PlainText); !strings.Contains(got, "benson") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
}

func TestTesseractEngineRejectsUnknownVariable(t *testing.T) {
	ensureTesseractAvailable(t)

	in, err := ocr.InputFromImage(renderText(t, "x"), 0, ocr.WithLanguages("eng"))
	if err != nil {
		t.Fatal(err)
	}
	in.Metadata = map[string]string{"no_such_tesseract_variable": "1"}
	if _, err := NewTesseractEngine().Recognize(context.Background(), in); err == nil {
		t.Fatalf("expected error for unknown variable")
	}
}

package cropui

import (
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/wudi/bensonscan/crop"
)

func newServer(t *testing.T, sizes ...image.Point) (*Server, string) {
	t.Helper()
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "confirmed_crops")
	var queue []string
	for i, sz := range sizes {
		path := filepath.Join(in, string(rune('a'+i))+"_benson_page_ocr.png")
		if err := imaging.Save(image.NewGray(image.Rect(0, 0, sz.X, sz.Y)), path); err != nil {
			t.Fatal(err)
		}
		queue = append(queue, path)
	}
	session := crop.NewSession(queue, out, 0.45)
	if err := session.Load(); err != nil {
		t.Fatal(err)
	}
	return New(session, 500), out
}

func do(t *testing.T, srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPageShowsCurrentImage(t *testing.T) {
	srv, _ := newServer(t, image.Pt(1000, 2000), image.Pt(800, 800))
	rec := do(t, srv, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Image 1 of 2", "a_benson_page_ocr.png", `width="500" height="1000"`, "Split: 0.45"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
}

func TestImageIsScaledToDisplayWidth(t *testing.T) {
	srv, _ := newServer(t, image.Pt(1000, 2000))
	rec := do(t, srv, http.MethodGet, "/image", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("GET /image status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 1000 {
		t.Fatalf("unexpected display size %v", b)
	}

	rec = do(t, srv, http.MethodGet, "/preview", nil)
	img, err = png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	// Default split 0.45 keeps 1100 of 2000 rows, shown at half size.
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 550 {
		t.Fatalf("unexpected preview size %v", b)
	}
}

func TestClickFromImageInput(t *testing.T) {
	srv, out := newServer(t, image.Pt(1000, 2000))
	rec := do(t, srv, http.MethodPost, "/click", url.Values{"page.x": {"10"}, "page.y": {"250"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /click status = %d: %s", rec.Code, rec.Body.String())
	}
	saved, err := imaging.Open(filepath.Join(out, "a_copia_paciente_gui.png"))
	if err != nil {
		t.Fatalf("crop not saved: %v", err)
	}
	if b := saved.Bounds(); b.Dx() != 1000 || b.Dy() != 1500 {
		t.Fatalf("crop bounds = %v, want 1000x1500", b)
	}
}

func TestClickWithExplicitHeight(t *testing.T) {
	srv, out := newServer(t, image.Pt(100, 100))
	rec := do(t, srv, http.MethodPost, "/click", url.Values{"y": {"30"}, "h": {"60"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /click status = %d", rec.Code)
	}
	saved, err := imaging.Open(filepath.Join(out, "a_copia_paciente_gui.png"))
	if err != nil {
		t.Fatal(err)
	}
	if saved.Bounds().Dy() != 50 {
		t.Fatalf("crop height = %d, want 50", saved.Bounds().Dy())
	}
}

func TestClickBadRequest(t *testing.T) {
	srv, _ := newServer(t, image.Pt(100, 100))
	for _, form := range []url.Values{
		{"page.y": {"abc"}},
		{"y": {"10"}},
		{"y": {"10"}, "h": {"0"}},
	} {
		if rec := do(t, srv, http.MethodPost, "/click", form); rec.Code != http.StatusBadRequest {
			t.Fatalf("form %v status = %d, want 400", form, rec.Code)
		}
	}
}

func TestClickAtBottomReportsError(t *testing.T) {
	srv, _ := newServer(t, image.Pt(100, 100))
	do(t, srv, http.MethodPost, "/click", url.Values{"y": {"60"}, "h": {"60"}})
	body := do(t, srv, http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, crop.ErrEmptyCrop.Error()) {
		t.Fatalf("expected empty crop error on page:\n%s", body)
	}
}

func TestNextUntilDone(t *testing.T) {
	srv, _ := newServer(t, image.Pt(100, 100), image.Pt(100, 50))
	if rec := do(t, srv, http.MethodPost, "/next", url.Values{}); rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /next status = %d", rec.Code)
	}
	if body := do(t, srv, http.MethodGet, "/", nil).Body.String(); !strings.Contains(body, "Image 2 of 2") {
		t.Fatalf("expected second image:\n%s", body)
	}
	select {
	case <-srv.Done():
		t.Fatalf("done closed too early")
	default:
	}
	do(t, srv, http.MethodPost, "/next", url.Values{})
	select {
	case <-srv.Done():
	default:
		t.Fatalf("done not closed after the last image")
	}
	if body := do(t, srv, http.MethodGet, "/", nil).Body.String(); !strings.Contains(body, "No more images") {
		t.Fatalf("expected completion notice:\n%s", body)
	}
	if rec := do(t, srv, http.MethodGet, "/image", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /image after done = %d, want 404", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/click", url.Values{"y": {"1"}, "h": {"2"}}); rec.Code != http.StatusConflict {
		t.Fatalf("POST /click after done = %d, want 409", rec.Code)
	}
	// A repeated next must not panic on the closed channel.
	do(t, srv, http.MethodPost, "/next", url.Values{})
}

func TestServeStopsOnCancel(t *testing.T) {
	srv, _ := newServer(t, image.Pt(10, 10))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Serve(ctx, "127.0.0.1:0", srv) }()
	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Serve did not stop")
	}
}

func TestServeStopsWhenDone(t *testing.T) {
	session := crop.NewSession(nil, t.TempDir(), 0.45)
	if err := session.Load(); err != nil {
		t.Fatal(err)
	}
	if err := Serve(context.Background(), "127.0.0.1:0", New(session, 500)); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
}

func TestDisplayHeight(t *testing.T) {
	if got := displayHeight(image.Rect(0, 0, 1240, 1754), 500); got != 707 {
		t.Fatalf("displayHeight() = %d, want 707", got)
	}
	if got := displayHeight(image.Rect(0, 0, 5000, 1), 500); got != 1 {
		t.Fatalf("displayHeight() = %d, want 1", got)
	}
}

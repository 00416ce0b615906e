// Package cropui serves the crop review on the loopback interface. A page
// shows the current detected image at the display width; clicking on it
// posts the click position, which becomes the split for that image.
package cropui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wudi/bensonscan/crop"
	"github.com/wudi/bensonscan/observability"
)

type Server struct {
	mu       sync.Mutex
	session  *crop.Session
	width    int
	revision int
	lastErr  string

	logger observability.Logger
	done   chan struct{}
	once   sync.Once
	router chi.Router
}

// New wraps a loaded session. displayWidth is the width at which pages are
// shown and clicks are measured.
func New(session *crop.Session, displayWidth int) *Server {
	s := &Server{
		session: session,
		width:   displayWidth,
		logger:  observability.NopLogger{},
		done:    make(chan struct{}),
	}
	s.router = s.routes()
	if session.State() == crop.Done {
		s.finish()
	}
	return s
}

func (s *Server) WithLogger(l observability.Logger) *Server {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Done is closed once the last image has been reviewed.
func (s *Server) Done() <-chan struct{} { return s.done }

func (s *Server) finish() {
	s.once.Do(func() { close(s.done) })
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(s.requestLogger)

	r.Get("/", s.handlePage)
	r.Get("/image", s.handleImage)
	r.Get("/preview", s.handlePreview)
	r.Post("/click", s.handleClick)
	r.Post("/next", s.handleNext)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			observability.String("method", r.Method),
			observability.String("path", r.URL.Path),
			observability.Int("status", ww.Status()),
			observability.String("elapsed", time.Since(start).String()))
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := pageData{Done: s.session.State() == crop.Done, Width: s.width, Revision: s.revision, Error: s.lastErr}
	if !data.Done {
		src := s.session.Source()
		data.Index = s.session.Index() + 1
		data.Total = s.session.Len()
		data.Name = filepath.Base(s.session.Current())
		data.Split = strconv.FormatFloat(s.session.Split(), 'f', 2, 64)
		if src != nil {
			data.Height = displayHeight(src.Bounds(), s.width)
			data.SplitY = int(s.session.Split() * float64(data.Height))
		}
		data.Saved = s.session.Saved()
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", observability.Error("error", err))
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	img := s.session.Source()
	s.mu.Unlock()
	s.writePNG(w, img)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	img := s.session.Crop()
	s.mu.Unlock()
	s.writePNG(w, img)
}

func (s *Server) writePNG(w http.ResponseWriter, img image.Image) {
	if img == nil {
		http.Error(w, "no image", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, scaleToWidth(img, s.width)); err != nil {
		s.logger.Warn("encode image", observability.Error("error", err))
	}
}

// handleClick accepts either the page.y coordinate posted by the image
// input, measured against the display height, or explicit y and h values.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.session.Source()
	if s.session.State() == crop.Done || src == nil {
		http.Error(w, "no image to crop", http.StatusConflict)
		return
	}
	y, h, err := clickPosition(r, displayHeight(src.Bounds(), s.width))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.lastErr = ""
	if err := s.session.Click(y / h); err != nil {
		if !errors.Is(err, crop.ErrEmptyCrop) {
			s.logger.Error("save crop", observability.String("file", s.session.Current()), observability.Error("error", err))
		}
		s.lastErr = err.Error()
	} else {
		s.logger.Info("crop saved",
			observability.String("output", filepath.Base(s.session.Saved())),
			observability.Float64("split", s.session.Split()))
	}
	s.revision++
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func clickPosition(r *http.Request, display int) (y, h float64, err error) {
	if v := r.PostForm.Get("page.y"); v != "" {
		y, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid page.y %q", v)
		}
		return y, float64(display), nil
	}
	y, err = strconv.ParseFloat(r.PostForm.Get("y"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q", r.PostForm.Get("y"))
	}
	h, err = strconv.ParseFloat(r.PostForm.Get("h"), 64)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid h %q", r.PostForm.Get("h"))
	}
	return y, h, nil
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = ""
	if err := s.session.Next(); err != nil && !errors.Is(err, crop.ErrDone) {
		s.logger.Error("load image", observability.Error("error", err))
		s.lastErr = err.Error()
	}
	s.revision++
	if s.session.State() == crop.Done {
		s.logger.Info("no more images")
		s.finish()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Serve listens on addr and serves srv until the review is finished or ctx is
// cancelled. The completion page is given a moment to reach the browser
// before shutdown.
func Serve(ctx context.Context, addr string, srv *Server) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	srv.logger.Info("crop review ready", observability.String("url", "http://"+ln.Addr().String()+"/"))

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case <-srv.Done():
		time.Sleep(500 * time.Millisecond)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

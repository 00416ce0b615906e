// Package batch runs the scan stage over a folder of PDF files: rasterize,
// scan, extract and log, one document at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wudi/bensonscan/config"
	"github.com/wudi/bensonscan/extract"
	"github.com/wudi/bensonscan/observability"
	"github.com/wudi/bensonscan/ocr"
	"github.com/wudi/bensonscan/raster"
	"github.com/wudi/bensonscan/recovery"
	"github.com/wudi/bensonscan/runlog"
	"github.com/wudi/bensonscan/scan"
)

// Summary counts outcomes for one run.
type Summary struct {
	Processed int
	Detected  int
	NotFound  int
	Failed    int
	Outcomes  []extract.Outcome
}

func (s *Summary) add(out extract.Outcome) {
	s.Processed++
	switch out.Status {
	case extract.Detected:
		s.Detected++
	case extract.NotFound:
		s.NotFound++
	case extract.Failed:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, out)
}

type Runner struct {
	cfg        config.Config
	rasterizer raster.Rasterizer
	scanner    *scan.Scanner
	extractor  *extract.Extractor
	recovery   recovery.Strategy
	logger     observability.Logger
	tracer     observability.Tracer
}

// New builds a runner for cfg. Failures skip to the next document unless
// cfg.Strict is set.
func New(cfg config.Config, rasterizer raster.Rasterizer, engine ocr.Engine) *Runner {
	var strategy recovery.Strategy = recovery.NewSkipStrategy()
	if cfg.Strict {
		strategy = recovery.NewStrictStrategy()
	}
	return &Runner{
		cfg:        cfg,
		rasterizer: rasterizer,
		scanner:    scan.New(engine, cfg),
		extractor:  extract.New(cfg.DetectedPath()),
		recovery:   strategy,
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
	}
}

func (r *Runner) WithRecovery(s recovery.Strategy) *Runner {
	if s != nil {
		r.recovery = s
	}
	return r
}

func (r *Runner) WithLogger(l observability.Logger) *Runner {
	if l != nil {
		r.logger = l
		r.scanner.WithLogger(l)
	}
	return r
}

func (r *Runner) WithTracer(t observability.Tracer) *Runner {
	if t != nil {
		r.tracer = t
	}
	return r
}

// ListPDFs returns the .pdf files directly inside dir, matched
// case-insensitively and sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), config.InputPDFExt) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every PDF in the input folder and writes the run log. The
// returned error is non-nil only when the run itself could not proceed or the
// recovery strategy chose to stop; the summary covers everything done so far.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output folder: %w", err)
	}
	files, err := ListPDFs(r.cfg.InputDir)
	if err != nil {
		return sum, err
	}
	log, err := runlog.Create(r.cfg.LogPath())
	if err != nil {
		return sum, err
	}
	defer log.Close()

	r.logger.Info("scan started",
		observability.String("input", r.cfg.InputDir),
		observability.Int("documents", len(files)),
		observability.String("rasterizer", r.rasterizer.Name()))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := filepath.Base(path)
		logger := r.logger.With(observability.String("file", name))
		if err := log.Processing(name); err != nil {
			return sum, fmt.Errorf("write run log: %w", err)
		}
		logger.Info("Processing")

		out, procErr := r.processDocument(ctx, path)
		if procErr != nil && ctx.Err() != nil {
			if err := log.Interrupted(); err != nil {
				return sum, fmt.Errorf("write run log: %w", err)
			}
			logger.Warn("Interrupted")
			return sum, fmt.Errorf("process %s: %w", name, ctx.Err())
		}
		if procErr != nil {
			out = extract.Outcome{Document: name, Status: extract.Failed, Err: procErr}
		}
		if err := log.Record(out); err != nil {
			return sum, fmt.Errorf("write run log: %w", err)
		}
		sum.add(out)

		switch out.Status {
		case extract.Detected:
			logger.Info("✔ Page extracted", observability.String("output", out.File), observability.Int("page", out.Page))
		case extract.NotFound:
			logger.Warn("⚠ Phrase not found")
		case extract.Failed:
			logger.Error("✖ Processing failed", observability.Error("error", procErr))
			if r.recovery.OnError(ctx, procErr, recovery.Location{Document: name, Component: "batch"}) == recovery.ActionFail {
				return sum, fmt.Errorf("process %s: %w", name, procErr)
			}
		}
	}
	return sum, nil
}

func (r *Runner) processDocument(ctx context.Context, path string) (out extract.Outcome, err error) {
	ctx, span := r.tracer.StartSpan(ctx, observability.SpanDocument)
	span.SetTag("file", filepath.Base(path))
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	err = recovery.Guard(func() error {
		doc, err := r.open(ctx, path)
		if err != nil {
			return err
		}
		defer doc.Close()

		m, err := r.scan(ctx, doc)
		if err != nil {
			return err
		}
		_, exSpan := r.tracer.StartSpan(ctx, observability.SpanExtract)
		out, err = r.extractor.Extract(path, m, doc)
		exSpan.Finish()
		return err
	})
	var pe *recovery.PanicError
	if errors.As(err, &pe) {
		r.logger.Debug("recovered panic", observability.String("stack", string(pe.Stack)))
	}
	return out, err
}

func (r *Runner) open(ctx context.Context, path string) (raster.Document, error) {
	_, span := r.tracer.StartSpan(ctx, observability.SpanRasterize)
	defer span.Finish()
	doc, err := r.rasterizer.Open(ctx, path, r.cfg.DPI)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag("pages", doc.NumPages())
	return doc, nil
}

func (r *Runner) scan(ctx context.Context, doc raster.Document) (scan.Match, error) {
	ctx, span := r.tracer.StartSpan(ctx, observability.SpanScan)
	defer span.Finish()
	m, err := r.scanner.Scan(ctx, doc)
	if err != nil {
		span.SetError(err)
		return m, err
	}
	span.SetTag("found", m.Found)
	return m, nil
}

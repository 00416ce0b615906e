package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/wudi/bensonscan/batch"
	"github.com/wudi/bensonscan/config"
	"github.com/wudi/bensonscan/crop"
	"github.com/wudi/bensonscan/cropui"
	"github.com/wudi/bensonscan/observability"
	"github.com/wudi/bensonscan/ocr"
	_ "github.com/wudi/bensonscan/ocr/tesseract"
	"github.com/wudi/bensonscan/raster"
	"github.com/wudi/bensonscan/raster/fitz"
	"github.com/wudi/bensonscan/raster/poppler"
)

type options struct {
	command    string
	inDir      string
	outDir     string
	configPath string
	strict     bool
	auto       bool
	verbose    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bensonscan: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, config.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "❌ No folder selected. Exiting.")
		} else {
			fmt.Fprintf(os.Stderr, "bensonscan: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, out io.Writer) (options, error) {
	usage := func() {
		fmt.Fprintf(out, "Usage: bensonscan <scan|crop|run> [flags]\n\n")
		fmt.Fprintf(out, "  scan  find the page after the Benson figure phrase in every PDF\n")
		fmt.Fprintf(out, "  crop  review detected pages and save the confirmed crops\n")
		fmt.Fprintf(out, "  run   scan, then crop\n")
	}
	if len(args) == 0 {
		usage()
		return options{}, fmt.Errorf("missing command")
	}
	opts := options{command: args[0]}
	switch opts.command {
	case "scan", "crop", "run":
	default:
		usage()
		return options{}, fmt.Errorf("unknown command %q", opts.command)
	}

	fs := flag.NewFlagSet(opts.command, flag.ContinueOnError)
	fs.SetOutput(out)
	if opts.command != "crop" {
		fs.StringVar(&opts.inDir, "in", "", "Folder containing the PDFs (prompted when empty)")
		fs.BoolVar(&opts.strict, "strict", false, "Stop at the first document that fails")
	}
	fs.StringVar(&opts.outDir, "out", "", "Output folder for images and logs (prompted when empty)")
	fs.StringVar(&opts.configPath, "config", "", "Optional YAML file overriding the built-in settings")
	if opts.command != "scan" {
		fs.BoolVar(&opts.auto, "auto", false, "Save the default crop of every page without opening the review page")
	}
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		return options{}, err
	}
	if fs.NArg() != 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := observability.NewZapLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	answers := bufio.NewReader(in)
	if opts.command != "crop" && cfg.InputDir == "" {
		if cfg.InputDir, err = config.SelectDir(answers, out, "Select Folder Containing PDFs", true); err != nil {
			return err
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir, err = config.SelectDir(answers, out, "Select Output Folder for Images and Logs", opts.command == "crop")
		if errors.Is(err, config.ErrCancelled) && opts.command == "crop" {
			fmt.Fprintln(out, "No folder selected, nothing to crop.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	if opts.command != "crop" {
		if err := runScan(ctx, cfg, logger); err != nil {
			return err
		}
	}
	if opts.command != "scan" {
		return runCrop(ctx, cfg, opts.auto, logger, out)
	}
	return nil
}

func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	if opts.inDir != "" {
		cfg.InputDir = opts.inDir
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	if opts.strict {
		cfg.Strict = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newRasterizer(name string) (raster.Rasterizer, error) {
	switch name {
	case "fitz":
		return fitz.New(), nil
	case "pdftoppm":
		return poppler.New(), nil
	}
	return nil, fmt.Errorf("unknown rasterizer %q", name)
}

func runScan(ctx context.Context, cfg config.Config, logger observability.Logger) error {
	rasterizer, err := newRasterizer(cfg.Rasterizer)
	if err != nil {
		return err
	}
	sum, err := batch.New(cfg, rasterizer, ocr.DefaultEngine()).
		WithLogger(logger).
		WithTracer(observability.NewLogTracer(logger)).
		Run(ctx)
	logger.Info("scan finished",
		observability.Int("processed", sum.Processed),
		observability.Int("detected", sum.Detected),
		observability.Int("not_found", sum.NotFound),
		observability.Int("failed", sum.Failed),
		observability.String("log", cfg.LogPath()))
	if err != nil {
		return err
	}
	logger.Info("✅ OCR process and logging complete.")
	return nil
}

func runCrop(ctx context.Context, cfg config.Config, auto bool, logger observability.Logger, out io.Writer) error {
	queue, err := crop.Queue(cfg.DetectedPath())
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		fmt.Fprintln(out, "No detected pages to crop.")
		return nil
	}
	session := crop.NewSession(queue, cfg.CropPath(), cfg.DefaultSplit)
	if err := session.Load(); err != nil {
		logger.Error("load image", observability.Error("error", err))
	}

	if auto {
		saved, err := session.AcceptDefaults()
		logger.Info("default crops saved", observability.Int("saved", saved), observability.String("dir", cfg.CropPath()))
		return err
	}

	srv := cropui.New(session, cfg.DisplayWidth).WithLogger(logger)
	if err := cropui.Serve(ctx, cfg.UIAddr, srv); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ No more images. All crops saved to", cfg.CropPath())
	return nil
}

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// InputOption mutates an OCR input generated from a page image.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// InputFromImage encodes a rendered page as PNG and wraps it in an Input. The
// ID is derived from the page index so results can be correlated in logs.
func InputFromImage(img image.Image, page int, opts ...InputOption) (Input, error) {
	if img == nil {
		return Input{}, fmt.Errorf("page %d: nil image", page)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode page %d: %w", page, err)
	}
	in := Input{
		ID:        fmt.Sprintf("page-%d", page),
		Image:     buf.Bytes(),
		Format:    ImageFormatPNG,
		PageIndex: page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

// RecognizeImage encodes img and runs it through engine.
func RecognizeImage(ctx context.Context, engine Engine, img image.Image, page int, opts ...InputOption) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}
	in, err := InputFromImage(img, page, opts...)
	if err != nil {
		return Result{}, err
	}
	res, err := engine.Recognize(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("recognize %s with %s: %w", in.ID, engine.Name(), err)
	}
	return res, nil
}

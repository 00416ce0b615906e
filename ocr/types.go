package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG ImageFormat = "image/png"
)

// Input encapsulates a single page image submitted for OCR.
type Input struct {
	// ID is echoed back in the corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type.
	Format ImageFormat
	// PageIndex is the zero-based PDF page the image was rendered from.
	PageIndex int
	// DPI is the rasterization resolution; zero means unknown.
	DPI int
	// Languages lists trained-data codes (e.g. "spa").
	Languages []string
	// Metadata carries engine variables such as the Tesseract page
	// segmentation mode.
	Metadata map[string]string
}

// Result captures OCR output for a single input image.
type Result struct {
	InputID   string
	PlainText string
	// Confidence is the mean word confidence in [0,1], zero when unknown.
	Confidence float64
	Language   string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, input Input) (Result, error)

func (f EngineFunc) Name() string { return "func" }

func (f EngineFunc) Recognize(ctx context.Context, input Input) (Result, error) {
	return f(ctx, input)
}

package ocr

import "context"

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the process-wide engine. Importing ocr/tesseract
// installs the Tesseract engine here.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine sets the process-wide engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

type noopEngine struct{}

func (noopEngine) Name() string {
	return "noop"
}

func (noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}

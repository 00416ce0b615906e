package ocr

import "strconv"

// TesseractPSMVar is the Tesseract variable holding the page segmentation mode.
const TesseractPSMVar = "tessedit_pageseg_mode"

// WithTesseractPSM sets the page segmentation mode (PSM) variable for Tesseract.
// See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
// Zero leaves the engine default in place.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if mode <= 0 {
			return
		}
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata[TesseractPSMVar] = strconv.Itoa(mode)
	}
}

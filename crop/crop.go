// Package crop cuts a detected page at a vertical split point and keeps the
// part below it. Session drives the click-by-click review of a queue of
// detected pages independently of any UI.
package crop

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/wudi/bensonscan/config"
)

// ErrEmptyCrop is returned when a split leaves no rows to keep.
var ErrEmptyCrop = errors.New("split leaves an empty crop")

// Apply keeps the rows of img below split*height, full width. The cut row is
// rounded to the nearest pixel.
func Apply(img image.Image, split float64) (*image.NRGBA, error) {
	if math.IsNaN(split) || split < 0 || split > 1 {
		return nil, fmt.Errorf("split %v outside [0,1]", split)
	}
	b := img.Bounds()
	top := b.Min.Y + int(math.Round(float64(b.Dy())*split))
	rect := image.Rect(b.Min.X, top, b.Max.X, b.Max.Y)
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}
	return imaging.Crop(img, rect), nil
}

// Name derives the crop file name from a detected page file name.
func Name(detected string) string {
	return strings.ReplaceAll(filepath.Base(detected), config.DetectedTag, config.CropTag)
}

// Queue lists the PNG files in dir sorted by name. A missing dir is an empty
// queue: the scan only creates it once a page is detected.
func Queue(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read detected pages: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), config.ImageExt) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Save writes img to dir/Name(detected), replacing an earlier crop of the
// same page.
func Save(dir, detected string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crop dir: %w", err)
	}
	path := filepath.Join(dir, Name(detected))
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

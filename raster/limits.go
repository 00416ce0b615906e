package raster

import "fmt"

const (
	// MaxPageDimension caps the rendered width or height of a page so a broken
	// MediaBox cannot trigger a huge allocation.
	MaxPageDimension = 32768
	// MaxPagePixels bounds the pixel count (roughly 64MP), keeping RGBA
	// buffers under 256 MB.
	MaxPagePixels int64 = 64 * 1024 * 1024
)

// CheckPageSize validates the pixel size a page would render at.
func CheckPageSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("page bounds invalid (%d x %d)", width, height)
	}
	if width > MaxPageDimension || height > MaxPageDimension {
		return fmt.Errorf("page dimension exceeds limit (%d x %d)", width, height)
	}
	if pixels := int64(width) * int64(height); pixels > MaxPagePixels {
		return fmt.Errorf("page pixel count %d exceeds limit %d", pixels, MaxPagePixels)
	}
	return nil
}

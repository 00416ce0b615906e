package cropui

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// scaleToWidth resizes img to width pixels keeping its aspect ratio.
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width || b.Dx() == 0 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, displayHeight(b, width)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// displayHeight is the height of b once scaled to width.
func displayHeight(b image.Rectangle, width int) int {
	if b.Dx() == 0 {
		return 0
	}
	h := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	if h < 1 {
		h = 1
	}
	return h
}

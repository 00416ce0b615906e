// Package fitz renders PDF pages with MuPDF through go-fitz.
package fitz

import (
	"context"
	"fmt"
	"image"
	"sync"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/wudi/bensonscan/raster"
)

// Rasterizer is the MuPDF backend.
type Rasterizer struct{}

func New() *Rasterizer { return &Rasterizer{} }

func (*Rasterizer) Name() string { return "fitz" }

// Open loads the document; pages are rendered lazily by Page.
func (*Rasterizer) Open(ctx context.Context, path string, dpi int) (raster.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %d", dpi)
	}
	doc, err := gofitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &document{doc: doc, dpi: float64(dpi), pages: doc.NumPage()}, nil
}

// go-fitz documents are not safe for concurrent rendering.
type document struct {
	mu    sync.Mutex
	doc   *gofitz.Document
	dpi   float64
	pages int
}

func (d *document) NumPages() int { return d.pages }

func (d *document) Page(index int) (image.Image, error) {
	if err := raster.CheckIndex(d, index); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	bound, err := d.doc.Bound(index)
	if err != nil {
		return nil, fmt.Errorf("page %d bounds: %w", index, err)
	}
	scale := d.dpi / 72
	if err := raster.CheckPageSize(int(float64(bound.Dx())*scale), int(float64(bound.Dy())*scale)); err != nil {
		return nil, fmt.Errorf("page %d: %w", index, err)
	}
	img, err := d.doc.ImageDPI(index, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}
	return img, nil
}

func (d *document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}

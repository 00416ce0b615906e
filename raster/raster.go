// Package raster turns PDF documents into page images. Backends live in
// sub-packages; callers depend only on Rasterizer and Document.
package raster

import (
	"context"
	"fmt"
	"image"
)

// Document is an opened PDF whose pages can be rendered one at a time.
type Document interface {
	NumPages() int
	Page(index int) (image.Image, error)
	Close() error
}

// Rasterizer opens PDF files for rendering at a fixed resolution.
type Rasterizer interface {
	Name() string
	Open(ctx context.Context, path string, dpi int) (Document, error)
}

// Memory is a Document over pages that are already rendered.
type Memory []image.Image

func (m Memory) NumPages() int { return len(m) }

func (m Memory) Page(index int) (image.Image, error) {
	if index < 0 || index >= len(m) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, len(m))
	}
	return m[index], nil
}

func (m Memory) Close() error { return nil }

// CheckIndex validates a page index against a document's page count.
func CheckIndex(doc interface{ NumPages() int }, index int) error {
	if n := doc.NumPages(); index < 0 || index >= n {
		return fmt.Errorf("page %d out of range [0,%d)", index, n)
	}
	return nil
}

// Package poppler renders PDF pages with the pdftoppm binary from
// poppler-utils. All pages are rendered to PNG in a temporary directory when
// the document is opened; Close removes them.
package poppler

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/wudi/bensonscan/raster"
)

// Rasterizer shells out to pdftoppm.
type Rasterizer struct {
	// Binary overrides the pdftoppm executable; empty means look it up on PATH.
	Binary string
}

func New() *Rasterizer { return &Rasterizer{} }

func (*Rasterizer) Name() string { return "pdftoppm" }

func (r *Rasterizer) Open(ctx context.Context, path string, dpi int) (raster.Document, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %d", dpi)
	}
	bin := r.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	dir, err := os.MkdirTemp("", "bensonscan-pages-")
	if err != nil {
		return nil, fmt.Errorf("create page dir: %w", err)
	}
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin, "-r", strconv.Itoa(dpi), "-png", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("pdftoppm %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if err := sortByPage(files, prefix); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &document{dir: dir, files: files}, nil
}

// pdftoppm zero-pads page numbers to the width of the page count, but only
// within one run; sort numerically to be safe.
func sortByPage(files []string, prefix string) error {
	nums := make(map[string]int, len(files))
	for _, f := range files {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(f, prefix+"-"), ".png"))
		if err != nil {
			return fmt.Errorf("unexpected page file %s", filepath.Base(f))
		}
		nums[f] = n
	}
	sort.Slice(files, func(i, j int) bool { return nums[files[i]] < nums[files[j]] })
	return nil
}

type document struct {
	dir   string
	files []string
}

func (d *document) NumPages() int { return len(d.files) }

func (d *document) Page(index int) (image.Image, error) {
	if err := raster.CheckIndex(d, index); err != nil {
		return nil, err
	}
	img, err := imaging.Open(d.files[index])
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", index, err)
	}
	return img, nil
}

func (d *document) Close() error {
	return os.RemoveAll(d.dir)
}

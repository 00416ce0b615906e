// Package rastertest builds small PDF fixtures for rasterizer tests.
package rastertest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WritePDF writes a PDF with the given number of blank pages of size
// width x height points into t.TempDir and returns its path. Page i carries a
// black square of side 10*(i+1) points in its lower-left corner.
func WritePDF(t *testing.T, pages int, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), fmt.Sprintf("fixture-%d.pdf", pages))
	if err := os.WriteFile(path, BuildPDF(pages, width, height), 0o644); err != nil {
		t.Fatalf("write pdf fixture: %v", err)
	}
	return path
}

// BuildPDF renders the fixture described by WritePDF with a correct xref table.
func BuildPDF(pages int, width, height int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> /Contents %d 0 R >>",
			width, height, 4+2*i))
		content := fmt.Sprintf("0 g 0 0 %d %d re f", 10*(i+1), 10*(i+1))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

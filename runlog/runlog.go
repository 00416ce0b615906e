// Package runlog writes results_log.txt, the per-run record of what happened
// to each document. The file is recreated on every run.
package runlog

import (
	"bufio"
	"fmt"
	"os"

	"github.com/wudi/bensonscan/extract"
)

const (
	Header          = "Log of Benson figure page extraction (via OCR)"
	InterruptedLine = "■ Processing interrupted, run stopped."
)

// Log is an open run log. Entries are flushed after every document so a
// crash keeps everything written so far.
type Log struct {
	f *os.File
	w *bufio.Writer
}

// Create truncates or creates path and writes the header.
func Create(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}
	l := &Log{f: f, w: bufio.NewWriter(f)}
	fmt.Fprintf(l.w, "%s\n\n", Header)
	if err := l.w.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("write run log header: %w", err)
	}
	return l, nil
}

// Processing records the start of a document.
func (l *Log) Processing(name string) error {
	fmt.Fprintf(l.w, "Processing file: %s\n", name)
	return l.w.Flush()
}

// Record writes the outcome line for the document last passed to Processing.
func (l *Log) Record(out extract.Outcome) error {
	fmt.Fprintf(l.w, "%s\n\n", Line(out))
	return l.w.Flush()
}

// Interrupted closes the entry of a document whose processing was stopped
// by the user rather than by a fault in the file.
func (l *Log) Interrupted() error {
	fmt.Fprintf(l.w, "%s\n\n", InterruptedLine)
	return l.w.Flush()
}

// Line formats the outcome line without its trailing blank line.
func Line(out extract.Outcome) string {
	switch out.Status {
	case extract.Detected:
		return fmt.Sprintf("✔ Page detected (page %d): %s", out.Page, out.File)
	case extract.Failed:
		return fmt.Sprintf("✖ Processing failed: %v", out.Err)
	default:
		return "⚠ Key phrase not found, no page extracted."
	}
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	if err := l.w.Flush(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

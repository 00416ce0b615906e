// Package ocrtest provides a scripted OCR engine for tests.
package ocrtest

import (
	"context"
	"sync"

	"github.com/wudi/bensonscan/ocr"
)

// Script returns canned text per page index and records every call.
type Script struct {
	// Text maps page index to recognized text.
	Text map[int]string
	// Errors maps page index to a recognition failure.
	Errors map[int]error

	mu    sync.Mutex
	calls []ocr.Input
}

func (s *Script) Name() string { return "script" }

func (s *Script) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ocr.Input{
		ID:        in.ID,
		Format:    in.Format,
		PageIndex: in.PageIndex,
		DPI:       in.DPI,
		Languages: in.Languages,
		Metadata:  in.Metadata,
	})
	if err := s.Errors[in.PageIndex]; err != nil {
		return ocr.Result{}, err
	}
	return ocr.Result{InputID: in.ID, PlainText: s.Text[in.PageIndex]}, nil
}

// Calls returns the inputs seen so far, without image payloads.
func (s *Script) Calls() []ocr.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ocr.Input(nil), s.calls...)
}

// Pages returns the page indexes recognized so far, in call order.
func (s *Script) Pages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.PageIndex
	}
	return out
}

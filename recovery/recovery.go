// Package recovery decides what a batch does when one document fails.
package recovery

import (
	"context"
	"fmt"
	"runtime/debug"
)

type Strategy interface {
	OnError(ctx context.Context, err error, location Location) Action
}

// Location identifies where a failure happened.
type Location struct {
	Document  string
	Component string
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// PanicError is returned by Guard when the guarded function panicked.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Guard runs fn and converts a panic into a *PanicError. The rasterizer and
// OCR engine call into C libraries through cgo bindings that panic on some
// malformed inputs.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

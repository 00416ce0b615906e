package recovery

import (
	"context"
	"errors"
	"fmt"
)

// StrictStrategy stops the batch on the first failure.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx context.Context, err error, location Location) Action {
	return ActionFail
}

// SkipStrategy records the failure and moves on to the next document.
// Cancellation is never skipped.
type SkipStrategy struct {
	Errors []error
}

func NewSkipStrategy() *SkipStrategy {
	return &SkipStrategy{}
}

func (s *SkipStrategy) OnError(ctx context.Context, err error, location Location) Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return ActionFail
	}
	s.Errors = append(s.Errors, fmt.Errorf("[%s] %s: %w", location.Component, location.Document, err))
	return ActionSkip
}

package results

import (
	"context"
	"errors"
	"fmt"
)

// Recorder persists a finished match.
type Recorder interface {
	Save(ctx context.Context, r *Result) error
}

// Multi saves to every recorder and joins the failures.
type Multi []Recorder

func (m Multi) Save(ctx context.Context, r *Result) error {
	var errs []error
	for i, rec := range m {
		if rec == nil {
			continue
		}
		if err := rec.Save(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("recorder %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

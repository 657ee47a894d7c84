package services

import (
	"context"

	"tally/internal/impulse"
)

// Confirmer decides whether an expense that triggered the impulse warning
// should be committed anyway. Confirm may block, for example on user input.
type Confirmer interface {
	Confirm(ctx context.Context, d impulse.Decision) (bool, error)
}

// ConfirmFunc adapts a plain function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, d impulse.Decision) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, d impulse.Decision) (bool, error) {
	return f(ctx, d)
}

// Preapproved answers every warning with the given decision.
func Preapproved(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, impulse.Decision) (bool, error) {
		return ok, nil
	})
}

// File: internal/navigator/errors.go
package navigator

import "errors"

var (
	// ErrRetryBudgetExhausted marks a deterministic stop after a per-state or
	// global retry counter ran out.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

	// ErrUnexpectedState marks a classification the active state has no
	// transition for.
	ErrUnexpectedState = errors.New("unexpected page state")
)

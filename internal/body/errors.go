package body

import (
	"errors"
	"fmt"
)

// Reasons a body stops being integrable. Both lead to permanent removal.
var (
	// ErrSingularity indicates a charge of the body came closer to a source
	// than the proximity guard.
	ErrSingularity = errors.New("body: singularity guard triggered")

	// ErrNonFinite indicates the integrated state contained NaN or Inf.
	ErrNonFinite = errors.New("body: non-finite state")
)

// RemovalError wraps a removal reason with the frame context it happened in.
type RemovalError struct {
	ID      ID
	Kind    Kind
	Frame   int
	Substep int
	Wrapped error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("%s #%d removed at frame %d substep %d: %v", e.Kind, e.ID, e.Frame, e.Substep, e.Wrapped)
}

func (e *RemovalError) Unwrap() error {
	return e.Wrapped
}

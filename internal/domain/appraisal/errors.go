package appraisal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("appraisal not found")
	// ErrForbidden covers visibility denials: the appraisal exists but the
	// caller has no business seeing or touching it.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition covers state machine violations, including
	// out-of-turn approval attempts.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict is returned when a transition loses a concurrent race:
	// the status precondition no longer held at write time.
	ErrConflict = errors.New("conflict")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

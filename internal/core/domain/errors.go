package domain

import (
	"errors"
	"fmt"
)

// FatalError marks an infrastructure failure that terminates the run. Every
// failure below this level is handled inside the component that detected it
// and never surfaces past the scheduler.
type FatalError struct {
	Step string
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal: %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("fatal: %s", e.Step)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err as a FatalError for the given step.
func Fatal(step string, err error) error {
	return &FatalError{Step: step, Err: err}
}

// Fatalf creates a FatalError from a format string.
func Fatalf(format string, args ...any) error {
	return &FatalError{Step: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

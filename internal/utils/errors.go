// Package utils holds small helpers shared by the bandhist packages.
package utils

import (
	"errors"
	"fmt"
)

// StageError records which pipeline stage failed, the failure kind and the
// underlying cause.
type StageError struct {
	Stage string
	Kind  error
	Cause error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	switch {
	case e.Cause == nil && e.Kind == nil:
		return e.Stage
	case e.Cause == nil:
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Cause)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WrapError attaches stage context to cause. Returns nil for a nil cause.
func WrapError(stage string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StageError{Stage: stage, Cause: cause}
}

// KindError builds a StageError of the given kind. cause may be nil.
func KindError(stage string, kind, cause error) error {
	return &StageError{Stage: stage, Kind: kind, Cause: cause}
}

// KindOf returns the Kind of the outermost StageError in err's chain that
// carries one, or nil.
func KindOf(err error) error {
	for err != nil {
		var se *StageError
		if !errors.As(err, &se) {
			return nil
		}
		if se.Kind != nil {
			return se.Kind
		}
		err = se.Cause
	}
	return nil
}

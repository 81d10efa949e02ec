package scenario

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned when an op kind is not one of set, delete, append or define.
var ErrUnknownOp = errors.New("unknown op")

// ErrEmptyPath is returned when an op has no path to write to.
var ErrEmptyPath = errors.New("op path is empty")

// ErrPathNotFound is returned when the source of a set or define by
// reference does not exist.
var ErrPathNotFound = errors.New("no value at path")

// ValidationError represents a single invalid entry of a scenario.
type ValidationError struct {
	Key    string // Location in the document, e.g. steps[1].ops[0].path
	Reason string // Human-readable reason for failure
	Value  any    // The offending value, if any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

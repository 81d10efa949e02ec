package domain

import (
	"errors"
	"fmt"
)

// ErrReadOnly is returned by every write attempted through a read-only view.
var ErrReadOnly = errors.New("state is read-only")

// ErrUpdateInBeforeUpdate is returned when the before-update hook calls Update.
var ErrUpdateInBeforeUpdate = errors.New("cannot update from before-update hook")

// ErrNotWritable is returned when a write, redefinition or deletion targets a
// property that was defined as non-writable.
var ErrNotWritable = errors.New("property is not writable")

// ErrIndexOutOfRange is returned when a list key is not a decimal index
// within [0, len].
var ErrIndexOutOfRange = errors.New("list index out of range")

// ErrNotList is returned when a list-only operation targets an object.
var ErrNotList = errors.New("node is not a list")

// ErrNotContainer is returned when a path walks through a leaf value.
var ErrNotContainer = errors.New("value is not a container")

// ErrListenerPanic wraps a panic recovered from a listener.
var ErrListenerPanic = errors.New("listener panicked")

// ListenerError records a failure of one listener during a notification pass.
type ListenerError struct {
	// Index is the registration position of the listener at the time of the pass.
	Index int
	Err   error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d: %v", e.Index, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

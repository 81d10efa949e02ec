// Package boundary provides a reentrancy primitive that delimits one atomic
// unit of work. Entering while already inside joins the outer unit; only the
// outermost entry runs the enter and exit hooks.
package boundary

import "errors"

// ErrCannotEnter is returned by Enter while entry is blocked, which is the
// case for the whole duration of the enter hook.
var ErrCannotEnter = errors.New("cannot enter boundary")

// Boundary tracks nesting depth for a single goroutine of execution.
// It carries no knowledge of what the unit of work does.
type Boundary struct {
	onEnter func() error
	onExit  func() error

	depth      int
	blocked    bool
	generation uint64
}

// New creates a Boundary. Either hook may be nil.
//
// onEnter runs before the action of an outermost entry, with further entry
// blocked. onExit runs after the action of an outermost entry while the depth
// is still one, so entries made from onExit are nested: they do not rerun
// either hook, but each of them advances Generation when it exits.
func New(onEnter, onExit func() error) *Boundary {
	return &Boundary{onEnter: onEnter, onExit: onExit}
}

// Enter runs action inside the boundary. action may be nil.
//
// An error from onEnter skips action and onExit. An error from action skips
// onExit. The depth is restored on every return path, panics included.
func (b *Boundary) Enter(action func() error) error {
	if b.blocked {
		return ErrCannotEnter
	}

	b.depth++
	outermost := b.depth == 1
	defer func() {
		b.depth--
		if !outermost {
			b.generation++
		}
	}()

	if outermost && b.onEnter != nil {
		if err := b.runBlocked(b.onEnter); err != nil {
			return err
		}
	}

	if action != nil {
		if err := action(); err != nil {
			return err
		}
	}

	if outermost && b.onExit != nil {
		return b.onExit()
	}
	return nil
}

func (b *Boundary) runBlocked(fn func() error) error {
	b.blocked = true
	defer func() { b.blocked = false }()
	return fn()
}

// Depth returns the current nesting depth; zero means idle.
func (b *Boundary) Depth() int {
	return b.depth
}

// Inside reports whether a unit of work is in progress.
func (b *Boundary) Inside() bool {
	return b.depth > 0
}

// Generation counts nested exits. Comparing it before and after a call tells
// whether that call completed any nested entry.
func (b *Boundary) Generation() uint64 {
	return b.generation
}

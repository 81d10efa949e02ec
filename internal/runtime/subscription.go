package runtime

import (
	"slices"

	"github.com/aretw0/settle/pkg/tracker"
)

// Subscription is the handle of a registered listener.
type Subscription struct {
	engine   *Engine
	listener Listener
	tracker  *tracker.Tracker
	removed  bool
}

// Subscribe registers listener after every existing one. Its change window
// starts empty: writes made before this call are never reported to it.
func (e *Engine) Subscribe(listener Listener) *Subscription {
	sub := &Subscription{
		engine:   e,
		listener: listener,
		tracker:  tracker.New(),
	}
	e.subs = append(e.subs, sub)
	return sub
}

// Listeners returns the number of registered listeners.
func (e *Engine) Listeners() int {
	return len(e.subs)
}

// Remove unregisters the listener. It is safe to call more than once and
// from inside any listener; a removed listener is never invoked again, even
// later in the pass that removed it.
func (s *Subscription) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	s.engine.subs = slices.DeleteFunc(s.engine.subs, func(other *Subscription) bool {
		return other == s
	})
}

// Removed reports whether Remove has been called.
func (s *Subscription) Removed() bool {
	return s.removed
}

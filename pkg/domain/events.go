package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventChange   EventType = "change"
	EventNotify   EventType = "notify"
	EventRestart  EventType = "restart"
	EventSettle   EventType = "settle"
	EventListener EventType = "listener_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ChangeEvent is emitted for every intercepted write that was applied.
type ChangeEvent struct {
	EventBase
	Path     Path `json:"path"`
	OldValue any  `json:"old_value,omitempty"`
	NewValue any  `json:"new_value,omitempty"`
	Depth    int  `json:"depth"`
}

// NotifyEvent is emitted right before a listener is invoked.
type NotifyEvent struct {
	EventBase
	Index   int    `json:"index"`
	Pass    int    `json:"pass"`
	Changed []Path `json:"changed"`
}

// ListenerEvent is emitted when a listener returns an error or panics.
type ListenerEvent struct {
	EventBase
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// SettleEvent is emitted once the outermost update finished its passes.
type SettleEvent struct {
	EventBase
	Passes        int           `json:"passes"`
	Notifications int           `json:"notifications"`
	Errors        int           `json:"errors"`
	Duration      time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional and runs synchronously on the updating goroutine.
type LifecycleHooks struct {
	OnChange        func(*ChangeEvent)
	OnNotify        func(*NotifyEvent)
	OnRestart       func(*EventBase)
	OnListenerError func(*ListenerEvent)
	OnSettle        func(*SettleEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnChange:        chain(h.OnChange, other.OnChange),
		OnNotify:        chain(h.OnNotify, other.OnNotify),
		OnRestart:       chain(h.OnRestart, other.OnRestart),
		OnListenerError: chain(h.OnListenerError, other.OnListenerError),
		OnSettle:        chain(h.OnSettle, other.OnSettle),
	}
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}

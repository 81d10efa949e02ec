package runtime

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/settle/internal/logging"
	"github.com/aretw0/settle/pkg/boundary"
	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/observe"
	"github.com/aretw0/settle/pkg/tracker"
)

// Listener is notified after an update settled with changes it has not seen.
// changed answers whether anything at or below a path changed since the
// listener's previous invocation; state is the live read-only view.
type Listener func(changed domain.ChangedFunc, state *observe.Object) error

// BeforeUpdateFunc runs against the mutable state at the start of every
// outermost update. It may mutate but must not call Update.
type BeforeUpdateFunc func(state *observe.Object) error

// AfterUpdateFunc runs once every outermost update has notified its listeners.
type AfterUpdateFunc func(info domain.AfterUpdate) error

// FaultHandler receives listener errors that the after-update hook did not
// retrieve. It runs on its own goroutine, after Update has returned.
type FaultHandler func(err error)

// Engine owns a state graph and coordinates updates and their notification.
// It must be used from a single goroutine.
type Engine struct {
	arena    *observe.Arena
	mutable  *observe.Object
	readOnly *observe.Object
	global   *tracker.Tracker
	subs     []*Subscription
	boundary *boundary.Boundary

	beforeUpdate BeforeUpdateFunc
	afterUpdate  AfterUpdateFunc
	faults       FaultHandler
	hooks        domain.LifecycleHooks
	logger       *slog.Logger

	// cycle holds the bookkeeping of the outermost update in progress.
	cycle cycle
}

type cycle struct {
	started       time.Time
	passes        int
	notifications int
	errs          []error
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithBeforeUpdate sets the hook run at the start of every outermost update.
func WithBeforeUpdate(fn BeforeUpdateFunc) EngineOption {
	return func(e *Engine) {
		e.beforeUpdate = fn
	}
}

// WithAfterUpdate sets the hook run once an outermost update has settled.
func WithAfterUpdate(fn AfterUpdateFunc) EngineOption {
	return func(e *Engine) {
		e.afterUpdate = fn
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFaultHandler sets the receiver of unretrieved listener errors.
func WithFaultHandler(fn FaultHandler) EngineOption {
	return func(e *Engine) {
		e.faults = fn
	}
}

// NewEngine takes ownership of initial and builds the engine around it.
// initial must not be mutated by the caller afterwards. A nil map starts empty.
func NewEngine(initial map[string]any, opts ...EngineOption) *Engine {
	if initial == nil {
		initial = map[string]any{}
	}

	e := &Engine{
		arena:  observe.NewArena(),
		global: tracker.New(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.faults == nil {
		e.faults = e.logFault
	}

	root := e.arena.Ingest(initial).(domain.Ref)
	e.mutable = observe.NewWrapper(e.arena, e.afterChange).Root(root)
	e.readOnly = observe.NewReadOnlyWrapper(e.arena).Root(root)
	e.boundary = boundary.New(e.enter, e.exit)

	return e
}

// State returns the read-only view of the state. It is live: later updates
// are visible through it.
func (e *Engine) State() *observe.Object {
	return e.readOnly
}

// HasChanged reports whether anything at or below path changed since the
// engine was created or since path was last reconciled. With no path it
// reports whether anything changed at all.
func (e *Engine) HasChanged(path ...string) bool {
	return e.global.HasPrefix(domain.Path(path))
}

// Changes returns every path currently marked as changed.
func (e *Engine) Changes() []domain.Path {
	return e.global.Keys()
}

// Reconcile clears the changes recorded at or below path, so that HasChanged
// reports only later writes. With no path it clears everything.
func (e *Engine) Reconcile(path ...string) int {
	return e.global.DeletePrefix(domain.Path(path))
}

// Depth returns the current update nesting depth.
func (e *Engine) Depth() int {
	return e.boundary.Depth()
}

// Update runs fn against the mutable state. fn may be nil, in which case only
// the before and after phases run.
//
// Updates nest: only the outermost call notifies listeners and runs the
// after-update hook. An error from fn is returned at once and skips
// notification for the call tree it aborts. Writes made before the error stay.
func (e *Engine) Update(fn func(state *observe.Object) error) error {
	outermost := !e.boundary.Inside()
	if outermost {
		e.cycle = cycle{started: time.Now()}
	}

	err := e.boundary.Enter(func() error {
		if fn == nil {
			return nil
		}
		return fn(e.mutable)
	})
	if err == boundary.ErrCannotEnter {
		return fmt.Errorf("%w: %w", domain.ErrUpdateInBeforeUpdate, err)
	}
	if err != nil || !outermost {
		return err
	}

	return e.settle()
}

func (e *Engine) enter() error {
	if e.beforeUpdate == nil {
		return nil
	}
	return e.beforeUpdate(e.mutable)
}

// exit runs notification passes until one completes without any listener
// having issued a nested update.
func (e *Engine) exit() error {
	for {
		e.cycle.passes++
		if !e.pass(e.cycle.passes) {
			return nil
		}
		e.logger.Debug("notification pass restarted", "pass", e.cycle.passes)
		if e.hooks.OnRestart != nil {
			e.hooks.OnRestart(&domain.EventBase{Timestamp: time.Now(), Type: domain.EventRestart})
		}
	}
}

// pass notifies every listener with pending changes, in registration order.
// It reports true when a nested update completed during a listener call,
// in which case the remaining listeners are skipped and the pass must restart.
func (e *Engine) pass(n int) (restart bool) {
	gen := e.boundary.Generation()

	for i, sub := range slices.Clone(e.subs) {
		if sub.removed || sub.tracker.Empty() {
			continue
		}
		changed := sub.tracker
		sub.tracker = tracker.New()
		e.invoke(i, n, sub, changed)

		if e.boundary.Generation() != gen {
			return true
		}
	}
	return false
}

func (e *Engine) invoke(index, pass int, sub *Subscription, changed *tracker.Tracker) {
	if e.hooks.OnNotify != nil {
		e.hooks.OnNotify(&domain.NotifyEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNotify},
			Index:     index,
			Pass:      pass,
			Changed:   changed.Keys(),
		})
	}
	e.cycle.notifications++

	err := call(sub.listener, func(path ...string) bool {
		return changed.HasPrefix(domain.Path(path))
	}, e.readOnly)
	if err == nil {
		return
	}

	e.cycle.errs = append(e.cycle.errs, &domain.ListenerError{Index: index, Err: err})
	e.logger.Warn("listener failed", domain.KeyListener, index, "err", err)
	if e.hooks.OnListenerError != nil {
		e.hooks.OnListenerError(&domain.ListenerEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventListener},
			Index:     index,
			Err:       err,
		})
	}
}

func call(l Listener, changed domain.ChangedFunc, state *observe.Object) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrListenerPanic, r)
		}
	}()
	return l(changed, state)
}

// settle runs the after phase of an outermost update. The boundary has been
// left already, so an Update issued by the after-update hook starts afresh.
func (e *Engine) settle() error {
	done := e.cycle
	e.cycle = cycle{}

	e.logger.Debug("update settled",
		"passes", done.passes,
		"notifications", done.notifications,
		"errors", len(done.errs),
	)
	if e.hooks.OnSettle != nil {
		e.hooks.OnSettle(&domain.SettleEvent{
			EventBase:     domain.EventBase{Timestamp: time.Now(), Type: domain.EventSettle},
			Passes:        done.passes,
			Notifications: done.notifications,
			Errors:        len(done.errs),
			Duration:      time.Since(done.started),
		})
	}

	retrieved := false
	var err error
	if e.afterUpdate != nil {
		err = e.afterUpdate(domain.AfterUpdate{
			State:             e.readOnly,
			ExceptionOccurred: len(done.errs) > 0,
			RetrieveExceptions: func() []error {
				retrieved = true
				return slices.Clone(done.errs)
			},
		})
	}

	if !retrieved && len(done.errs) > 0 {
		e.raise(done.errs)
	}
	return err
}

// raise hands errors to the fault handler outside the caller's stack.
func (e *Engine) raise(errs []error) {
	handler := e.faults
	go func() {
		for _, err := range errs {
			handler(err)
		}
	}()
}

func (e *Engine) logFault(err error) {
	e.logger.Error("unhandled listener error", "err", err)
}

// afterChange fans an applied write out to the global tracker and to the
// tracker of every active subscription.
func (e *Engine) afterChange(path domain.Path, oldValue, newValue any) {
	tracker.Record(e.global, observe.Same, path, oldValue, newValue)
	for _, sub := range e.subs {
		tracker.Record(sub.tracker, observe.Same, path, oldValue, newValue)
	}

	if e.hooks.OnChange != nil {
		e.hooks.OnChange(&domain.ChangeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventChange},
			Path:      path,
			OldValue:  oldValue,
			NewValue:  newValue,
			Depth:     e.boundary.Depth(),
		})
	}
}

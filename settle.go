package settle

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/settle/internal/logging"
	"github.com/aretw0/settle/internal/runtime"
	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/observe"
)

// Listener is notified once an update settled with changes it has not seen yet.
type Listener = runtime.Listener

// Subscription is the handle returned by Subscribe.
type Subscription = runtime.Subscription

// Manager is the high-level entry point for the settle library.
// It wraps the internal runtime and provides a simplified API for consumers.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	runtime *runtime.Engine

	beforeUpdate runtime.BeforeUpdateFunc
	afterUpdate  runtime.AfterUpdateFunc
	faults       runtime.FaultHandler
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	name         string
}

// Option defines a functional option for configuring the Manager.
type Option func(*Manager)

// WithBeforeUpdate sets a hook that runs against the mutable state at the
// start of every outermost update. Calling Update from it is an error.
func WithBeforeUpdate(fn func(state *observe.Object) error) Option {
	return func(m *Manager) {
		m.beforeUpdate = fn
	}
}

// WithAfterUpdate sets a hook that runs once an outermost update has notified
// every listener. Listener errors it does not retrieve are handed to the
// fault handler.
func WithAfterUpdate(fn func(info domain.AfterUpdate) error) Option {
	return func(m *Manager) {
		m.afterUpdate = fn
	}
}

// WithFaultHandler sets the receiver of listener errors that were not
// retrieved by the after-update hook. By default they are logged.
func WithFaultHandler(fn func(err error)) Option {
	return func(m *Manager) {
		m.faults = fn
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithName labels the manager. The name is attached to every log record.
func WithName(name string) Option {
	return func(m *Manager) {
		m.name = name
	}
}

// New creates a Manager owning initial. The map and everything reachable
// from it become the state graph and must not be used by the caller
// afterwards. A nil map starts from an empty object.
func New(initial map[string]any, opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}

	// Ensure logger is initialized so the runtime default is not overwritten with nil
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.name != "" {
		m.logger = m.logger.With("manager", m.name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(m.hooks),
		runtime.WithLogger(m.logger),
		runtime.WithBeforeUpdate(m.beforeUpdate),
		runtime.WithAfterUpdate(m.afterUpdate),
	}
	if m.faults != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithFaultHandler(m.faults))
	}

	m.runtime = runtime.NewEngine(initial, runtimeOpts...)
	return m
}

// NewFromStruct creates a Manager whose initial state is the plain-map form
// of v, using its mapstructure tags for key names.
func NewFromStruct(v any, opts ...Option) (*Manager, error) {
	initial, err := observe.FromStruct(v)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	return New(initial, opts...), nil
}

// State returns the live read-only view of the state.
func (m *Manager) State() *observe.Object {
	return m.runtime.State()
}

// HasChanged reports whether anything at or below path changed since the
// manager was created (or since the path was reconciled). With no path it
// reports whether anything changed at all.
func (m *Manager) HasChanged(path ...string) bool {
	return m.runtime.HasChanged(path...)
}

// Changes lists every path currently marked as changed.
func (m *Manager) Changes() []domain.Path {
	return m.runtime.Changes()
}

// Reconcile forgets the changes recorded at or below path and returns how
// many entries were cleared.
func (m *Manager) Reconcile(path ...string) int {
	return m.runtime.Reconcile(path...)
}

// Update runs fn against the mutable state as one atomic unit.
// Nested calls join the outermost one; listeners are notified once, when the
// outermost call completes.
func (m *Manager) Update(fn func(state *observe.Object) error) error {
	return m.runtime.Update(fn)
}

// Subscribe registers listener after every existing one.
func (m *Manager) Subscribe(listener Listener) *Subscription {
	return m.runtime.Subscribe(listener)
}

// Name returns the label set with WithName.
func (m *Manager) Name() string {
	return m.name
}

// Depth returns the current update nesting depth.
func (m *Manager) Depth() int {
	return m.runtime.Depth()
}

// Listeners returns the number of registered listeners.
func (m *Manager) Listeners() int {
	return m.runtime.Listeners()
}

// UpdateValue runs fn as an update and returns its result.
// The result is the zero value whenever the returned error is non-nil.
func UpdateValue[T any](m *Manager, fn func(state *observe.Object) (T, error)) (T, error) {
	var result T
	err := m.Update(func(state *observe.Object) error {
		v, err := fn(state)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/settle"
	"github.com/aretw0/settle/internal/logging"
	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/observe"
	"github.com/aretw0/settle/pkg/scenario"
	"github.com/google/uuid"
)

// ErrReactionLimit is reported when a step applied more reactions than allowed.
var ErrReactionLimit = errors.New("reaction limit exceeded")

// Runner executes scenario documents.
type Runner struct {
	// Handler receives the report. Defaults to Discard.
	Handler Handler

	// Logger is used for run logging and handed to the manager.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Hooks are merged into the manager's lifecycle hooks.
	Hooks domain.LifecycleHooks

	// RunID identifies the run in every report. Generated when empty.
	RunID string

	ReactionLimit int
	StopOnError   bool
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		Handler:       Discard,
		Logger:        logging.NewNop(),
		ReactionLimit: DefaultReactionLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes doc with a Runner reporting to handler.
func Run(doc *scenario.Document, handler Handler, opts ...Option) (*Summary, error) {
	return New(append([]Option{WithHandler(handler)}, opts...)...).Run(doc)
}

// Run executes every step of doc and returns the summary also passed to
// Handler.Finish. Failing steps do not make Run fail; they are counted in
// Summary.Failed. Run fails on an invalid document or a handler error.
func (r *Runner) Run(doc *scenario.Document) (*Summary, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	id := r.RunID
	if id == "" {
		id = uuid.NewString()
	}
	logger := r.Logger.With("run_id", id)

	s := &session{runner: r, logger: logger}
	for _, sub := range doc.Subscribers {
		s.names = append(s.names, sub.Name)
	}

	own := domain.LifecycleHooks{
		OnNotify: func(ev *domain.NotifyEvent) { s.pass = ev.Pass },
		OnSettle: func(ev *domain.SettleEvent) { s.settled = ev },
	}
	s.manager = settle.New(doc.Initial,
		settle.WithName(doc.Name),
		settle.WithLogger(logger),
		settle.WithLifecycleHooks(own.Merge(r.Hooks)),
		settle.WithAfterUpdate(s.afterUpdate),
	)
	for _, sub := range doc.Subscribers {
		s.manager.Subscribe(s.listener(sub))
	}

	if err := r.Handler.Start(RunInfo{
		ID:          id,
		Scenario:    doc.Name,
		Subscribers: s.names,
		Steps:       len(doc.Steps),
	}); err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}

	started := time.Now()
	sum := &Summary{ID: id}
	for i, step := range doc.Steps {
		res := s.apply(i, step)
		sum.Steps++
		sum.Notifications += res.Notifications
		if res.Failed() {
			sum.Failed++
		}
		if err := r.Handler.StepDone(res); err != nil {
			return nil, fmt.Errorf("handler: %w", err)
		}
		if res.Error != "" && r.StopOnError {
			break
		}
	}
	sum.State = s.manager.State().Export()
	sum.Duration = time.Since(started)

	logger.Info("run finished", "steps", sum.Steps, "failed", sum.Failed)
	if err := r.Handler.Finish(*sum); err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}
	return sum, nil
}

// session is the mutable bookkeeping of one run.
type session struct {
	runner  *Runner
	logger  *slog.Logger
	manager *settle.Manager
	names   []string

	step      string
	pass      int
	reactions int
	settled   *domain.SettleEvent
	faults    []Fault
}

func (s *session) apply(index int, step scenario.Step) StepResult {
	name := step.Name
	if name == "" {
		name = fmt.Sprintf("step %d", index+1)
	}
	s.step, s.pass, s.reactions = name, 0, 0
	s.settled, s.faults = nil, nil
	s.manager.Reconcile()

	started := time.Now()
	err := s.manager.Update(func(state *observe.Object) error {
		return scenario.ApplyAll(state, step.Ops)
	})

	res := StepResult{
		Index:    index,
		Name:     name,
		Changes:  changedPaths(s.manager.Changes()),
		Faults:   s.faults,
		Duration: time.Since(started),
	}
	if s.settled != nil {
		res.Passes = s.settled.Passes
		res.Notifications = s.settled.Notifications
	}
	if err != nil {
		res.Error = err.Error()
		s.logger.Warn("step failed", "step", name, "err", err)
	} else {
		s.logger.Debug("step applied", "step", name, "changes", len(res.Changes), "passes", res.Passes)
	}
	return res
}

func (s *session) listener(sub scenario.Subscriber) settle.Listener {
	return func(changed domain.ChangedFunc, _ *observe.Object) error {
		n := Notification{Step: s.step, Subscriber: sub.Name, Pass: s.pass}
		for _, path := range sub.Watch {
			if changed(path...) {
				n.Changed = append(n.Changed, path.String())
			}
		}
		var todo []scenario.Reaction
		for _, reaction := range sub.Reactions {
			if changed(reaction.When...) {
				todo = append(todo, reaction)
			}
		}
		if len(sub.Watch) > 0 && len(n.Changed) == 0 && len(todo) == 0 {
			return nil
		}

		n.Reactions = len(todo)
		if err := s.runner.Handler.Notification(n); err != nil {
			return fmt.Errorf("report: %w", err)
		}

		for _, reaction := range todo {
			s.reactions++
			if s.reactions > s.runner.ReactionLimit {
				return fmt.Errorf("%w (%d)", ErrReactionLimit, s.runner.ReactionLimit)
			}
			err := s.manager.Update(func(state *observe.Object) error {
				return scenario.ApplyAll(state, reaction.Ops)
			})
			if err != nil {
				return fmt.Errorf("reaction on %s: %w", reaction.When, err)
			}
		}
		return nil
	}
}

func (s *session) afterUpdate(info domain.AfterUpdate) error {
	if !info.ExceptionOccurred {
		return nil
	}
	for _, err := range info.RetrieveExceptions() {
		fault := Fault{Subscriber: "?", Error: err.Error()}
		var lerr *domain.ListenerError
		if errors.As(err, &lerr) && lerr.Index < len(s.names) {
			fault.Subscriber = s.names[lerr.Index]
			fault.Error = lerr.Err.Error()
		}
		s.faults = append(s.faults, fault)
	}
	return nil
}

func changedPaths(paths []domain.Path) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	slices.Sort(out)
	return out
}

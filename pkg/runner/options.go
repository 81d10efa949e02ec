package runner

import (
	"log/slog"

	"github.com/aretw0/settle/pkg/domain"
)

// DefaultReactionLimit bounds the reactions applied during a single step.
const DefaultReactionLimit = 100

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures where the run report goes.
func WithHandler(handler Handler) Option {
	return func(r *Runner) {
		if handler != nil {
			r.Handler = handler
		}
	}
}

// WithLogger configures the structured logger. It is also handed to the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithHooks adds lifecycle hooks to the manager, e.g. observability.Metrics.Hooks().
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = r.Hooks.Merge(hooks)
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.RunID = id
	}
}

// WithReactionLimit changes the maximum number of reactions per step.
// Reactions that keep triggering each other fail once the limit is reached.
func WithReactionLimit(n int) Option {
	return func(r *Runner) {
		r.ReactionLimit = n
	}
}

// WithStopOnError makes the run stop after the first step whose update failed.
func WithStopOnError(stop bool) Option {
	return func(r *Runner) {
		r.StopOnError = stop
	}
}

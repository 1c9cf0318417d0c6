package statesync

import (
	"log/slog"
	"time"

	"github.com/aretw0/handheld/pkg/domain"
)

// Option configures the Synchronizer.
type Option func(*Synchronizer)

// WithLogger configures a logger for the Synchronizer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.SyncHooks) Option {
	return func(s *Synchronizer) {
		s.hooks = hooks
	}
}

// WithInitialState seeds the snapshot held before the first transition.
func WithInitialState(state domain.WorkflowState) Option {
	return func(s *Synchronizer) {
		s.state = state
	}
}

// WithTimeout bounds every transition request. Zero disables the bound,
// leaving cancellation to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.timeout = d
	}
}

package handheld

import (
	"log/slog"
	"time"

	"github.com/aretw0/handheld/pkg/dispatch"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Option defines a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLogger sets a custom structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithHooks registers transition and observer-panic hooks.
func WithHooks(hooks domain.SyncHooks) Option {
	return func(r *Runtime) {
		r.hooks = hooks
	}
}

// WithInitialState seeds the synchronizer snapshot (default inspector_state).
func WithInitialState(state domain.WorkflowState) Option {
	return func(r *Runtime) {
		r.initialState = &state
	}
}

// WithRestoredState resumes from a journaled snapshot. The synchronizer
// starts from it and the screen and chrome render it. Its report commands
// are not replayed.
func WithRestoredState(state domain.WorkflowState) Option {
	return func(r *Runtime) {
		r.restored = &state
	}
}

// WithTimeout bounds every transition round trip.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithUIState sets the state the chrome renders at start (default standby_state).
func WithUIState(state string) Option {
	return func(r *Runtime) {
		r.uiState = state
	}
}

// WithScreenSource sets the media source shown at start (default /video_feed).
func WithScreenSource(src string) Option {
	return func(r *Runtime) {
		r.screenSource = src
	}
}

// WithInitialPage creates report page 1 at start.
func WithInitialPage(on bool) Option {
	return func(r *Runtime) {
		r.initialPage = on
	}
}

// WithResetTexts overrides the default texts restored by form resets.
func WithResetTexts(texts map[string]string) Option {
	return func(r *Runtime) {
		r.resetTexts = texts
	}
}

// WithDeleteEndpoint overrides the endpoint of report delete controls.
func WithDeleteEndpoint(endpoint string) Option {
	return func(r *Runtime) {
		r.deleteEndpoint = endpoint
	}
}

// WithControls adds or replaces operator control bindings.
func WithControls(controls ...dispatch.Control) Option {
	return func(r *Runtime) {
		r.controls = append(r.controls, controls...)
	}
}

// WithObservers subscribes extra observers after the renderers.
func WithObservers(observers ...ports.Observer) Option {
	return func(r *Runtime) {
		r.observers = append(r.observers, observers...)
	}
}

// WithPageObserver is called with the live page count after report updates.
func WithPageObserver(fn func(pages int)) Option {
	return func(r *Runtime) {
		r.pageObserver = fn
	}
}

// WithEditModeObserver is called with the new value whenever report edit mode
// changes through the runtime.
func WithEditModeObserver(fn func(on bool)) Option {
	return func(r *Runtime) {
		r.editObservers = append(r.editObservers, fn)
	}
}

// WithTemplate reads the report page template from src at start.
// It only applies to report views that can load templates.
func WithTemplate(src ports.TemplateSource, path string) Option {
	return func(r *Runtime) {
		r.templateSource = src
		r.templatePath = path
	}
}

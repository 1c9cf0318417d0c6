package render

import (
	"log/slog"
	"sync"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Screen keeps the single external media source in sync with data.screen.
type Screen struct {
	view   ports.ScreenView
	logger *slog.Logger

	mu     sync.Mutex
	source string
}

var _ ports.Observer = (*Screen)(nil)

// NewScreen creates a screen renderer over view.
func NewScreen(view ports.ScreenView, opts ...Option) *Screen {
	cfg := newConfig(opts)
	return &Screen{view: view, logger: cfg.logger}
}

// Initialize shows the initial source.
func (s *Screen) Initialize(source string) {
	if source == "" {
		source = DefaultScreenSource
	}
	s.set(source)
}

// Notify implements ports.Observer.
func (s *Screen) Notify(state domain.WorkflowState) { s.Update(state) }

// Update switches the source when the snapshot carries one.
// The last known source persists otherwise.
func (s *Screen) Update(state domain.WorkflowState) {
	if src := state.Screen(); src != "" {
		s.set(src)
	}
}

// Source returns the last applied source.
func (s *Screen) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Screen) set(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src != s.source {
		s.logger.Debug("Screen source changed", "source", src)
	}
	s.source = src
	s.view.SetSource(src)
}

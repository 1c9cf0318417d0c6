package render

import (
	"log/slog"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
)

// DefaultScreenSource is the media source shown before the first snapshot.
const DefaultScreenSource = "/video_feed"

// DefaultUIState is the state the chrome is rendered for at startup.
const DefaultUIState = "standby_state"

// DefaultResetTexts holds the text restored by "text:<key>" reset hints.
var DefaultResetTexts = map[string]string{
	"default-criteria": "Is that a defect according to quality criteria?",
}

type config struct {
	logger         *slog.Logger
	resetTexts     map[string]string
	deleteEndpoint string
	pageObserver   func(pages int)
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:         logging.NewNop(),
		resetTexts:     DefaultResetTexts,
		deleteEndpoint: domain.DefaultDeleteEndpoint,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a renderer. Options a renderer does not use are ignored.
type Option func(*config)

// WithLogger configures a logger for the renderer.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithResetTexts replaces the table used by "text:<key>" reset hints.
func WithResetTexts(texts map[string]string) Option {
	return func(c *config) {
		c.resetTexts = texts
	}
}

// WithDeleteEndpoint sets the endpoint page delete controls post to.
func WithDeleteEndpoint(endpoint string) Option {
	return func(c *config) {
		if endpoint != "" {
			c.deleteEndpoint = endpoint
		}
	}
}

// WithPageObserver reports the live page count after each report update.
func WithPageObserver(fn func(pages int)) Option {
	return func(c *config) {
		c.pageObserver = fn
	}
}

package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
)

// Recorder is an observer that journals every snapshot of one station.
// Journal failures are logged and never reach the synchronizer.
type Recorder struct {
	manager *Manager
	station string
	timeout time.Duration
	logger  *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the recorder logger.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithRecorderTimeout bounds each journal write.
func WithRecorderTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRecorder creates a recorder journaling into manager under station.
func NewRecorder(manager *Manager, station string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		manager: manager,
		station: station,
		timeout: 5 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Notify implements ports.Observer.
func (r *Recorder) Notify(state domain.WorkflowState) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	record, err := r.manager.Append(ctx, r.station, state)
	if err != nil {
		r.logger.Error("Failed to journal snapshot",
			"station", r.station,
			"current_state", state.CurrentState,
			"err", err,
		)
		return
	}
	r.logger.Debug("Journaled snapshot",
		"station", r.station,
		"current_state", state.CurrentState,
		"history_len", len(record.History),
	)
}

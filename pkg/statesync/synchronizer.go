package statesync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Synchronizer holds the current snapshot and fans it out to observers.
type Synchronizer struct {
	backend ports.Backend

	mu    sync.RWMutex // guards state
	state domain.WorkflowState

	subMu  sync.Mutex // guards subs and nextID
	subs   []*Subscription
	nextID uint64

	// notifyMu serializes apply+notify so deliveries of two transitions
	// never interleave.
	notifyMu sync.Mutex

	timeout time.Duration
	hooks   domain.SyncHooks
	logger  *slog.Logger
}

var _ ports.Transitioner = (*Synchronizer)(nil)

// New creates a Synchronizer that talks to backend.
func New(backend ports.Backend, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		backend: backend,
		state:   domain.NewState(domain.DefaultInitialState),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Synchronizer) State() domain.WorkflowState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Endpoint returns the default endpoint derived from a workflow state.
func Endpoint(currentState string) string {
	return "/states/" + url.PathEscape(currentState)
}

// Transition performs one round trip to the backend.
// An empty endpoint resolves to the path derived from the current state.
//
// On success the snapshot is replaced by
// {nextState ?? previous state, parsed actions, decoded data} and every
// observer is notified. On failure the snapshot is untouched, no observer
// runs, and the returned error wraps one of the transport sentinels.
func (s *Synchronizer) Transition(ctx context.Context, payload domain.ActionPayload, endpoint string) error {
	prev := s.State()
	if endpoint == "" {
		endpoint = Endpoint(prev.CurrentState)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	event := &domain.TransitionEvent{
		Timestamp: start,
		From:      prev.CurrentState,
		Endpoint:  endpoint,
		Action:    payload.Action,
	}

	next, err := s.request(ctx, endpoint, payload)
	event.Duration = time.Since(start)
	if err != nil {
		event.Err = err
		s.logger.Error("State transition failed",
			"current_state", prev.CurrentState,
			"endpoint", endpoint,
			"action", payload.Action,
			"err", err,
		)
		s.emitTransition(ctx, event)
		return err
	}

	s.notifyMu.Lock()
	// The previous name is re-read under the notification lock so a
	// concurrent transition that resolved first is the one we fall back to.
	if next.CurrentState == "" {
		next.CurrentState = s.State().CurrentState
	}
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.notify(ctx, next)
	s.notifyMu.Unlock()

	event.To = next.CurrentState
	s.logger.Info("State transition applied",
		"from", prev.CurrentState,
		"to", next.CurrentState,
		"endpoint", endpoint,
		"commands", len(next.Commands),
	)
	s.emitTransition(ctx, event)
	return nil
}

// request performs the network call and builds the replacement snapshot.
// CurrentState is left empty when the backend omitted nextState.
func (s *Synchronizer) request(ctx context.Context, endpoint string, payload domain.ActionPayload) (domain.WorkflowState, error) {
	resp, err := s.backend.Send(ctx, endpoint, payload)
	if err != nil {
		return domain.WorkflowState{}, fmt.Errorf("transition %s: %w", endpoint, err)
	}
	if resp == nil {
		return domain.WorkflowState{}, fmt.Errorf("transition %s: %w: empty response", endpoint, domain.ErrMalformedResponse)
	}

	data, err := domain.DecodeData(resp.Data)
	if err != nil {
		return domain.WorkflowState{}, fmt.Errorf("transition %s: %w", endpoint, err)
	}

	next := domain.WorkflowState{
		Data:     data,
		Commands: domain.ParseCommands(resp.Actions, data),
	}
	if resp.NextState != nil {
		next.CurrentState = *resp.NextState
	}
	return next, nil
}

func (s *Synchronizer) emitTransition(ctx context.Context, event *domain.TransitionEvent) {
	if s.hooks.OnTransition != nil {
		s.hooks.OnTransition(ctx, event)
	}
}

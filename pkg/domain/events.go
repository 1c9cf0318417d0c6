package domain

import (
	"context"
	"time"
)

// TransitionEvent describes one completed transition attempt.
type TransitionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	From      string        `json:"from"`
	To        string        `json:"to,omitempty"`
	Endpoint  string        `json:"endpoint"`
	Action    string        `json:"action"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// ObserverPanicEvent describes an observer that panicked during delivery.
type ObserverPanicEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	CurrentState string    `json:"current_state"`
	Recovered    any       `json:"recovered"`
}

// SyncHooks defines callbacks for synchronizer observability.
type SyncHooks struct {
	OnTransition    func(context.Context, *TransitionEvent)
	OnObserverPanic func(context.Context, *ObserverPanicEvent)
}

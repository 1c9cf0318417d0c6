package ports

import "github.com/aretw0/handheld/pkg/domain"

// Observer receives the full snapshot after every successful transition.
// Notify runs synchronously; implementations must not retain the snapshot's
// maps for mutation.
type Observer interface {
	Notify(state domain.WorkflowState)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(state domain.WorkflowState)

// Notify calls f(state).
func (f ObserverFunc) Notify(state domain.WorkflowState) {
	f(state)
}

package ports

import (
	"context"
	"io"

	"github.com/aretw0/handheld/pkg/domain"
)

// Backend performs transitions against the authoritative workflow service.
type Backend interface {
	// Send posts the payload to endpoint and returns the decoded response.
	// Errors wrap domain.ErrTransport, domain.ErrUnexpectedStatus or
	// domain.ErrMalformedResponse.
	Send(ctx context.Context, endpoint string, payload domain.ActionPayload) (*domain.TransitionResponse, error)
}

// Transitioner is the narrow view of the synchronizer used by components that
// emit actions of their own (delete controls, the dispatcher).
type Transitioner interface {
	Transition(ctx context.Context, payload domain.ActionPayload, endpoint string) error
	State() domain.WorkflowState
}

// TemplateSource opens a static document by relative path.
type TemplateSource interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/handheld/pkg/domain"
)

// Handler answers one scripted transition.
type Handler func(ctx context.Context, payload domain.ActionPayload) (*domain.TransitionResponse, error)

// Call records one request received by the Backend.
type Call struct {
	Endpoint string
	Payload  domain.ActionPayload
}

// Backend implements ports.Backend with scripted handlers.
// It is used by tests and by the offline demo mode of the CLI.
type Backend struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	fallback Handler
	calls    []Call
}

// NewBackend creates an empty scripted backend.
// Unscripted endpoints fail with domain.ErrUnexpectedStatus.
func NewBackend() *Backend {
	return &Backend{
		handlers: make(map[string][]Handler),
	}
}

// Handle queues handlers for an endpoint. Queued handlers are consumed in
// order; the last one keeps answering once the queue is down to it.
func (b *Backend) Handle(endpoint string, handlers ...Handler) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[endpoint] = append(b.handlers[endpoint], handlers...)
	return b
}

// Fallback answers every endpoint without a handler.
func (b *Backend) Fallback(h Handler) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = h
	return b
}

// Send implements ports.Backend.
func (b *Backend) Send(ctx context.Context, endpoint string, payload domain.ActionPayload) (*domain.TransitionResponse, error) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Endpoint: endpoint, Payload: payload})
	h := b.fallback
	if queue := b.handlers[endpoint]; len(queue) > 0 {
		h = queue[0]
		if len(queue) > 1 {
			b.handlers[endpoint] = queue[1:]
		}
	}
	b.mu.Unlock()

	if h == nil {
		return nil, fmt.Errorf("%w: no handler for %s", domain.ErrUnexpectedStatus, endpoint)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return h(ctx, payload)
}

// Calls returns the requests received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Respond answers with a fixed response.
func Respond(resp *domain.TransitionResponse) Handler {
	return func(context.Context, domain.ActionPayload) (*domain.TransitionResponse, error) {
		return resp, nil
	}
}

// Fail answers with a fixed error.
func Fail(err error) Handler {
	return func(context.Context, domain.ActionPayload) (*domain.TransitionResponse, error) {
		return nil, err
	}
}

// Response builds a transition response. An empty next state is omitted,
// meaning "stay".
func Response(next string, actions, data map[string]any) *domain.TransitionResponse {
	resp := &domain.TransitionResponse{Actions: actions, Data: data}
	if next != "" {
		resp.NextState = &next
	}
	return resp
}

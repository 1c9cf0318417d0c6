package observability

import (
	"context"

	"github.com/aretw0/handheld/pkg/domain"
)

// ChainHooks combines hooks so each event reaches every non-nil callback in
// order.
func ChainHooks(hooks ...domain.SyncHooks) domain.SyncHooks {
	return domain.SyncHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnObserverPanic: func(ctx context.Context, e *domain.ObserverPanicEvent) {
			for _, h := range hooks {
				if h.OnObserverPanic != nil {
					h.OnObserverPanic(ctx, e)
				}
			}
		},
	}
}

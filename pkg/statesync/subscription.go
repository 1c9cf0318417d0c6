package statesync

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Subscription is the capability token returned by Subscribe.
// Unsubscribe removes exactly this registration, even when the same observer
// was subscribed more than once.
type Subscription struct {
	id       uint64
	observer ports.Observer
	owner    *Synchronizer
	once     sync.Once
}

// Unsubscribe stops delivery to the observer. It is idempotent.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.owner.remove(sub.id)
	})
}

// Subscribe registers an observer. Observers are notified in registration order.
func (s *Synchronizer) Subscribe(observer ports.Observer) *Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	sub := &Subscription{id: s.nextID, observer: observer, owner: s}
	s.subs = append(s.subs, sub)
	return sub
}

// Subscribers returns the number of live subscriptions.
func (s *Synchronizer) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Synchronizer) remove(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// notify delivers state to a copy of the subscriber list so observers may
// subscribe or unsubscribe from inside Notify.
func (s *Synchronizer) notify(ctx context.Context, state domain.WorkflowState) {
	s.subMu.Lock()
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		s.deliver(ctx, sub.observer, state)
	}
}

// deliver isolates a single observer: a panic is logged and reported, and
// delivery continues with the next observer.
func (s *Synchronizer) deliver(ctx context.Context, observer ports.Observer, state domain.WorkflowState) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Observer panicked during delivery",
				"current_state", state.CurrentState,
				"recovered", r,
			)
			if s.hooks.OnObserverPanic != nil {
				s.hooks.OnObserverPanic(ctx, &domain.ObserverPanicEvent{
					Timestamp:    time.Now(),
					CurrentState: state.CurrentState,
					Recovered:    r,
				})
			}
		}
	}()
	observer.Notify(state)
}

package statesync_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/handheld/pkg/adapters/memory"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/aretw0/handheld/pkg/statesync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "/states/standby_state", statesync.Endpoint("standby_state"))
	assert.Equal(t, "/states/a%2Fb", statesync.Endpoint("a/b"))
}

func TestSynchronizer_DefaultState(t *testing.T) {
	s := statesync.New(memory.NewBackend())
	state := s.State()
	assert.Equal(t, domain.DefaultInitialState, state.CurrentState)
	assert.Nil(t, state.Data)
	assert.Empty(t, state.Commands)
}

func TestSynchronizer_TransitionAppliesNextState(t *testing.T) {
	backend := memory.NewBackend().Handle("/states/standby_state", memory.Respond(memory.Response(
		"inspecting",
		map[string]any{"add_page": true, "page_number": 1},
		map[string]any{"screen": "/cam/1", "report": map[string]any{}},
	)))
	s := statesync.New(backend, statesync.WithInitialState(domain.NewState("standby_state")))

	var got []domain.WorkflowState
	s.Subscribe(ports.ObserverFunc(func(state domain.WorkflowState) {
		got = append(got, state)
	}))

	err := s.Transition(context.Background(), domain.ActionPayload{Action: "capture"}, "")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "inspecting", got[0].CurrentState)
	assert.Equal(t, "/cam/1", got[0].Screen())
	assert.Equal(t, []domain.Command{domain.AddPage(1)}, got[0].Commands)
	assert.Equal(t, got[0], s.State())

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "capture", calls[0].Payload.Action)
}

// A response without nextState keeps the previous state and still succeeds.
func TestSynchronizer_MissingNextStateStays(t *testing.T) {
	backend := memory.NewBackend().Handle("/states/label_state", memory.Respond(memory.Response(
		"", nil, map[string]any{"ui-content": map[string]any{"error": "Serial required"}},
	)))
	s := statesync.New(backend, statesync.WithInitialState(domain.NewState("label_state")))

	notified := 0
	s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) { notified++ }))

	err := s.Transition(context.Background(), domain.ActionPayload{Action: "submit"}, "")
	require.NoError(t, err)
	assert.Equal(t, "label_state", s.State().CurrentState)
	assert.Equal(t, "Serial required", s.State().Content("error"))
	assert.Equal(t, 1, notified)
}

func TestSynchronizer_FailureIsAtomic(t *testing.T) {
	tests := []struct {
		name    string
		handler memory.Handler
		want    error
	}{
		{"transport", memory.Fail(domain.ErrTransport), domain.ErrTransport},
		{"status", memory.Fail(domain.ErrUnexpectedStatus), domain.ErrUnexpectedStatus},
		{"empty response", memory.Respond(nil), domain.ErrMalformedResponse},
		{"undecodable data", memory.Respond(memory.Response("x", nil, map[string]any{
			"n_inspection": map[string]any{"bad": true},
		})), domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := domain.WorkflowState{
				CurrentState: "inspecting",
				Data:         &domain.Data{Screen: "/video_feed"},
				Commands:     []domain.Command{domain.UpdatePage(1)},
			}
			backend := memory.NewBackend().Handle("/states/inspecting", tt.handler)
			s := statesync.New(backend, statesync.WithInitialState(initial))

			notified := false
			s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) { notified = true }))

			err := s.Transition(context.Background(), domain.ActionPayload{Action: "yes"}, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, notified, "observers must not run on failure")
			assert.Equal(t, initial, s.State())
		})
	}
}

func TestSynchronizer_EndpointOverride(t *testing.T) {
	backend := memory.NewBackend().Handle(domain.DefaultDeleteEndpoint, memory.Respond(memory.Response("", nil, nil)))
	s := statesync.New(backend)

	err := s.Transition(context.Background(), domain.ActionPayload{
		Action: domain.DeletePageAction,
		Data:   map[string]any{"n_page": 2},
	}, domain.DefaultDeleteEndpoint)
	require.NoError(t, err)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.DefaultDeleteEndpoint, calls[0].Endpoint)
	assert.Equal(t, domain.DefaultInitialState, s.State().CurrentState)
}

func TestSynchronizer_NotifiesInOrderAndIsolatesPanics(t *testing.T) {
	backend := memory.NewBackend().Fallback(memory.Respond(memory.Response("next", nil, nil)))

	var panics []*domain.ObserverPanicEvent
	s := statesync.New(backend, statesync.WithHooks(domain.SyncHooks{
		OnObserverPanic: func(_ context.Context, e *domain.ObserverPanicEvent) {
			panics = append(panics, e)
		},
	}))

	var order []string
	s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) { order = append(order, "first") }))
	s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) { panic("boom") }))
	s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) { order = append(order, "third") }))

	require.NoError(t, s.Transition(context.Background(), domain.ActionPayload{}, ""))
	assert.Equal(t, []string{"first", "third"}, order)
	require.Len(t, panics, 1)
	assert.Equal(t, "boom", panics[0].Recovered)
	assert.Equal(t, "next", panics[0].CurrentState)
}

func TestSynchronizer_UnsubscribeByToken(t *testing.T) {
	backend := memory.NewBackend().Fallback(memory.Respond(memory.Response("", nil, nil)))
	s := statesync.New(backend)

	count := 0
	obs := ports.ObserverFunc(func(domain.WorkflowState) { count++ })
	first := s.Subscribe(obs)
	s.Subscribe(obs)
	assert.Equal(t, 2, s.Subscribers())

	first.Unsubscribe()
	first.Unsubscribe()
	assert.Equal(t, 1, s.Subscribers(), "unsubscribe removes only its own registration")

	require.NoError(t, s.Transition(context.Background(), domain.ActionPayload{}, ""))
	assert.Equal(t, 1, count)
}

func TestSynchronizer_UnsubscribeDuringDelivery(t *testing.T) {
	backend := memory.NewBackend().Fallback(memory.Respond(memory.Response("", nil, nil)))
	s := statesync.New(backend)

	var sub *statesync.Subscription
	calls := 0
	sub = s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) {
		calls++
		sub.Unsubscribe()
	}))
	later := 0
	s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) { later++ }))

	ctx := context.Background()
	require.NoError(t, s.Transition(ctx, domain.ActionPayload{}, ""))
	require.NoError(t, s.Transition(ctx, domain.ActionPayload{}, ""))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, later)
}

func TestSynchronizer_HooksReportTransitions(t *testing.T) {
	backend := memory.NewBackend().
		Handle("/states/a", memory.Respond(memory.Response("b", nil, nil))).
		Handle("/states/b", memory.Fail(domain.ErrTransport))

	var events []*domain.TransitionEvent
	s := statesync.New(backend,
		statesync.WithInitialState(domain.NewState("a")),
		statesync.WithHooks(domain.SyncHooks{
			OnTransition: func(_ context.Context, e *domain.TransitionEvent) { events = append(events, e) },
		}),
	)

	ctx := context.Background()
	require.NoError(t, s.Transition(ctx, domain.ActionPayload{Action: "go"}, ""))
	require.Error(t, s.Transition(ctx, domain.ActionPayload{Action: "again"}, ""))

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].From)
	assert.Equal(t, "b", events[0].To)
	assert.Equal(t, "/states/a", events[0].Endpoint)
	assert.NoError(t, events[0].Err)
	assert.Equal(t, "b", events[1].From)
	assert.Empty(t, events[1].To)
	assert.ErrorIs(t, events[1].Err, domain.ErrTransport)
}

func TestSynchronizer_Timeout(t *testing.T) {
	backend := memory.NewBackend().Fallback(func(ctx context.Context, _ domain.ActionPayload) (*domain.TransitionResponse, error) {
		<-ctx.Done()
		return nil, errors.Join(domain.ErrTransport, ctx.Err())
	})
	s := statesync.New(backend, statesync.WithTimeout(10*time.Millisecond))

	err := s.Transition(context.Background(), domain.ActionPayload{}, "")
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.DefaultInitialState, s.State().CurrentState)
}

// Deliveries of concurrent transitions never interleave.
func TestSynchronizer_SerializedNotification(t *testing.T) {
	backend := memory.NewBackend().Fallback(memory.Respond(memory.Response("", nil, nil)))
	s := statesync.New(backend)

	var mu sync.Mutex
	inside := 0
	overlap := false
	s.Subscribe(ports.ObserverFunc(func(domain.WorkflowState) {
		mu.Lock()
		inside++
		if inside > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inside--
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Transition(context.Background(), domain.ActionPayload{}, "")
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
}

package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/oklog/ulid/v2"
)

// Stream event names.
const (
	EventState    = "state"
	EventEditMode = "edit-mode"
)

// Event is one server-sent event.
type Event struct {
	ID   string
	Name string
	Data string
}

// StreamManager fans events out to the connected SSE clients.
// It is a ports.Observer broadcasting every snapshot.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	buffer      int
	logger      *slog.Logger
}

var _ ports.Observer = (*StreamManager)(nil)

// NewStreamManager creates a manager whose clients buffer up to buffer events.
func NewStreamManager(buffer int, logger *slog.Logger) *StreamManager {
	if buffer <= 0 {
		buffer = 10
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan Event]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a client. The returned cancel func closes the channel.
func (sm *StreamManager) Subscribe() (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, sm.buffer)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends an event to every client, dropping it for clients whose
// buffer is full.
func (sm *StreamManager) Broadcast(name string, data []byte) {
	ev := Event{ID: ulid.Make().String(), Name: name, Data: string(data)}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("Broadcasting event", "event", name, "event_id", ev.ID, "subscribers", len(sm.subscribers))
	for ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE client buffer full, dropping event", "event", name, "event_id", ev.ID)
		}
	}
}

// NotifyEditMode broadcasts a report edit mode change.
func (sm *StreamManager) NotifyEditMode(on bool) {
	data, err := json.Marshal(map[string]bool{"edit_mode": on})
	if err != nil {
		sm.logger.Error("Failed to encode edit mode for stream", "err", err)
		return
	}
	sm.Broadcast(EventEditMode, data)
}

// Notify implements ports.Observer.
func (sm *StreamManager) Notify(state domain.WorkflowState) {
	data, err := json.Marshal(state)
	if err != nil {
		sm.logger.Error("Failed to encode snapshot for stream", "err", err)
		return
	}
	sm.Broadcast(EventState, data)
}

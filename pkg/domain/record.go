package domain

import "time"

// Record is the journaled view of a station: its last snapshot and the
// ordered workflow states it went through.
type Record struct {
	Station   string        `json:"station"`
	State     WorkflowState `json:"state"`
	History   []string      `json:"history"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewRecord creates a record seeded with a snapshot.
func NewRecord(station string, state WorkflowState) *Record {
	return &Record{
		Station:   station,
		State:     state,
		History:   []string{state.CurrentState},
		UpdatedAt: time.Now().UTC(),
	}
}

// Apply stores a new snapshot, extending the history when the state changed.
func (r *Record) Apply(state WorkflowState) {
	if n := len(r.History); n == 0 || r.History[n-1] != state.CurrentState {
		r.History = append(r.History, state.CurrentState)
	}
	r.State = state
	r.UpdatedAt = time.Now().UTC()
}

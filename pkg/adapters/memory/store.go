package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/handheld/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the record in memory.
// Records are kept serialized so callers never share maps with the store.
func (s *Store) Save(ctx context.Context, station string, record *domain.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[station] = raw
	return nil
}

// Load retrieves the record from memory.
func (s *Store) Load(ctx context.Context, station string) (*domain.Record, error) {
	s.mu.RLock()
	raw, ok := s.data[station]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	var record domain.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, station string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, station)
	return nil
}

// List returns the stations with a record, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := make([]string, 0, len(s.data))
	for id := range s.data {
		stations = append(stations, id)
	}
	sort.Strings(stations)
	return stations, nil
}

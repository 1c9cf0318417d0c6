package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed journal lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates journal access, serializing writes per station.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a journal Manager over the given snapshot store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(station) after unlocking.
func (m *Manager) acquire(station string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[station]
	if !exists {
		entry = &lockEntry{}
		m.locks[station] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(station string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[station]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, station)
	}
}

// Load retrieves the journaled record of a station.
func (m *Manager) Load(ctx context.Context, station string) (*domain.Record, error) {
	var record *domain.Record
	err := m.WithLock(ctx, station, func(ctx context.Context) error {
		var err error
		record, err = m.store.Load(ctx, station)
		return err
	})
	return record, err
}

// LoadOrStart loads the record of a station, creating one seeded with
// initialState when the station has none.
func (m *Manager) LoadOrStart(ctx context.Context, station string, initialState domain.WorkflowState) (*domain.Record, error) {
	var record *domain.Record
	err := m.WithLock(ctx, station, func(ctx context.Context) error {
		var err error
		record, err = m.store.Load(ctx, station)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return fmt.Errorf("failed to check journal for %s: %w", station, err)
		}

		if initialState.CurrentState == "" {
			initialState = domain.NewState(domain.DefaultInitialState)
		}
		record = domain.NewRecord(station, initialState)

		// Persist immediately to reserve the station
		if err := m.store.Save(ctx, station, record); err != nil {
			return fmt.Errorf("failed to initialize journal for %s: %w", station, err)
		}
		return nil
	})
	return record, err
}

// Save persists the record of a station.
func (m *Manager) Save(ctx context.Context, station string, record *domain.Record) error {
	return m.WithLock(ctx, station, func(ctx context.Context) error {
		return m.store.Save(ctx, station, record)
	})
}

// Append loads the record of a station, applies state to it and saves it back
// under the station lock.
func (m *Manager) Append(ctx context.Context, station string, state domain.WorkflowState) (*domain.Record, error) {
	var record *domain.Record
	err := m.WithLock(ctx, station, func(ctx context.Context) error {
		var err error
		record, err = m.store.Load(ctx, station)
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			record = domain.NewRecord(station, state)
		case err != nil:
			return fmt.Errorf("failed to load journal for %s: %w", station, err)
		default:
			record.Apply(state)
		}
		return m.store.Save(ctx, station, record)
	})
	return record, err
}

// Delete removes the record of a station.
func (m *Manager) Delete(ctx context.Context, station string) error {
	return m.WithLock(ctx, station, func(ctx context.Context) error {
		return m.store.Delete(ctx, station)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the station.
func (m *Manager) WithLock(ctx context.Context, station string, fn func(context.Context) error) error {
	entry := m.acquire(station)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(station)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, station, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"station", station,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

package ports

import (
	"context"

	"github.com/aretw0/handheld/pkg/domain"
)

// SnapshotStore persists the journaled record of a station.
// This lets a restarted runtime resume from its last known snapshot.
type SnapshotStore interface {
	// Save persists the record for a station.
	Save(ctx context.Context, station string, record *domain.Record) error

	// Load retrieves the record for a station.
	// Returns domain.ErrRecordNotFound if the station has no record.
	Load(ctx context.Context, station string) (*domain.Record, error)

	// Delete removes the record for a station.
	Delete(ctx context.Context, station string) error

	// List returns the stations with a record.
	List(ctx context.Context) ([]string, error)
}

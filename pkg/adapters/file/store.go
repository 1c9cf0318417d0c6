package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/spf13/afero"
)

// DefaultBasePath is where records are kept when no path is configured.
var DefaultBasePath = filepath.Join(".handheld", "journal")

const ext = ".json"

// ErrInvalidStation is returned for empty station ids or ids that would escape
// the base directory.
var ErrInvalidStation = errors.New("invalid station id")

// Store implements ports.SnapshotStore on a filesystem.
// It stores records as JSON files in a configured directory.
type Store struct {
	fs       afero.Fs
	BasePath string
}

// New creates a Store on the OS filesystem.
// If basePath is empty, it defaults to DefaultBasePath.
func New(basePath string) *Store {
	return NewWithFs(afero.NewOsFs(), basePath)
}

// NewWithFs creates a Store on an arbitrary afero filesystem.
func NewWithFs(fs afero.Fs, basePath string) *Store {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Store{fs: fs, BasePath: basePath}
}

func (s *Store) path(station string) (string, error) {
	if station == "" || strings.ContainsAny(station, `/\`) || station == "." || station == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidStation, station)
	}
	return filepath.Join(s.BasePath, station+ext), nil
}

// Save persists the record to a JSON file atomically.
// It writes to a temporary file in the same directory, syncs it, and renames
// it over the destination.
func (s *Store) Save(ctx context.Context, station string, record *domain.Record) error {
	destPath, err := s.path(station)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure journal directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	tmpFile, err := afero.TempFile(s.fs, s.BasePath, "tmp-"+station+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = s.fs.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when dest exists.
	if _, err := s.fs.Stat(destPath); err == nil {
		if err := s.fs.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing record for overwrite: %w", err)
		}
	}

	if err := s.fs.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load retrieves the record from its JSON file.
func (s *Store) Load(ctx context.Context, station string) (*domain.Record, error) {
	filePath, err := s.path(station)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

// Delete removes the record file.
func (s *Store) Delete(ctx context.Context, station string) error {
	filePath, err := s.path(station)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// List returns the journaled stations, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	stations := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		stations = append(stations, strings.TrimSuffix(name, ext))
	}
	sort.Strings(stations)
	return stations, nil
}

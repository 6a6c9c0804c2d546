package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avoronin/kinogrid/internal/models"
)

// LoadSnapshot reads a pre-generated movies.json document. A missing or
// empty snapshot reports ok=false so the caller can fall back to live
// aggregation; a present but unreadable file is an error.
func LoadSnapshot(path string) (*models.Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if len(snapshot.Movies) == 0 {
		return nil, false, nil
	}
	return &snapshot, true, nil
}

// WriteSnapshot saves the collection as a movies.json document, replaced
// atomically so a crashed run never leaves a truncated snapshot behind.
func WriteSnapshot(path string, movies []models.Movie) error {
	snapshot := models.Snapshot{
		LastUpdated: time.Now().UTC(),
		TotalCount:  len(movies),
		Movies:      movies,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

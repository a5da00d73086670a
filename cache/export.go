package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ExportFormat is the on-disk representation of a cache snapshot. Snapshots
// let a warmed translation cache survive process restarts and move between
// environments.
type ExportFormat struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    map[string]string `json:"entries"`
}

// exportVersion is the current snapshot format version.
const exportVersion = 1

// Exportable is a cache that can enumerate its entries.
type Exportable interface {
	Entries() map[string]string
}

// Export writes all entries of an exportable cache to a JSON file.
func Export(c Exportable, path string) error {
	snapshot := ExportFormat{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    c.Entries(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write cache snapshot: %w", err)
	}
	return nil
}

// Import loads a JSON snapshot into a cache. Existing entries with the same
// keys are overwritten. It returns the number of entries imported.
func Import(c TranslationCache, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read cache snapshot: %w", err)
	}

	var snapshot ExportFormat
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return 0, fmt.Errorf("parse cache snapshot: %w", err)
	}
	if snapshot.Version != exportVersion {
		return 0, fmt.Errorf("unsupported cache snapshot version: %d", snapshot.Version)
	}

	imported := 0
	for key, value := range snapshot.Entries {
		if err := c.Set(key, value); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

package snapshot

import (
	"encoding/json"
	"os"

	"github.com/archlint/archlint/internal/archerr"
)

// Write persists a snapshot as pretty-printed UTF-8 JSON.
func Write(s *Snapshot, path string) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return archerr.Wrap(archerr.KindInternal, "encode snapshot", err)
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return archerr.Wrap(archerr.KindIo, "write snapshot", err)
	}
	return nil
}

// Read loads and validates a snapshot file.
func Read(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, archerr.Wrap(archerr.KindIo, "read snapshot", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, archerr.Wrap(archerr.KindSnapshot, "decode snapshot", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

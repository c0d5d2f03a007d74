// Package state persists the sync watermark between runs.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// State is the watermark record. LastIDOrder is the highest order id
// confirmed processed; it never decreases across successful runs.
type State struct {
	LastIDOrder int `json:"last_id_order"`
}

// Store reads and writes the state file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the given state file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted state. A missing or corrupt file is treated
// as "start from zero", never as fatal.
func (s *Store) Load() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("state file unreadable, starting from zero", "path", s.path, "error", err)
		}
		return State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("state file invalid, starting from zero", "path", s.path, "error", err)
		return State{}
	}
	return st
}

// Save rewrites the state file.
func (s *Store) Save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

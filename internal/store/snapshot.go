package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/events"
)

// Export returns a deep copy of both collections tagged with the current
// snapshot version. Later mutations do not affect it.
func (s *Store) Export() catalog.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// ExportJSON writes the snapshot as indented JSON.
func (s *Store) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Export())
}

// Import replaces both collections with snap. A snapshot without items or
// recipes, or with an unsupported version, is rejected and nothing changes.
// Dangling references and empty sides in an accepted snapshot are repaired
// before it is installed.
func (s *Store) Import(snap catalog.Snapshot) error {
	if err := snap.Check(); err != nil {
		return err
	}
	snap = snap.Clone()
	if fixes := snap.Repair(); fixes > 0 {
		s.log.Warn().Int("fixes", fixes).Msg("repaired imported catalog")
	}

	s.mu.Lock()
	s.replaceLocked(snap)
	s.log.Info().Int("items", len(snap.Items)).Int("recipes", len(snap.Recipes)).Msg("imported catalog")
	return s.commit("import", "", events.DataReset{})
}

// ImportJSON decodes a snapshot document and imports it.
func (s *Store) ImportJSON(r io.Reader) error {
	var snap catalog.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return &catalog.FormatError{Reason: "malformed JSON", Err: err}
	}
	return s.Import(snap)
}

// Reset clears both collections and the persisted copy.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.items = map[string]catalog.Item{}
	s.recipes = map[string]catalog.Recipe{}
	s.lastCreated = 0
	s.saveMu.Lock()
	s.mu.Unlock()

	err := s.persist.Clear()
	s.saveMu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("clearing stored catalog failed")
		err = fmt.Errorf("clearing catalog: %w", err)
	}
	s.bus.Emit(events.DataReset{})
	return err
}

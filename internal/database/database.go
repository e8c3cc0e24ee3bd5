package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/antti/craftbook/internal/catalog"
)

// File persists catalog snapshots as a single TOML document that is
// rewritten on every save.
type File struct {
	tomlPath   string // Path to TOML file (catalog.toml)
	legacyPath string // Path to a JSON dump (catalog.json) for migration
}

// New creates a new File instance
// path should be the base path (e.g., ~/.config/craftbook/catalog)
// The TOML file will be at path + ".toml"
func New(path string) *File {
	return &File{
		tomlPath:   path + ".toml",
		legacyPath: path + ".json",
	}
}

// Path returns the TOML file location.
func (db *File) Path() string {
	return db.tomlPath
}

// Load reads the stored snapshot. A missing file yields a snapshot with nil
// collections, which the store treats as a fresh catalog.
func (db *File) Load() (catalog.Snapshot, error) {
	// Check if TOML file exists
	if _, err := os.Stat(db.tomlPath); err == nil {
		return db.loadTOML()
	}

	// Check if a JSON dump exists and migrate
	if _, err := os.Stat(db.legacyPath); err == nil {
		if err := db.migrateFromJSON(); err != nil {
			return catalog.Snapshot{}, fmt.Errorf("migration failed: %w", err)
		}
		return db.loadTOML()
	}

	// No database exists, return empty
	return catalog.Snapshot{}, nil
}

// loadTOML reads the snapshot from the TOML file
func (db *File) loadTOML() (catalog.Snapshot, error) {
	var snap catalog.Snapshot
	if _, err := toml.DecodeFile(db.tomlPath, &snap); err != nil {
		return catalog.Snapshot{}, &catalog.FormatError{Reason: "reading " + db.tomlPath, Err: err}
	}
	// Tolerate a file that lacks either table.
	if snap.Items == nil {
		snap.Items = map[string]catalog.Item{}
	}
	if snap.Recipes == nil {
		snap.Recipes = map[string]catalog.Recipe{}
	}
	return snap, nil
}

// Save writes the snapshot to the TOML file
func (db *File) Save(snap catalog.Snapshot) error {
	// Ensure directory exists
	dir := filepath.Dir(db.tomlPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write beside the target and rename so a failed encode never truncates it.
	tmp := db.tomlPath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(snap); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, db.tomlPath)
}

// Clear removes the stored snapshot.
func (db *File) Clear() error {
	if err := os.Remove(db.tomlPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// migrateFromJSON converts a JSON dump (an export, or the unversioned
// {items, recipes} document older builds kept) to TOML
func (db *File) migrateFromJSON() error {
	data, err := os.ReadFile(db.legacyPath)
	if err != nil {
		return err
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return &catalog.FormatError{Reason: "reading " + db.legacyPath, Err: err}
	}
	if snap.Version == 0 {
		snap.Version = catalog.SnapshotVersion
	}
	if err := snap.Check(); err != nil {
		return err
	}
	snap.Repair()

	// Save as TOML
	if err := db.Save(snap); err != nil {
		return err
	}

	// Backup old file
	backupPath := db.legacyPath + ".bak"
	if err := os.Rename(db.legacyPath, backupPath); err != nil {
		// The TOML file is already saved
		return nil
	}

	return nil
}

// Memory keeps the snapshot in process. It is used for ephemeral catalogs
// and in tests.
type Memory struct {
	mu    sync.Mutex
	snap  catalog.Snapshot
	saves int
}

// NewMemory returns a Memory holding a copy of snap. Pass a zero Snapshot
// to start empty.
func NewMemory(snap catalog.Snapshot) *Memory {
	return &Memory{snap: snap.Clone()}
}

// Load returns a copy of the held snapshot.
func (m *Memory) Load() (catalog.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

// Save replaces the held snapshot with a copy of snap.
func (m *Memory) Save(snap catalog.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	m.saves++
	return nil
}

// Clear drops the held snapshot.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = catalog.Snapshot{}
	m.saves++
	return nil
}

// Saves reports how many times Save or Clear ran.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

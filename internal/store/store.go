// Package store owns the canonical item and recipe collections. Every
// mutation is applied in memory, written through a Persister as a full
// snapshot and announced on an events.Bus, in that order.
//
// The store trusts its inputs: name format, uniqueness and URL checks are
// done by callers through catalog.ValidateName, CheckName and friends before
// they mutate. Referential integrity is the store's own job and holds after
// every call.
package store

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/events"
)

// Persister stores whole snapshots. Save replaces whatever was stored.
type Persister interface {
	Load() (catalog.Snapshot, error)
	Save(snap catalog.Snapshot) error
	Clear() error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithIDGenerator replaces the random hex id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock replaces time.Now for creation and maximize timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// Store is safe for concurrent use. Handlers subscribed to its bus may call
// back into it: events are emitted after the lock is released, and events
// raised from inside a handler are queued by the bus.
type Store struct {
	mu          sync.RWMutex
	saveMu      sync.Mutex
	items       map[string]catalog.Item
	recipes     map[string]catalog.Recipe
	lastCreated int64

	persist Persister
	bus     *events.Bus
	log     zerolog.Logger
	newID   func() string
	now     func() time.Time
}

// New loads the persisted snapshot and returns a store emitting on bus.
// A nil bus gets a private one.
func New(p Persister, bus *events.Bus, opts ...Option) (*Store, error) {
	if bus == nil {
		bus = events.NewBus()
	}
	s := &Store{
		items:   map[string]catalog.Item{},
		recipes: map[string]catalog.Recipe{},
		persist: p,
		bus:     bus,
		log:     zerolog.Nop(),
		newID:   generateID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if snap.Items == nil && snap.Recipes == nil {
		return s, nil
	}
	if err := snap.Check(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if fixes := snap.Repair(); fixes > 0 {
		s.log.Warn().Int("fixes", fixes).Msg("repaired stored catalog")
	}
	s.replaceLocked(snap)
	return s, nil
}

// Events returns the bus the store emits on.
func (s *Store) Events() *events.Bus {
	return s.bus
}

// generateID creates a short random hex id.
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("id-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}

func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		_, item := s.items[id]
		_, recipe := s.recipes[id]
		if id != "" && !item && !recipe {
			return id
		}
	}
}

// createdLocked returns a strictly increasing millisecond timestamp so
// creation order survives a reload even within one millisecond.
func (s *Store) createdLocked() int64 {
	ts := s.now().UnixMilli()
	if ts <= s.lastCreated {
		ts = s.lastCreated + 1
	}
	s.lastCreated = ts
	return ts
}

func (s *Store) replaceLocked(snap catalog.Snapshot) {
	s.items = snap.Items
	s.recipes = snap.Recipes
	s.lastCreated = 0
	for _, it := range s.items {
		if it.Created > s.lastCreated {
			s.lastCreated = it.Created
		}
	}
	for _, r := range s.recipes {
		if r.Created > s.lastCreated {
			s.lastCreated = r.Created
		}
	}
}

func (s *Store) snapshotLocked() catalog.Snapshot {
	return catalog.Snapshot{
		Version: catalog.SnapshotVersion,
		Items:   s.items,
		Recipes: s.recipes,
	}.Clone()
}

// commit runs the persist and notify half of a mutation. It must be called
// with s.mu held; it releases it. Saves happen in mutation order. A failed
// save is logged and returned but the change stays applied and is still
// announced, since memory is the source of truth for this process.
func (s *Store) commit(op, id string, evs ...events.Event) error {
	snap := s.snapshotLocked()
	s.saveMu.Lock()
	s.mu.Unlock()

	err := s.persist.Save(snap)
	s.saveMu.Unlock()

	s.log.Debug().Str("op", op).Str("id", id).Msg("mutation")
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Str("id", id).Msg("persist failed")
		err = fmt.Errorf("saving catalog after %s: %w", op, err)
	}
	for _, e := range evs {
		s.bus.Emit(e)
	}
	return err
}

// GetItem returns the item with id.
func (s *Store) GetItem(id string) (catalog.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// GetRecipe returns a copy of the recipe with id.
func (s *Store) GetRecipe(id string) (catalog.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return catalog.Recipe{}, false
	}
	return r.Clone(), true
}

// ItemName resolves an item id to its current name.
func (s *Store) ItemName(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it.Name, ok
}

// Items returns every item in creation order.
func (s *Store) Items() []catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created < out[j].Created
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Recipes returns a copy of every recipe in creation order.
func (s *Store) Recipes() []catalog.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recipesLocked(nil)
}

// IncompleteRecipes returns the recipes that still have unresolved slots.
func (s *Store) IncompleteRecipes() []catalog.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recipesLocked(func(r catalog.Recipe) bool { return !r.Complete() })
}

func (s *Store) recipesLocked(keep func(catalog.Recipe) bool) []catalog.Recipe {
	out := make([]catalog.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if keep == nil || keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created < out[j].Created
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindItemByName looks an item up by name, ignoring case.
func (s *Store) FindItemByName(name string) (catalog.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByNameLocked(name, "")
}

func (s *Store) findByNameLocked(name, exceptID string) (catalog.Item, bool) {
	for id, it := range s.items {
		if id != exceptID && catalog.SameName(it.Name, name) {
			return it, true
		}
	}
	return catalog.Item{}, false
}

// CheckName validates name for use by the item exceptID ("" for a new
// item): the format must be valid and no other item may use it.
func (s *Store) CheckName(name, exceptID string) error {
	if err := catalog.ValidateName(name); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, taken := s.findByNameLocked(name, exceptID); taken {
		return &catalog.ItemExistsError{Name: strings.TrimSpace(name)}
	}
	return nil
}

// ItemUsage counts the recipes that reference the item.
func (s *Store) ItemUsage(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.recipes {
		if r.References(id) {
			n++
		}
	}
	return n
}

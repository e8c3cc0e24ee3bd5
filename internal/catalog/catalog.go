// Package catalog defines the item and recipe data model shared by every
// other package, together with input validation and the error types used
// across layers. It depends on nothing else in the module.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SnapshotVersion is the only snapshot format version this build reads and writes.
const SnapshotVersion = 1

// Item is a craftable thing. At most one of Icon (URL mode) and IconKey
// (blob mode) is set; both empty means the placeholder icon.
type Item struct {
	ID            string `json:"id" toml:"id"`
	Name          string `json:"name" toml:"name"`
	Icon          string `json:"icon,omitempty" toml:"icon,omitempty"`
	IconKey       string `json:"iconKey,omitempty" toml:"icon_key,omitempty"`
	Desc          string `json:"desc" toml:"desc"`
	LastMaximized int64  `json:"lastMaximized" toml:"last_maximized"`
	Created       int64  `json:"created,omitempty" toml:"created,omitempty"`
}

// Slot references an item by id with a quantity. An empty ItemID is an
// unresolved placeholder.
type Slot struct {
	ItemID string `json:"itemId" toml:"item_id"`
	Qty    int    `json:"qty" toml:"qty"`
}

// UnmarshalJSON also accepts the legacy "id" key for the item reference,
// and a null id, as written by older exports.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID *string `json:"itemId"`
		ID     *string `json:"id"`
		Qty    int     `json:"qty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ItemID = ""
	switch {
	case raw.ItemID != nil:
		s.ItemID = *raw.ItemID
	case raw.ID != nil:
		s.ItemID = *raw.ID
	}
	s.Qty = raw.Qty
	return nil
}

// EmptySlot returns an unresolved slot with quantity one.
func EmptySlot() Slot {
	return Slot{Qty: 1}
}

// Side selects the input or output slot list of a recipe.
type Side string

const (
	Inputs  Side = "inputs"
	Outputs Side = "outputs"
)

// ParseSide accepts "in", "input", "inputs", "out", "output" and "outputs".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "input", "inputs":
		return Inputs, nil
	case "out", "output", "outputs":
		return Outputs, nil
	}
	return "", fmt.Errorf("invalid side %q: must be in or out", s)
}

// Recipe turns its inputs into its outputs over Duration seconds.
type Recipe struct {
	ID         string `json:"id" toml:"id"`
	Inputs     []Slot `json:"inputs" toml:"inputs"`
	Outputs    []Slot `json:"outputs" toml:"outputs"`
	Duration   int    `json:"duration" toml:"duration"`
	Reversible bool   `json:"reversible" toml:"reversible"`
	Created    int64  `json:"created,omitempty" toml:"created,omitempty"`
}

// Slots returns the slot list for side.
func (r *Recipe) Slots(side Side) []Slot {
	if side == Outputs {
		return r.Outputs
	}
	return r.Inputs
}

// SetSlots replaces the slot list for side.
func (r *Recipe) SetSlots(side Side, slots []Slot) {
	if side == Outputs {
		r.Outputs = slots
	} else {
		r.Inputs = slots
	}
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	r.Inputs = append([]Slot(nil), r.Inputs...)
	r.Outputs = append([]Slot(nil), r.Outputs...)
	return r
}

// References reports whether any slot on either side points at itemID.
func (r *Recipe) References(itemID string) bool {
	if itemID == "" {
		return false
	}
	for _, s := range r.Inputs {
		if s.ItemID == itemID {
			return true
		}
	}
	for _, s := range r.Outputs {
		if s.ItemID == itemID {
			return true
		}
	}
	return false
}

// Complete reports whether every slot names an item with a positive
// quantity, so the recipe is ready to use.
func (r *Recipe) Complete() bool {
	for _, side := range [][]Slot{r.Inputs, r.Outputs} {
		if len(side) == 0 {
			return false
		}
		for _, s := range side {
			if s.ItemID == "" || s.Qty < 1 {
				return false
			}
		}
	}
	return true
}

// Snapshot is the full versioned serialization of both collections.
// A nil map means the key was absent from the source document.
type Snapshot struct {
	Version int               `json:"version" toml:"version"`
	Items   map[string]Item   `json:"items" toml:"items"`
	Recipes map[string]Recipe `json:"recipes" toml:"recipes"`
}

// NewSnapshot returns an empty snapshot at the current version.
func NewSnapshot() Snapshot {
	return Snapshot{
		Version: SnapshotVersion,
		Items:   map[string]Item{},
		Recipes: map[string]Recipe{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Version: s.Version}
	if s.Items != nil {
		out.Items = make(map[string]Item, len(s.Items))
		for id, it := range s.Items {
			out.Items[id] = it
		}
	}
	if s.Recipes != nil {
		out.Recipes = make(map[string]Recipe, len(s.Recipes))
		for id, r := range s.Recipes {
			out.Recipes[id] = r.Clone()
		}
	}
	return out
}

// Check validates the document shape: both collections present and a
// supported version.
func (s Snapshot) Check() error {
	if s.Items == nil || s.Recipes == nil {
		return &FormatError{Reason: "snapshot must contain items and recipes", Err: ErrMissingCollections}
	}
	if s.Version != SnapshotVersion {
		return &UnsupportedVersionError{Version: s.Version}
	}
	return nil
}

// Repair enforces the structural invariants on a snapshot from outside the
// store: ids match their map keys, slot references point at existing items,
// quantities are at least one and neither side of a recipe is empty. It
// returns the number of fixes made.
func (s *Snapshot) Repair() int {
	fixes := 0
	for id, it := range s.Items {
		if it.ID != id {
			it.ID = id
			s.Items[id] = it
			fixes++
		}
	}
	for id, r := range s.Recipes {
		changed := r.ID != id
		r.ID = id
		for _, side := range []Side{Inputs, Outputs} {
			slots := r.Slots(side)
			if len(slots) == 0 {
				slots = []Slot{EmptySlot()}
				changed = true
			}
			for i := range slots {
				if slots[i].ItemID != "" {
					if _, ok := s.Items[slots[i].ItemID]; !ok {
						slots[i].ItemID = ""
						changed = true
					}
				}
				if slots[i].Qty < 1 {
					slots[i].Qty = 1
					changed = true
				}
			}
			r.SetSlots(side, slots)
		}
		if r.Duration < 0 {
			r.Duration = 0
			changed = true
		}
		if changed {
			s.Recipes[id] = r
			fixes++
		}
	}
	return fixes
}

// ItemIDs returns the item ids ordered by creation time, then id.
func (s Snapshot) ItemIDs() []string {
	ids := make([]string, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.Items[ids[i]], s.Items[ids[j]]
		if a.Created != b.Created {
			return a.Created < b.Created
		}
		return ids[i] < ids[j]
	})
	return ids
}

// RecipeIDs returns the recipe ids ordered by creation time, then id.
func (s Snapshot) RecipeIDs() []string {
	ids := make([]string, 0, len(s.Recipes))
	for id := range s.Recipes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.Recipes[ids[i]], s.Recipes[ids[j]]
		if a.Created != b.Created {
			return a.Created < b.Created
		}
		return ids[i] < ids[j]
	})
	return ids
}

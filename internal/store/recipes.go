package store

import (
	"fmt"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/events"
)

// RecipeChange is a single-field recipe update.
type RecipeChange interface {
	applyRecipe(r *catalog.Recipe) events.Event
}

// SetDuration sets the duration in seconds. Negative values become zero.
type SetDuration int

// SetReversible sets whether the recipe can run backwards.
type SetReversible bool

func (c SetDuration) applyRecipe(r *catalog.Recipe) events.Event {
	r.Duration = max(int(c), 0)
	return events.RecipeDurationChanged{ID: r.ID, Duration: r.Duration}
}

func (c SetReversible) applyRecipe(r *catalog.Recipe) events.Event {
	r.Reversible = bool(c)
	return events.RecipeReversibleChanged{ID: r.ID, Reversible: r.Reversible}
}

// SlotChange is a single-field slot update.
type SlotChange interface {
	applySlot(slot *catalog.Slot) (field string)
}

// SetSlotItem points a slot at an item; "" empties the slot.
type SetSlotItem string

// SetSlotQty sets the slot quantity. Values below one become one.
type SetSlotQty int

func (c SetSlotItem) applySlot(slot *catalog.Slot) string {
	slot.ItemID = string(c)
	return "itemId"
}

func (c SetSlotQty) applySlot(slot *catalog.Slot) string {
	slot.Qty = max(int(c), 1)
	return "qty"
}

// AddRecipe creates a recipe with one empty input slot, one empty output
// slot, no duration and no reversibility.
func (s *Store) AddRecipe() (string, error) {
	s.mu.Lock()
	id := s.uniqueIDLocked()
	s.recipes[id] = catalog.Recipe{
		ID:      id,
		Inputs:  []catalog.Slot{catalog.EmptySlot()},
		Outputs: []catalog.Slot{catalog.EmptySlot()},
		Created: s.createdLocked(),
	}
	return id, s.commit("addRecipe", id, events.RecipeAdded{ID: id})
}

// UpdateRecipe applies one field change to the recipe.
func (s *Store) UpdateRecipe(id string, change RecipeChange) error {
	s.mu.Lock()
	r, ok := s.recipes[id]
	if !ok {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: "recipe", ID: id}
	}
	ev := change.applyRecipe(&r)
	s.recipes[id] = r
	return s.commit("updateRecipe", id, ev)
}

// DeleteRecipe removes the recipe.
func (s *Store) DeleteRecipe(id string) error {
	s.mu.Lock()
	if _, ok := s.recipes[id]; !ok {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: "recipe", ID: id}
	}
	delete(s.recipes, id)
	return s.commit("deleteRecipe", id, events.RecipeDeleted{ID: id})
}

// CloneRecipe copies the recipe under a new id.
func (s *Store) CloneRecipe(id string) (string, error) {
	s.mu.Lock()
	src, ok := s.recipes[id]
	if !ok {
		s.mu.Unlock()
		return "", &catalog.NotFoundError{Kind: "recipe", ID: id}
	}
	r := src.Clone()
	r.ID = s.uniqueIDLocked()
	r.Created = s.createdLocked()
	s.recipes[r.ID] = r
	return r.ID, s.commit("cloneRecipe", r.ID, events.RecipeAdded{ID: r.ID})
}

// AddRecipeSlot appends an empty slot to one side and returns its index.
func (s *Store) AddRecipeSlot(id string, side catalog.Side) (int, error) {
	if err := checkSide(side); err != nil {
		return 0, err
	}
	s.mu.Lock()
	r, ok := s.recipes[id]
	if !ok {
		s.mu.Unlock()
		return 0, &catalog.NotFoundError{Kind: "recipe", ID: id}
	}
	slots := append(r.Slots(side), catalog.EmptySlot())
	r.SetSlots(side, slots)
	s.recipes[id] = r
	return len(slots) - 1, s.commit("addRecipeSlot", id, events.RecipeSlotsChanged{ID: id})
}

// RemoveRecipeSlot removes one slot. Removing the last slot of a side
// leaves a single empty slot in its place.
func (s *Store) RemoveRecipeSlot(id string, side catalog.Side, idx int) error {
	if err := checkSide(side); err != nil {
		return err
	}
	s.mu.Lock()
	r, err := s.slotRecipeLocked(id, side, idx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	old := r.Slots(side)
	slots := make([]catalog.Slot, 0, len(old))
	slots = append(slots, old[:idx]...)
	slots = append(slots, old[idx+1:]...)
	if len(slots) == 0 {
		slots = append(slots, catalog.EmptySlot())
	}
	r.SetSlots(side, slots)
	s.recipes[id] = r
	return s.commit("removeRecipeSlot", id, events.RecipeSlotsChanged{ID: id})
}

// UpdateRecipeSlot applies one field change to a slot. A slot may only
// point at an item that exists.
func (s *Store) UpdateRecipeSlot(id string, side catalog.Side, idx int, change SlotChange) error {
	if err := checkSide(side); err != nil {
		return err
	}
	s.mu.Lock()
	r, err := s.slotRecipeLocked(id, side, idx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if item, ok := change.(SetSlotItem); ok && item != "" {
		if _, exists := s.items[string(item)]; !exists {
			s.mu.Unlock()
			return &catalog.NotFoundError{Kind: "item", ID: string(item)}
		}
	}

	slots := append([]catalog.Slot(nil), r.Slots(side)...)
	field := change.applySlot(&slots[idx])
	r.SetSlots(side, slots)
	s.recipes[id] = r
	return s.commit("updateRecipeSlot", id, events.RecipeSlotChanged{
		ID:    id,
		Side:  side,
		Index: idx,
		Field: field,
		Slot:  slots[idx],
	})
}

func (s *Store) slotRecipeLocked(id string, side catalog.Side, idx int) (catalog.Recipe, error) {
	r, ok := s.recipes[id]
	if !ok {
		return r, &catalog.NotFoundError{Kind: "recipe", ID: id}
	}
	if n := len(r.Slots(side)); idx < 0 || idx >= n {
		return r, &catalog.SlotIndexError{RecipeID: id, Side: side, Index: idx, Len: n}
	}
	return r, nil
}

func checkSide(side catalog.Side) error {
	if side != catalog.Inputs && side != catalog.Outputs {
		return fmt.Errorf("invalid side %q: must be %s or %s", side, catalog.Inputs, catalog.Outputs)
	}
	return nil
}

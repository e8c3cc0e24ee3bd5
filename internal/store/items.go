package store

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/events"
)

// ItemChange is a single-field item update.
type ItemChange interface {
	applyItem(it *catalog.Item) (field string)
}

// SetName renames an item.
type SetName string

// SetIcon switches an item to URL mode. A non-empty URL clears IconKey.
type SetIcon string

// SetIconKey switches an item to blob mode. A non-empty key clears Icon.
type SetIconKey string

// SetDesc replaces the description.
type SetDesc string

// SetLastMaximized records when the item was last opened, in milliseconds.
type SetLastMaximized int64

func (c SetName) applyItem(it *catalog.Item) string {
	it.Name = strings.TrimSpace(string(c))
	return "name"
}

func (c SetIcon) applyItem(it *catalog.Item) string {
	it.Icon = string(c)
	if it.Icon != "" {
		it.IconKey = ""
	}
	return "icon"
}

func (c SetIconKey) applyItem(it *catalog.Item) string {
	it.IconKey = string(c)
	if it.IconKey != "" {
		it.Icon = ""
	}
	return "iconKey"
}

func (c SetDesc) applyItem(it *catalog.Item) string {
	it.Desc = string(c)
	return "desc"
}

func (c SetLastMaximized) applyItem(it *catalog.Item) string {
	it.LastMaximized = int64(c)
	return "lastMaximized"
}

// DeletePolicy decides what happens to recipes that reference a deleted item.
type DeletePolicy int

const (
	// RemoveReferences clears the item from each slot, leaving the slot
	// empty and the recipe in place.
	RemoveReferences DeletePolicy = iota
	// DeleteRecipes removes every recipe that referenced the item.
	DeleteRecipes
)

func (p DeletePolicy) String() string {
	if p == DeleteRecipes {
		return "delete_recipes"
	}
	return "remove_references"
}

// ParseDeletePolicy reads the config spelling of a policy.
func ParseDeletePolicy(s string) (DeletePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "remove_references", "remove-references", "remove":
		return RemoveReferences, true
	case "delete_recipes", "delete-recipes", "delete":
		return DeleteRecipes, true
	}
	return RemoveReferences, false
}

// AddItem creates an item and returns its id.
func (s *Store) AddItem(name, icon, desc string) (string, error) {
	s.mu.Lock()
	id := s.uniqueIDLocked()
	s.items[id] = catalog.Item{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Icon:    icon,
		Desc:    desc,
		Created: s.createdLocked(),
	}
	return id, s.commit("addItem", id, events.ItemAdded{ID: id})
}

// UpdateItem applies one field change to the item.
func (s *Store) UpdateItem(id string, change ItemChange) error {
	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: "item", ID: id}
	}
	field := change.applyItem(&it)
	s.items[id] = it
	return s.commit("updateItem", id, events.ItemChanged{ID: id, Field: field})
}

// Maximize stamps the item as opened now, feeding the recent sort.
func (s *Store) Maximize(id string) error {
	return s.UpdateItem(id, SetLastMaximized(s.now().UnixMilli()))
}

// DeleteItem removes the item and, according to policy, either the
// references to it or the recipes holding them. ItemDeleted is emitted
// first, then one RecipeSlotsChanged or RecipeDeleted per affected recipe
// in creation order.
func (s *Store) DeleteItem(id string, policy DeletePolicy) error {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: "item", ID: id}
	}
	delete(s.items, id)

	evs := []events.Event{events.ItemDeleted{ID: id}}
	for _, r := range s.recipesLocked(func(r catalog.Recipe) bool { return r.References(id) }) {
		if policy == DeleteRecipes {
			delete(s.recipes, r.ID)
			evs = append(evs, events.RecipeDeleted{ID: r.ID})
			continue
		}
		for _, side := range []catalog.Side{catalog.Inputs, catalog.Outputs} {
			slots := r.Slots(side)
			for i := range slots {
				if slots[i].ItemID == id {
					slots[i].ItemID = ""
				}
			}
		}
		s.recipes[r.ID] = r
		evs = append(evs, events.RecipeSlotsChanged{ID: r.ID})
	}

	s.log.Debug().Str("id", id).Stringer("policy", policy).Int("recipes", len(evs)-1).Msg("deleting item")
	return s.commit("deleteItem", id, evs...)
}

var trailingNumber = regexp.MustCompile(`^(.*\S)\s+(\d+)$`)

// CloneItem copies the item's name, URL icon and description under a new
// id. The name gets a number suffix ("Wood 2", "Wood 3") so it stays
// unique. Blob icons are not shared between items.
func (s *Store) CloneItem(id string) (string, error) {
	s.mu.Lock()
	src, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return "", &catalog.NotFoundError{Kind: "item", ID: id}
	}

	base, n := src.Name, 1
	if m := trailingNumber.FindStringSubmatch(src.Name); m != nil {
		if v, err := strconv.Atoi(m[2]); err == nil {
			base, n = m[1], v
		}
	}
	name := ""
	for {
		n++
		name = base + " " + strconv.Itoa(n)
		if _, taken := s.findByNameLocked(name, ""); !taken {
			break
		}
	}

	newID := s.uniqueIDLocked()
	s.items[newID] = catalog.Item{
		ID:      newID,
		Name:    name,
		Icon:    src.Icon,
		Desc:    src.Desc,
		Created: s.createdLocked(),
	}
	return newID, s.commit("cloneItem", newID, events.ItemAdded{ID: newID})
}

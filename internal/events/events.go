// Package events is the change notifier between the catalog store and its
// consumers. Events form a closed set of typed messages delivered
// synchronously through a Bus.
package events

import "github.com/antti/craftbook/internal/catalog"

// Kind names an event type.
type Kind string

const (
	KindDataReset        Kind = "dataReset"
	KindItemAdded        Kind = "itemAdded"
	KindItemChanged      Kind = "itemChanged"
	KindItemDeleted      Kind = "itemDeleted"
	KindRecipeAdded      Kind = "recipeAdded"
	KindRecipeDeleted    Kind = "recipeDeleted"
	KindRecipeDuration   Kind = "recipe:durationChanged"
	KindRecipeReversible Kind = "recipe:reversibleChanged"
	KindRecipeSlots      Kind = "recipe:slotsStructureChanged"
	KindRecipeSlot       Kind = "recipe:slotChanged"
)

// Event is implemented by every message the store emits.
type Event interface {
	Kind() Kind
}

// DataReset is emitted after both collections were replaced or cleared.
type DataReset struct{}

// ItemAdded is emitted after an item was created.
type ItemAdded struct {
	ID string
}

// ItemChanged is emitted after one field of an item changed.
type ItemChanged struct {
	ID    string
	Field string
}

// ItemDeleted is emitted after an item was removed.
type ItemDeleted struct {
	ID string
}

// RecipeAdded is emitted after a recipe was created.
type RecipeAdded struct {
	ID string
}

// RecipeDeleted is emitted after a recipe was removed.
type RecipeDeleted struct {
	ID string
}

// RecipeDurationChanged carries the new duration in seconds.
type RecipeDurationChanged struct {
	ID       string
	Duration int
}

// RecipeReversibleChanged carries the new reversibility flag.
type RecipeReversibleChanged struct {
	ID         string
	Reversible bool
}

// RecipeSlotsChanged means the slot lists of a recipe changed shape (a slot
// was added or removed) or several slots changed at once. Consumers should
// rebuild the whole recipe.
type RecipeSlotsChanged struct {
	ID string
}

// RecipeSlotChanged describes a single slot edit precisely enough to patch
// just that slot: Field is "itemId" or "qty" and Slot is its new value.
type RecipeSlotChanged struct {
	ID    string
	Side  catalog.Side
	Index int
	Field string
	Slot  catalog.Slot
}

func (DataReset) Kind() Kind               { return KindDataReset }
func (ItemAdded) Kind() Kind               { return KindItemAdded }
func (ItemChanged) Kind() Kind             { return KindItemChanged }
func (ItemDeleted) Kind() Kind             { return KindItemDeleted }
func (RecipeAdded) Kind() Kind             { return KindRecipeAdded }
func (RecipeDeleted) Kind() Kind           { return KindRecipeDeleted }
func (RecipeDurationChanged) Kind() Kind   { return KindRecipeDuration }
func (RecipeReversibleChanged) Kind() Kind { return KindRecipeReversible }
func (RecipeSlotsChanged) Kind() Kind      { return KindRecipeSlots }
func (RecipeSlotChanged) Kind() Kind       { return KindRecipeSlot }

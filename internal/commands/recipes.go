package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/duration"
	"github.com/antti/craftbook/internal/interchange"
	"github.com/antti/craftbook/internal/search"
	"github.com/antti/craftbook/internal/store"
)

// ListRecipes prints recipes ranked against the input names, output names
// and duration. Empty arguments place no constraint.
func (a *App) ListRecipes(inputs, outputs, dur string) error {
	if strings.TrimSpace(dur) != "" {
		if _, ok := duration.Parse(dur); !ok {
			return &catalog.InvalidDurationError{Value: dur}
		}
	}
	q := search.ParseRecipeQuery(inputs, outputs, dur)

	view := search.NewLive(a.Store, a.Store.Events(), search.SortName)
	defer view.Close()
	view.SetRecipeQuery(q)

	ranked := view.Recipes()
	if len(ranked) == 0 {
		a.printf("No recipes\n")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 4, ' ', 0)
	for _, sr := range ranked {
		if q.Empty() {
			fmt.Fprintf(w, "%s\t%s\n", sr.Recipe.ID, a.formatRecipe(sr.Recipe))
		} else {
			fmt.Fprintf(w, "%s\t%s\t[%.3f]\n", sr.Recipe.ID, a.formatRecipe(sr.Recipe), sr.Score)
		}
	}
	return w.Flush()
}

// formatRecipe renders "2x Wood + Stone -> Plank (30s)". Unresolved slots
// show as "?" and reversible recipes use a two-way arrow.
func (a *App) formatRecipe(r catalog.Recipe) string {
	arrow := "->"
	if r.Reversible {
		arrow = "<->"
	}
	return fmt.Sprintf("%s %s %s (%s)", a.formatSlots(r.Inputs), arrow, a.formatSlots(r.Outputs), duration.Format(r.Duration))
}

func (a *App) formatSlots(slots []catalog.Slot) string {
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		name := "?"
		if n, ok := a.Store.ItemName(s.ItemID); ok {
			name = n
		}
		if s.Qty > 1 {
			name = fmt.Sprintf("%dx %s", s.Qty, name)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " + ")
}

// parseSlotSpec reads "Name" or "Name:qty". A name that itself contains a
// colon resolves as a whole before the suffix is tried as a quantity.
func (a *App) parseSlotSpec(spec string) (catalog.Slot, error) {
	spec = strings.TrimSpace(spec)
	if it, ok := a.Store.FindItemByName(spec); ok {
		return catalog.Slot{ItemID: it.ID, Qty: 1}, nil
	}

	name, qty := spec, 1
	if i := strings.LastIndex(spec, ":"); i >= 0 {
		n, err := catalog.ParseQty(spec[i+1:])
		if err != nil {
			return catalog.Slot{}, err
		}
		name, qty = spec[:i], n
	}
	it, err := a.resolveItem(strings.TrimSpace(name))
	if err != nil {
		return catalog.Slot{}, err
	}
	return catalog.Slot{ItemID: it.ID, Qty: qty}, nil
}

func (a *App) parseSlotList(list string) ([]catalog.Slot, error) {
	var slots []catalog.Slot
	for _, spec := range search.SplitList(list) {
		slot, err := a.parseSlotSpec(spec)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// AddRecipe creates a recipe from comma separated slot lists. Every slot
// and the duration are checked before anything is written, and a recipe
// that fails part way through is removed again.
func (a *App) AddRecipe(inputs, outputs, dur string, reversible bool) error {
	in, err := a.parseSlotList(inputs)
	if err != nil {
		return err
	}
	out, err := a.parseSlotList(outputs)
	if err != nil {
		return err
	}
	secs := 0
	if strings.TrimSpace(dur) != "" {
		var ok bool
		if secs, ok = duration.Parse(dur); !ok {
			return &catalog.InvalidDurationError{Value: dur}
		}
	}

	id, err := a.Store.AddRecipe()
	if err != nil {
		return err
	}
	if err := a.fillRecipe(id, in, out, secs, reversible); err != nil {
		if derr := a.Store.DeleteRecipe(id); derr != nil {
			a.log.Warn().Err(derr).Str("id", id).Msg("removing partial recipe")
		}
		return err
	}

	r, _ := a.Store.GetRecipe(id)
	a.printf("Added recipe %s: %s\n", id, a.formatRecipe(r))
	return nil
}

// fillRecipe writes the slots and settings of a freshly created recipe.
func (a *App) fillRecipe(id string, in, out []catalog.Slot, secs int, reversible bool) error {
	for _, side := range []struct {
		side  catalog.Side
		slots []catalog.Slot
	}{
		{catalog.Inputs, in},
		{catalog.Outputs, out},
	} {
		if err := interchange.FillSide(a.Store, id, side.side, side.slots); err != nil {
			return err
		}
	}
	if secs > 0 {
		if err := a.Store.UpdateRecipe(id, store.SetDuration(secs)); err != nil {
			return err
		}
	}
	if reversible {
		if err := a.Store.UpdateRecipe(id, store.SetReversible(true)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRecipe deletes a recipe
func (a *App) RemoveRecipe(id string) error {
	if err := a.Store.DeleteRecipe(id); err != nil {
		return err
	}
	a.printf("Deleted recipe %s\n", id)
	return nil
}

// CloneRecipe copies a recipe under a new id
func (a *App) CloneRecipe(id string) error {
	newID, err := a.Store.CloneRecipe(id)
	if err != nil {
		return err
	}
	a.printf("Cloned recipe %s as %s\n", id, newID)
	return nil
}

// SetRecipe changes the duration or reversibility of a recipe.
func (a *App) SetRecipe(id, field, value string) error {
	if _, err := a.resolveRecipe(id); err != nil {
		return err
	}

	var change store.RecipeChange
	switch strings.ToLower(field) {
	case "duration", "time":
		secs, ok := duration.Parse(value)
		if !ok {
			return &catalog.InvalidDurationError{Value: value}
		}
		change = store.SetDuration(secs)
	case "reversible":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		change = store.SetReversible(b)
	default:
		return &InvalidArgError{Arg: field, Reason: "field must be duration or reversible"}
	}

	if err := a.Store.UpdateRecipe(id, change); err != nil {
		return err
	}
	r, _ := a.Store.GetRecipe(id)
	a.printf("Updated recipe %s: %s\n", id, a.formatRecipe(r))
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &InvalidArgError{Arg: s, Reason: "expected yes or no"}
	}
	return b, nil
}

func parseSide(s string) (catalog.Side, error) {
	side, err := catalog.ParseSide(s)
	if err != nil {
		return "", &InvalidArgError{Arg: s, Reason: "side must be in or out"}
	}
	return side, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &InvalidArgError{Arg: s, Reason: "slot index must be a number"}
	}
	return n, nil
}

// AddSlot appends an empty slot to one side of a recipe
func (a *App) AddSlot(id, sideArg string) error {
	side, err := parseSide(sideArg)
	if err != nil {
		return err
	}
	idx, err := a.Store.AddRecipeSlot(id, side)
	if err != nil {
		return err
	}
	a.printf("Added %s slot %d to recipe %s\n", side, idx, id)
	return nil
}

// RemoveSlot removes one slot; a side never ends up with no slots
func (a *App) RemoveSlot(id, sideArg, idxArg string) error {
	side, err := parseSide(sideArg)
	if err != nil {
		return err
	}
	idx, err := parseIndex(idxArg)
	if err != nil {
		return err
	}
	if err := a.Store.RemoveRecipeSlot(id, side, idx); err != nil {
		return err
	}
	a.printf("Removed %s slot %d from recipe %s\n", side, idx, id)
	return nil
}

// SetSlot points a slot at an item given as "Name" or "Name:qty".
func (a *App) SetSlot(id, sideArg, idxArg, spec string) error {
	side, err := parseSide(sideArg)
	if err != nil {
		return err
	}
	idx, err := parseIndex(idxArg)
	if err != nil {
		return err
	}
	slot, err := a.parseSlotSpec(spec)
	if err != nil {
		return err
	}
	if err := a.Store.UpdateRecipeSlot(id, side, idx, store.SetSlotItem(slot.ItemID)); err != nil {
		return err
	}
	if err := a.Store.UpdateRecipeSlot(id, side, idx, store.SetSlotQty(slot.Qty)); err != nil {
		return err
	}
	r, _ := a.Store.GetRecipe(id)
	a.printf("Updated recipe %s: %s\n", id, a.formatRecipe(r))
	return nil
}

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/search"
	"github.com/antti/craftbook/internal/store"
)

// ListItems prints items ordered by sortMode (the configured default when
// empty). With the name sort, query ranks exact, prefix and substring
// matches first.
func (a *App) ListItems(sortMode, query string) error {
	if sortMode == "" {
		sortMode = a.Cfg.User.Search.DefaultItemSort
	}
	mode, err := search.ParseItemSort(sortMode)
	if err != nil {
		return &InvalidArgError{Arg: sortMode, Reason: "sort must be name, az, za or recent"}
	}

	view := search.NewLive(a.Store, a.Store.Events(), mode)
	defer view.Close()
	view.SetItemQuery(query)

	items := view.Items()
	if len(items) == 0 {
		a.printf("No items\n")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 4, ' ', 0)
	for _, it := range items {
		line := it.Name
		if a.Cfg.User.Display.ShowIDs {
			line += "\t" + it.ID
		}
		if a.Cfg.User.Display.ShowDesc && it.Desc != "" {
			line += "\t" + it.Desc
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

// AddItem creates an item after validating its name and icon URL
func (a *App) AddItem(name, icon, desc string) error {
	if err := a.Store.CheckName(name, ""); err != nil {
		return err
	}
	if icon != "" {
		if err := catalog.ValidateIconURL(icon); err != nil {
			return err
		}
	}

	id, err := a.Store.AddItem(name, icon, desc)
	if err != nil {
		return err
	}
	a.printf("Added item '%s' (%s)\n", strings.TrimSpace(name), id)
	return nil
}

// ShowItem prints an item with the recipes that use or make it, and records
// it as the most recently opened item.
func (a *App) ShowItem(ref string) error {
	it, err := a.resolveItem(ref)
	if err != nil {
		return err
	}
	if err := a.Store.Maximize(it.ID); err != nil {
		return err
	}
	it, _ = a.Store.GetItem(it.ID)

	var resolver catalog.IconResolver
	dir, err := a.Cfg.IconDir()
	if err != nil {
		return err
	}
	if dir != "" {
		resolver = catalog.DirResolver(dir)
	}

	a.printf("Name:  %s\n", it.Name)
	a.printf("ID:    %s\n", it.ID)
	a.printf("Icon:  %s\n", catalog.ResolveIcon(context.Background(), it, resolver))
	if it.Desc != "" {
		a.printf("Desc:  %s\n", it.Desc)
	}
	if it.LastMaximized > 0 {
		a.printf("Last:  %s\n", formatTimeAgo(time.UnixMilli(it.LastMaximized)))
	}

	var uses, makes []catalog.Recipe
	for _, r := range a.Store.Recipes() {
		if slotsReference(r.Inputs, it.ID) {
			uses = append(uses, r)
		}
		if slotsReference(r.Outputs, it.ID) {
			makes = append(makes, r)
		}
	}
	for _, group := range []struct {
		title   string
		recipes []catalog.Recipe
	}{
		{"Made by", makes},
		{"Used in", uses},
	} {
		if len(group.recipes) == 0 {
			continue
		}
		a.printf("%s:\n", group.title)
		for _, r := range group.recipes {
			a.printf("  %s  %s\n", r.ID, a.formatRecipe(r))
		}
	}
	return nil
}

func slotsReference(slots []catalog.Slot, id string) bool {
	for _, s := range slots {
		if s.ItemID == id {
			return true
		}
	}
	return false
}

// RenameItem renames an item; recipes follow because they reference ids
func (a *App) RenameItem(ref, newName string) error {
	it, err := a.resolveItem(ref)
	if err != nil {
		return err
	}
	if err := a.Store.CheckName(newName, it.ID); err != nil {
		return err
	}
	if err := a.Store.UpdateItem(it.ID, store.SetName(newName)); err != nil {
		return err
	}
	a.printf("Renamed item '%s' to '%s'\n", it.Name, strings.TrimSpace(newName))
	return nil
}

// CloneItem copies an item under the next free numbered name
func (a *App) CloneItem(ref string) error {
	it, err := a.resolveItem(ref)
	if err != nil {
		return err
	}
	id, err := a.Store.CloneItem(it.ID)
	if err != nil {
		return err
	}
	name, _ := a.Store.ItemName(id)
	a.printf("Cloned '%s' as '%s' (%s)\n", it.Name, name, id)
	return nil
}

// RemoveItem deletes an item. policy overrides the configured delete
// policy when not empty.
func (a *App) RemoveItem(ref, policy string) error {
	p := a.policy
	if policy != "" {
		var ok bool
		if p, ok = store.ParseDeletePolicy(policy); !ok {
			return &InvalidArgError{Arg: policy, Reason: "policy must be remove_references or delete_recipes"}
		}
	}

	it, err := a.resolveItem(ref)
	if err != nil {
		return err
	}
	used := a.Store.ItemUsage(it.ID)
	if err := a.Store.DeleteItem(it.ID, p); err != nil {
		return err
	}

	switch {
	case used == 0:
		a.printf("Deleted item '%s'\n", it.Name)
	case p == store.DeleteRecipes:
		a.printf("Deleted item '%s' and %s\n", it.Name, count(used, "recipe", "recipes"))
	default:
		a.printf("Deleted item '%s' (cleared from %s)\n", it.Name, count(used, "recipe", "recipes"))
	}
	return nil
}

// SetItem changes one item field: desc, icon or icon-key.
func (a *App) SetItem(ref, field, value string) error {
	it, err := a.resolveItem(ref)
	if err != nil {
		return err
	}

	var change store.ItemChange
	switch strings.ToLower(field) {
	case "desc", "description":
		change = store.SetDesc(value)
	case "icon":
		if value != "" {
			if err := catalog.ValidateIconURL(value); err != nil {
				return err
			}
		}
		change = store.SetIcon(value)
	case "icon-key", "iconkey":
		change = store.SetIconKey(value)
	default:
		return &InvalidArgError{Arg: field, Reason: "field must be desc, icon or icon-key"}
	}

	if err := a.Store.UpdateItem(it.ID, change); err != nil {
		return err
	}
	a.printf("Updated %s of '%s'\n", strings.ToLower(field), it.Name)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func count(n int, one, many string) string {
	return fmt.Sprintf("%d %s", n, plural(n, one, many))
}

// formatTimeAgo returns a human-readable time difference string
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%d %s ago", mins, plural(mins, "minute", "minutes"))
	case d < 24*time.Hour:
		hours := int(d.Hours())
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour", "hours"))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%d %s ago", days, plural(days, "day", "days"))
	case d < 30*24*time.Hour:
		weeks := int(d.Hours() / 24 / 7)
		return fmt.Sprintf("%d %s ago", weeks, plural(weeks, "week", "weeks"))
	default:
		months := int(d.Hours() / 24 / 30)
		return fmt.Sprintf("%d %s ago", months, plural(months, "month", "months"))
	}
}

package commands

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/antti/craftbook/internal/interchange"
)

// Check lists recipes that still have an unresolved slot. It returns
// ErrIncomplete when there are any.
func (a *App) Check() error {
	incomplete := a.Store.IncompleteRecipes()
	total := len(a.Store.Recipes())
	if len(incomplete) == 0 {
		a.printf("All %s complete\n", count(total, "recipe", "recipes"))
		return nil
	}

	a.printf("Incomplete recipes:\n")
	for _, r := range incomplete {
		a.printf("  %s  %s\n", r.ID, a.formatRecipe(r))
	}
	return fmt.Errorf("%d of %d: %w", len(incomplete), total, ErrIncomplete)
}

// Export writes the catalog to path, choosing the format by extension:
// .xlsx for a workbook, anything else for a JSON snapshot. An empty path
// or "-" writes JSON to Out.
func (a *App) Export(path string) error {
	if path == "" || path == "-" {
		return a.Store.ExportJSON(a.Out)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		if err := interchange.WriteXLSX(path, a.Store.Export()); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
	default:
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := a.Store.ExportJSON(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	snap := a.Store.Export()
	a.printf("Exported %s and %s to %s\n", count(len(snap.Items), "item", "items"), count(len(snap.Recipes), "recipe", "recipes"), path)
	return nil
}

// Import loads path into the catalog. JSON snapshots replace the whole
// catalog; HTML pages are scanned for a recipe table (selector, default
// the first table) whose rows are merged into the existing catalog, with
// image URLs resolved against base.
func (a *App) Import(path, selector, base string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		var baseURL *url.URL
		if base != "" {
			if baseURL, err = url.Parse(base); err != nil {
				return &InvalidArgError{Arg: base, Reason: "base must be a URL"}
			}
		}
		rows, err := interchange.ParseHTMLTable(f, baseURL, selector)
		if err != nil {
			return err
		}
		res, err := interchange.MergeRows(a.Store, rows)
		if err != nil {
			return err
		}
		a.log.Info().Str("file", path).Int("rows", len(rows)).Int("skipped", res.Skipped).Msg("merged recipe table")
		a.printf("Import complete: %s, %s", count(res.Items, "item", "items"), count(res.Recipes, "recipe", "recipes"))
		if res.Skipped > 0 {
			a.printf(", %d skipped", res.Skipped)
		}
		a.printf("\n")
		return nil

	default:
		if err := a.Store.ImportJSON(f); err != nil {
			return err
		}
		snap := a.Store.Export()
		a.printf("Imported %s and %s\n", count(len(snap.Items), "item", "items"), count(len(snap.Recipes), "recipe", "recipes"))
		return nil
	}
}

// Reset deletes every item and recipe. It refuses to run unless confirmed.
func (a *App) Reset(confirmed bool) error {
	if !confirmed {
		return &InvalidArgError{Arg: "reset", Reason: "pass --yes to delete the whole catalog"}
	}
	if err := a.Store.Reset(); err != nil {
		return err
	}
	a.printf("Catalog cleared\n")
	return nil
}

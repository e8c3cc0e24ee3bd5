// Package interchange moves catalog data to and from formats other tools
// produce and read: XLSX workbooks for export and HTML recipe tables for
// import.
package interchange

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/duration"
)

const (
	ItemsSheet   = "Items"
	RecipesSheet = "Recipes"
)

// ExportXLSX writes snap as a workbook with an Items and a Recipes sheet.
// Slots are written by item name.
func ExportXLSX(w io.Writer, snap catalog.Snapshot) error {
	f, err := buildWorkbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// WriteXLSX writes the workbook to path.
func WriteXLSX(path string, snap catalog.Snapshot) error {
	f, err := buildWorkbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func buildWorkbook(snap catalog.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(RecipesSheet); err != nil {
		f.Close()
		return nil, err
	}

	itemRows := [][]interface{}{{"id", "name", "description", "icon", "last opened"}}
	for _, id := range snap.ItemIDs() {
		it := snap.Items[id]
		icon := it.Icon
		if icon == "" && it.IconKey != "" {
			icon = "blob:" + it.IconKey
		}
		opened := ""
		if it.LastMaximized > 0 {
			opened = time.UnixMilli(it.LastMaximized).UTC().Format(time.RFC3339)
		}
		itemRows = append(itemRows, []interface{}{it.ID, it.Name, it.Desc, icon, opened})
	}

	recipeRows := [][]interface{}{{"id", "inputs", "outputs", "duration", "reversible"}}
	for _, id := range snap.RecipeIDs() {
		r := snap.Recipes[id]
		reversible := "no"
		if r.Reversible {
			reversible = "yes"
		}
		recipeRows = append(recipeRows, []interface{}{
			r.ID,
			slotList(r.Inputs, snap.Items),
			slotList(r.Outputs, snap.Items),
			duration.Format(r.Duration),
			reversible,
		})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{ItemsSheet, itemRows},
		{RecipesSheet, recipeRows},
	} {
		if err := writeSheet(f, sheet.name, sheet.rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing %s sheet: %w", sheet.name, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	// StreamWriter for efficiency on large catalogs
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for i, row := range rows {
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+1) // A1, A2, ...
		if err := sw.SetRow(cellAddr, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// slotList renders slots as "2x Wood, Stone"; unresolved slots show as "?".
func slotList(slots []catalog.Slot, items map[string]catalog.Item) string {
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		name := "?"
		if it, ok := items[s.ItemID]; ok {
			name = it.Name
		}
		if s.Qty > 1 {
			name = fmt.Sprintf("%dx %s", s.Qty, name)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

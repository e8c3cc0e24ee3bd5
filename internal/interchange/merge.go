package interchange

import (
	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/store"
)

// MergeResult counts what MergeRows created.
type MergeResult struct {
	Items   int
	Recipes int
	Skipped int // cells or rows that could not be used
}

// MergeRows adds one recipe per row. Cells are matched to existing items
// by name, ignoring case; unknown names become new items, keeping the
// cell's icon when it is a usable URL. Cells whose name is not a valid item
// name are skipped, as are rows left with no usable cell.
func MergeRows(s *store.Store, rows []TableRow) (MergeResult, error) {
	var res MergeResult
	for _, row := range rows {
		inputs, err := resolveCells(s, row.Inputs, &res)
		if err != nil {
			return res, err
		}
		outputs, err := resolveCells(s, row.Outputs, &res)
		if err != nil {
			return res, err
		}
		if len(inputs) == 0 && len(outputs) == 0 {
			res.Skipped++
			continue
		}

		id, err := s.AddRecipe()
		if err != nil {
			return res, err
		}
		res.Recipes++
		for _, side := range []struct {
			side  catalog.Side
			slots []catalog.Slot
		}{
			{catalog.Inputs, inputs},
			{catalog.Outputs, outputs},
		} {
			if err := FillSide(s, id, side.side, side.slots); err != nil {
				return res, err
			}
		}
		if row.HasDuration {
			if err := s.UpdateRecipe(id, store.SetDuration(row.Duration)); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func resolveCells(s *store.Store, cells []Cell, res *MergeResult) ([]catalog.Slot, error) {
	var slots []catalog.Slot
	for _, c := range cells {
		if it, ok := s.FindItemByName(c.Name); ok {
			slots = append(slots, catalog.Slot{ItemID: it.ID, Qty: c.Qty})
			continue
		}
		if err := s.CheckName(c.Name, ""); err != nil {
			res.Skipped++
			continue
		}
		icon := ""
		if catalog.ValidateIconURL(c.Icon) == nil {
			icon = c.Icon
		}
		id, err := s.AddItem(c.Name, icon, "")
		if err != nil {
			return nil, err
		}
		res.Items++
		slots = append(slots, catalog.Slot{ItemID: id, Qty: c.Qty})
	}
	return slots, nil
}

// FillSide writes slots into a fresh recipe side, which starts with one
// empty slot.
func FillSide(s *store.Store, id string, side catalog.Side, slots []catalog.Slot) error {
	for i, slot := range slots {
		if i > 0 {
			if _, err := s.AddRecipeSlot(id, side); err != nil {
				return err
			}
		}
		if err := s.UpdateRecipeSlot(id, side, i, store.SetSlotItem(slot.ItemID)); err != nil {
			return err
		}
		if slot.Qty > 1 {
			if err := s.UpdateRecipeSlot(id, side, i, store.SetSlotQty(slot.Qty)); err != nil {
				return err
			}
		}
	}
	return nil
}

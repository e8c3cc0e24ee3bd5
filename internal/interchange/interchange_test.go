package interchange

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/database"
	"github.com/antti/craftbook/internal/store"
)

const headerTable = `<html><body>
<table id="recipes">
  <thead>
    <tr><th>Input 1</th><th>Input 2</th><th>Time</th><th>Result</th><th>Notes</th></tr>
  </thead>
  <tbody>
    <tr>
      <td><div class="cell-content"><img src="/img/wood.png" alt="Wood"><span class="cell-text">Wood x2</span></div></td>
      <td><span class="sort">Stone</span><span class="amount">x3</span></td>
      <td>1m 30s</td>
      <td><img src="https://cdn.example.com/plank.png" alt="Plank"></td>
      <td>ignored</td>
    </tr>
    <tr>
      <td>Iron Ore</td>
      <td></td>
      <td>soon</td>
      <td>Iron Ingot x 2</td>
      <td></td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseHTMLTableWithHeader(t *testing.T) {
	base, _ := url.Parse("https://wiki.example.com/recipes")
	rows, err := ParseHTMLTable(strings.NewReader(headerTable), base, "#recipes")
	if err != nil {
		t.Fatalf("ParseHTMLTable: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	wantInputs := []Cell{
		{Name: "Wood", Qty: 2, Icon: "https://wiki.example.com/img/wood.png"},
		{Name: "Stone", Qty: 3},
	}
	if len(first.Inputs) != 2 || first.Inputs[0] != wantInputs[0] || first.Inputs[1] != wantInputs[1] {
		t.Errorf("inputs = %+v, want %+v", first.Inputs, wantInputs)
	}
	if len(first.Outputs) != 1 || first.Outputs[0] != (Cell{Name: "Plank", Qty: 1, Icon: "https://cdn.example.com/plank.png"}) {
		t.Errorf("outputs = %+v", first.Outputs)
	}
	if !first.HasDuration || first.Duration != 90 {
		t.Errorf("duration = %d (%v), want 90", first.Duration, first.HasDuration)
	}

	second := rows[1]
	if len(second.Inputs) != 1 || second.Inputs[0].Name != "Iron Ore" {
		t.Errorf("second inputs = %+v", second.Inputs)
	}
	if len(second.Outputs) != 1 || second.Outputs[0] != (Cell{Name: "Iron Ingot", Qty: 2}) {
		t.Errorf("second outputs = %+v", second.Outputs)
	}
	if second.HasDuration {
		t.Error("unparseable time should not set a duration")
	}
}

func TestParseHTMLTablePositional(t *testing.T) {
	html := `<table>
<tr><td>Sand</td><td>Coal</td><td>Glass x4</td></tr>
<tr><td></td><td></td><td></td></tr>
</table>`

	rows, err := ParseHTMLTable(strings.NewReader(html), nil, "")
	if err != nil {
		t.Fatalf("ParseHTMLTable: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if len(rows[0].Inputs) != 2 || rows[0].Inputs[1].Name != "Coal" {
		t.Errorf("inputs = %+v", rows[0].Inputs)
	}
	if len(rows[0].Outputs) != 1 || rows[0].Outputs[0] != (Cell{Name: "Glass", Qty: 4}) {
		t.Errorf("outputs = %+v", rows[0].Outputs)
	}
}

func TestParseHTMLTableMissing(t *testing.T) {
	_, err := ParseHTMLTable(strings.NewReader("<p>no tables</p>"), nil, "table.recipes")
	if err == nil {
		t.Error("Expected error for missing table")
	}
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(database.NewMemory(catalog.Snapshot{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMergeRows(t *testing.T) {
	s := newStore(t)
	existing, _ := s.AddItem("wood", "", "")

	rows := []TableRow{
		{
			Inputs:      []Cell{{Name: "Wood", Qty: 2}, {Name: "Stone", Qty: 3, Icon: "https://cdn.example.com/stone.png"}},
			Outputs:     []Cell{{Name: "Plank", Qty: 1, Icon: "/relative.png"}},
			Duration:    90,
			HasDuration: true,
		},
		{Inputs: []Cell{{Name: "Bad, Name", Qty: 1}}},
		{Inputs: []Cell{{Name: "stone", Qty: 1}}, Outputs: []Cell{{Name: "Gravel", Qty: 2}}},
	}

	res, err := MergeRows(s, rows)
	if err != nil {
		t.Fatalf("MergeRows: %v", err)
	}
	if res.Items != 3 || res.Recipes != 2 || res.Skipped != 2 {
		t.Errorf("result = %+v, want 3 items, 2 recipes, 2 skipped", res)
	}

	stone, ok := s.FindItemByName("Stone")
	if !ok || stone.Icon != "https://cdn.example.com/stone.png" {
		t.Errorf("stone = %+v, %v", stone, ok)
	}
	if plank, _ := s.FindItemByName("Plank"); plank.Icon != "" {
		t.Errorf("relative icon should be dropped, got %q", plank.Icon)
	}

	recipes := s.Recipes()
	if len(recipes) != 2 {
		t.Fatalf("Expected 2 recipes, got %d", len(recipes))
	}
	r := recipes[0]
	if len(r.Inputs) != 2 || r.Inputs[0] != (catalog.Slot{ItemID: existing, Qty: 2}) || r.Inputs[1] != (catalog.Slot{ItemID: stone.ID, Qty: 3}) {
		t.Errorf("inputs = %+v", r.Inputs)
	}
	if r.Duration != 90 || !r.Complete() {
		t.Errorf("recipe = %+v", r)
	}
	if recipes[1].Inputs[0].ItemID != stone.ID {
		t.Error("second row should reuse Stone")
	}
}

func sampleSnapshot() catalog.Snapshot {
	snap := catalog.NewSnapshot()
	snap.Items["w"] = catalog.Item{ID: "w", Name: "Wood", Created: 1, LastMaximized: 1700000000000}
	snap.Items["p"] = catalog.Item{ID: "p", Name: "Plank", IconKey: "icon-p", Created: 2}
	snap.Recipes["r"] = catalog.Recipe{
		ID:         "r",
		Inputs:     []catalog.Slot{{ItemID: "w", Qty: 2}},
		Outputs:    []catalog.Slot{{ItemID: "p", Qty: 1}, catalog.EmptySlot()},
		Duration:   5400,
		Reversible: true,
		Created:    3,
	}
	return snap
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportXLSX(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	items, err := f.GetRows(ItemsSheet)
	if err != nil {
		t.Fatalf("GetRows(Items): %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected header + 2 item rows, got %d", len(items))
	}
	if items[1][1] != "Wood" || items[1][4] != "2023-11-14T22:13:20Z" {
		t.Errorf("wood row = %v", items[1])
	}
	if items[2][1] != "Plank" || items[2][3] != "blob:icon-p" {
		t.Errorf("plank row = %v", items[2])
	}

	recipes, err := f.GetRows(RecipesSheet)
	if err != nil {
		t.Fatalf("GetRows(Recipes): %v", err)
	}
	want := []string{"r", "2x Wood", "Plank, ?", "1h30m", "yes"}
	if len(recipes) != 2 || strings.Join(recipes[1], "|") != strings.Join(want, "|") {
		t.Errorf("recipe rows = %v, want %v", recipes, want)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	if err := WriteXLSX(path, sampleSnapshot()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != ItemsSheet || got[1] != RecipesSheet {
		t.Errorf("sheets = %v", got)
	}
}

package search

import (
	"math"
	"strings"
	"testing"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/database"
	"github.com/antti/craftbook/internal/events"
	"github.com/antti/craftbook/internal/store"
)

const epsilon = 1e-9

type names map[string]string

func (n names) ItemName(id string) (string, bool) {
	name, ok := n[id]
	return name, ok
}

func itemNames(items []catalog.Item) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return strings.Join(out, ",")
}

func TestParseRecipeQuery(t *testing.T) {
	tests := []struct {
		name            string
		inputs, outputs string
		dur             string
		wantIn, wantOut int
		wantDur         int
		wantHasDur      bool
	}{
		{"all empty", "", "", "", 0, 0, 0, false},
		{"lists", " Wood , ,Stone ", "Plank", "", 2, 1, 0, false},
		{"duration", "", "", "1m30s", 0, 0, 90, true},
		{"bad duration", "Wood", "", "soon", 1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseRecipeQuery(tt.inputs, tt.outputs, tt.dur)
			if len(q.Inputs) != tt.wantIn || len(q.Outputs) != tt.wantOut {
				t.Errorf("lists = %q / %q", q.Inputs, q.Outputs)
			}
			if q.Duration != tt.wantDur || q.HasDuration != tt.wantHasDur {
				t.Errorf("duration = %d, %v, want %d, %v", q.Duration, q.HasDuration, tt.wantDur, tt.wantHasDur)
			}
		})
	}

	if q := ParseRecipeQuery("", "", ""); !q.Empty() {
		t.Error("empty fields should give an empty query")
	}
	if q := ParseRecipeQuery(" Wood ,,", "", ""); q.Inputs[0] != "Wood" {
		t.Errorf("Inputs[0] = %q, want trimmed Wood", q.Inputs[0])
	}
}

func TestNameSetScore(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		queries []string
		want    float64
	}{
		{"no queries", []string{"Wood"}, nil, 1},
		{"no names", nil, []string{"Wood"}, 0},
		{"exact", []string{"Wood"}, []string{"wood"}, 1},
		{"prefix", []string{"Wooden Plank"}, []string{"wood"}, 0.5},
		{"best name wins", []string{"Stone", "Wood"}, []string{"Wood"}, 1},
		{"mean of queries", []string{"Wood"}, []string{"Wood", "Wo"}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameSetScore(tt.names, tt.queries); math.Abs(got-tt.want) > epsilon {
				t.Errorf("NameSetScore(%q, %q) = %v, want %v", tt.names, tt.queries, got, tt.want)
			}
		})
	}
}

func TestDurationScore(t *testing.T) {
	tests := []struct {
		d    int
		q    RecipeQuery
		want float64
	}{
		{30, RecipeQuery{}, 1},
		{30, RecipeQuery{Duration: 30, HasDuration: true}, 1},
		{30, RecipeQuery{Duration: 60, HasDuration: true}, 1 - 30.0/604800},
		{0, RecipeQuery{Duration: 604800, HasDuration: true}, 0},
		{0, RecipeQuery{Duration: 2 * 604800, HasDuration: true}, 0},
		{604800, RecipeQuery{Duration: 302400, HasDuration: true}, 0.5},
	}

	for _, tt := range tests {
		if got := DurationScore(tt.d, tt.q); math.Abs(got-tt.want) > epsilon {
			t.Errorf("DurationScore(%d, %+v) = %v, want %v", tt.d, tt.q, got, tt.want)
		}
	}
}

func TestRelevance(t *testing.T) {
	if got := Relevance(1, 1, 1); got != 1 {
		t.Errorf("Relevance(1,1,1) = %v", got)
	}
	if got := Relevance(0, 1, 1); got != 0 {
		t.Errorf("Relevance(0,1,1) = %v", got)
	}
	want := math.Pow(0.5, 0.4)
	if got := Relevance(0.5, 1, 1); math.Abs(got-want) > epsilon {
		t.Errorf("Relevance(0.5,1,1) = %v, want %v", got, want)
	}
}

func TestWoodPlankScenario(t *testing.T) {
	s, err := store.New(database.NewMemory(catalog.Snapshot{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	wood, _ := s.AddItem("Wood", "", "")
	plank, _ := s.AddItem("Plank", "", "")
	id, _ := s.AddRecipe()
	s.UpdateRecipeSlot(id, catalog.Inputs, 0, store.SetSlotItem(wood))
	s.UpdateRecipeSlot(id, catalog.Inputs, 0, store.SetSlotQty(2))
	s.UpdateRecipeSlot(id, catalog.Outputs, 0, store.SetSlotItem(plank))
	s.UpdateRecipe(id, store.SetDuration(30))

	r, _ := s.GetRecipe(id)

	exact := ScoreRecipe(r, s, ParseRecipeQuery("Wood", "Plank", "30s"))
	if exact.Input != 1 || exact.Output != 1 || exact.Duration != 1 || exact.Score != 1 {
		t.Errorf("exact query = %+v, want all scores 1", exact)
	}

	minute := ScoreRecipe(r, s, ParseRecipeQuery("Wood", "Plank", "1m"))
	wantDur := 1 - 30.0/604800
	if math.Abs(minute.Duration-wantDur) > epsilon {
		t.Errorf("durationScore = %v, want %v", minute.Duration, wantDur)
	}
	if math.Abs(minute.Score-math.Pow(wantDur, 0.2)) > epsilon || minute.Score >= 1 {
		t.Errorf("score = %v, want %v", minute.Score, math.Pow(wantDur, 0.2))
	}
}

func TestRankRecipes(t *testing.T) {
	n := names{"w": "Wood", "p": "Plank", "s": "Stone", "b": "Stone Brick"}
	recipes := []catalog.Recipe{
		{ID: "bricks", Inputs: []catalog.Slot{{ItemID: "s", Qty: 4}}, Outputs: []catalog.Slot{{ItemID: "b", Qty: 1}}, Duration: 60},
		{ID: "planks", Inputs: []catalog.Slot{{ItemID: "w", Qty: 1}}, Outputs: []catalog.Slot{{ItemID: "p", Qty: 4}}, Duration: 30},
		{ID: "empty", Inputs: []catalog.Slot{catalog.EmptySlot()}, Outputs: []catalog.Slot{catalog.EmptySlot()}},
		{ID: "planks2", Inputs: []catalog.Slot{{ItemID: "w", Qty: 2}}, Outputs: []catalog.Slot{{ItemID: "p", Qty: 8}}, Duration: 30},
	}

	got := RankRecipes(recipes, n, ParseRecipeQuery("wood", "", ""))
	var order []string
	for _, sr := range got {
		order = append(order, sr.Recipe.ID)
	}
	if order[0] != "planks" || order[1] != "planks2" || order[3] != "empty" {
		t.Errorf("order = %v, want planks, planks2 first (stable) and empty last", order)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}

	// No query leaves the order alone.
	got = RankRecipes(recipes, n, RecipeQuery{})
	for i, sr := range got {
		if sr.Recipe.ID != recipes[i].ID || sr.Score != 1 {
			t.Errorf("unconstrained rank %d = %s (%v)", i, sr.Recipe.ID, sr.Score)
		}
	}
}

func TestSideNamesSkipsUnknown(t *testing.T) {
	r := catalog.Recipe{Inputs: []catalog.Slot{{ItemID: "w", Qty: 1}, catalog.EmptySlot(), {ItemID: "gone", Qty: 1}}}
	got := SideNames(r, catalog.Inputs, names{"w": "Wood"})
	if len(got) != 1 || got[0] != "Wood" {
		t.Errorf("SideNames() = %v, want [Wood]", got)
	}
}

func TestParseItemSort(t *testing.T) {
	for _, in := range []string{"name", "AZ", "za", " recent "} {
		if _, err := ParseItemSort(in); err != nil {
			t.Errorf("ParseItemSort(%q): %v", in, err)
		}
	}
	if mode, _ := ParseItemSort(""); mode != SortName {
		t.Errorf("ParseItemSort(\"\") = %q, want name", mode)
	}
	if _, err := ParseItemSort("size"); err == nil {
		t.Error("ParseItemSort(size) should fail")
	}
}

func TestSortItems(t *testing.T) {
	items := []catalog.Item{
		{ID: "1", Name: "pineapple", LastMaximized: 5},
		{ID: "2", Name: "Banana", LastMaximized: 0},
		{ID: "3", Name: "apple", LastMaximized: 9},
		{ID: "4", Name: "Apple Pie", LastMaximized: 0},
		{ID: "5", Name: "cherry", LastMaximized: 7},
	}

	tests := []struct {
		mode  ItemSort
		query string
		want  string
	}{
		{SortName, "apple", "apple,Apple Pie,pineapple,Banana,cherry"},
		{SortName, "", "pineapple,Banana,apple,Apple Pie,cherry"},
		{SortAZ, "", "apple,Apple Pie,Banana,cherry,pineapple"},
		{SortZA, "", "pineapple,cherry,Banana,Apple Pie,apple"},
		{SortRecent, "ignored", "apple,cherry,pineapple,Banana,Apple Pie"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.query, func(t *testing.T) {
			if got := itemNames(SortItems(items, tt.mode, tt.query)); got != tt.want {
				t.Errorf("SortItems(%s, %q) = %s, want %s", tt.mode, tt.query, got, tt.want)
			}
		})
	}

	if items[0].Name != "pineapple" {
		t.Error("SortItems modified its input")
	}
}

func TestLive(t *testing.T) {
	bus := events.NewBus()
	s, err := store.New(database.NewMemory(catalog.Snapshot{}), bus)
	if err != nil {
		t.Fatal(err)
	}
	s.AddItem("Stone", "", "")
	wood, _ := s.AddItem("Wood", "", "")

	live := NewLive(s, bus, SortName)
	live.SetItemQuery("wo")
	if got := itemNames(live.Items()); got != "Wood,Stone" {
		t.Errorf("initial items = %s", got)
	}

	// A rename must re-sort without any call on the view.
	s.UpdateItem(wood, store.SetName("Oak"))
	if got := itemNames(live.Items()); got != "Stone,Oak" {
		t.Errorf("after rename items = %s, want Stone,Oak", got)
	}

	// Recipe ranking follows item names resolved at refresh time.
	r1, _ := s.AddRecipe()
	r2, _ := s.AddRecipe()
	s.UpdateRecipeSlot(r2, catalog.Outputs, 0, store.SetSlotItem(wood))
	live.SetRecipeQuery(ParseRecipeQuery("", "oak", ""))
	if got := live.Recipes(); len(got) != 2 || got[0].Recipe.ID != r2 || got[1].Recipe.ID != r1 {
		t.Errorf("ranking = %+v, want %s first", got, r2)
	}

	before := live.Refreshes()
	s.Reset()
	if live.Refreshes() != before+1 || len(live.Items()) != 0 || len(live.Recipes()) != 0 {
		t.Errorf("reset not reflected: refreshes %d->%d", before, live.Refreshes())
	}

	live.Close()
	s.AddItem("Iron", "", "")
	if len(live.Items()) != 0 {
		t.Error("closed view kept refreshing")
	}
}

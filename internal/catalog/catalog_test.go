package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Wood", false},
		{"with-space", "Iron Ingot", false},
		{"unicode", "Ørkensand", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"comma", "Wood, Oak", true},
		{"trailing-comma", "Wood,", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var invalid *InvalidNameError
				if !errors.As(err, &invalid) {
					t.Errorf("ValidateName(%q) returned %T, want *InvalidNameError", tt.input, err)
				}
			}
		})
	}
}

func TestValidateIconURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.com/wood.png", false},
		{"http://cdn.example.org/a", false},
		{"ftp://example.com/wood.png", true},
		{"https://localhost/wood.png", true},
		{"https://.example.com/", true},
		{"https://example.com./", true},
		{"example.com/wood.png", true},
		{"", true},
		{"https://exa mple.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateIconURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIconURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseQty(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"two", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQty(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseQty(%q) = %d, %v, want %d (err %v)", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseSide(t *testing.T) {
	for _, in := range []string{"in", "Input", "inputs"} {
		if got, err := ParseSide(in); err != nil || got != Inputs {
			t.Errorf("ParseSide(%q) = %q, %v", in, got, err)
		}
	}
	for _, out := range []string{"out", "OUTPUT", "outputs"} {
		if got, err := ParseSide(out); err != nil || got != Outputs {
			t.Errorf("ParseSide(%q) = %q, %v", out, got, err)
		}
	}
	if _, err := ParseSide("sideways"); err == nil {
		t.Error("ParseSide(sideways) should fail")
	}
}

func TestSlotUnmarshalLegacyID(t *testing.T) {
	tests := []struct {
		input string
		want  Slot
	}{
		{`{"itemId":"abc","qty":2}`, Slot{ItemID: "abc", Qty: 2}},
		{`{"id":"abc","qty":3}`, Slot{ItemID: "abc", Qty: 3}},
		{`{"id":null,"qty":1}`, Slot{Qty: 1}},
		{`{"itemId":"new","id":"old","qty":1}`, Slot{ItemID: "new", Qty: 1}},
	}

	for _, tt := range tests {
		var got Slot
		if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestRecipeCompleteAndReferences(t *testing.T) {
	r := Recipe{
		ID:      "r1",
		Inputs:  []Slot{{ItemID: "wood", Qty: 2}},
		Outputs: []Slot{{ItemID: "plank", Qty: 1}},
	}
	if !r.Complete() {
		t.Error("expected recipe to be complete")
	}
	if !r.References("wood") || !r.References("plank") {
		t.Error("expected recipe to reference wood and plank")
	}
	if r.References("stone") || r.References("") {
		t.Error("recipe should not reference stone or the empty id")
	}

	r.Outputs = append(r.Outputs, EmptySlot())
	if r.Complete() {
		t.Error("recipe with an empty slot should not be complete")
	}
}

func TestRecipeCloneIsDeep(t *testing.T) {
	r := Recipe{ID: "r1", Inputs: []Slot{{ItemID: "a", Qty: 1}}, Outputs: []Slot{{ItemID: "b", Qty: 1}}}
	c := r.Clone()
	c.Inputs[0].ItemID = "changed"
	if r.Inputs[0].ItemID != "a" {
		t.Error("Clone shares the inputs slice with the original")
	}
}

func TestSnapshotCheck(t *testing.T) {
	snap := NewSnapshot()
	if err := snap.Check(); err != nil {
		t.Fatalf("Check on new snapshot: %v", err)
	}

	missing := Snapshot{Version: SnapshotVersion, Items: map[string]Item{}}
	err := missing.Check()
	var format *FormatError
	if !errors.As(err, &format) || !errors.Is(err, ErrMissingCollections) {
		t.Errorf("Check without recipes = %v, want FormatError wrapping ErrMissingCollections", err)
	}

	future := NewSnapshot()
	future.Version = 2
	var version *UnsupportedVersionError
	if err := future.Check(); !errors.As(err, &version) || version.Version != 2 {
		t.Errorf("Check on version 2 = %v, want UnsupportedVersionError", err)
	}
}

func TestSnapshotRepair(t *testing.T) {
	snap := NewSnapshot()
	snap.Items["wood"] = Item{ID: "wood", Name: "Wood"}
	snap.Recipes["r1"] = Recipe{
		ID:      "r1",
		Inputs:  []Slot{{ItemID: "wood", Qty: 0}, {ItemID: "ghost", Qty: 2}},
		Outputs: nil,
	}
	snap.Recipes["r2"] = Recipe{
		ID:      "r2",
		Inputs:  []Slot{{ItemID: "wood", Qty: 1}},
		Outputs: []Slot{{ItemID: "wood", Qty: 1}},
	}

	if fixes := snap.Repair(); fixes != 1 {
		t.Errorf("Repair() = %d fixes, want 1", fixes)
	}

	r := snap.Recipes["r1"]
	if r.Inputs[0].Qty != 1 {
		t.Errorf("qty not raised to 1: %+v", r.Inputs[0])
	}
	if r.Inputs[1].ItemID != "" {
		t.Errorf("dangling reference kept: %+v", r.Inputs[1])
	}
	if len(r.Outputs) != 1 || r.Outputs[0] != EmptySlot() {
		t.Errorf("empty outputs not refilled: %+v", r.Outputs)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	snap := NewSnapshot()
	snap.Items["a"] = Item{ID: "a", Name: "A"}
	snap.Recipes["r"] = Recipe{ID: "r", Inputs: []Slot{{ItemID: "a", Qty: 1}}, Outputs: []Slot{EmptySlot()}}

	c := snap.Clone()
	c.Items["b"] = Item{ID: "b"}
	r := c.Recipes["r"]
	r.Inputs[0].ItemID = ""

	if _, ok := snap.Items["b"]; ok {
		t.Error("Clone shares the items map")
	}
	if snap.Recipes["r"].Inputs[0].ItemID != "a" {
		t.Error("Clone shares recipe slots")
	}
}

func TestSnapshotOrdering(t *testing.T) {
	snap := NewSnapshot()
	snap.Items["z"] = Item{ID: "z", Created: 1}
	snap.Items["a"] = Item{ID: "a", Created: 2}
	snap.Items["m"] = Item{ID: "m", Created: 1}

	got := strings.Join(snap.ItemIDs(), ",")
	if got != "m,z,a" {
		t.Errorf("ItemIDs() = %s, want m,z,a", got)
	}
}

func TestResolveIcon(t *testing.T) {
	ctx := context.Background()
	resolver := func(ctx context.Context, key string) (string, error) {
		if key == "icon-1" {
			return "blob:icon-1", nil
		}
		if key == "broken" {
			return "", errors.New("storage offline")
		}
		return "", nil
	}

	tests := []struct {
		name string
		item Item
		want string
	}{
		{"url", Item{Icon: "https://example.com/a.png"}, "https://example.com/a.png"},
		{"blob", Item{IconKey: "icon-1"}, "blob:icon-1"},
		{"bad url falls to blob", Item{Icon: "nope", IconKey: "icon-1"}, "blob:icon-1"},
		{"missing blob", Item{IconKey: "icon-2"}, Placeholder},
		{"resolver error", Item{IconKey: "broken"}, Placeholder},
		{"nothing", Item{}, Placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveIcon(ctx, tt.item, resolver); got != tt.want {
				t.Errorf("ResolveIcon() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := ResolveIcon(ctx, Item{IconKey: "icon-1"}, nil); got != Placeholder {
		t.Errorf("ResolveIcon without resolver = %q, want placeholder", got)
	}
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "icon-wood.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	resolve := DirResolver(dir)
	got, err := resolve(context.Background(), "icon-wood")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "icon-wood.png") {
		t.Errorf("resolve(icon-wood) = %q, want file URL to icon-wood.png", got)
	}

	got, err = resolve(context.Background(), "icon-missing")
	if err != nil || got != "" {
		t.Errorf("resolve(icon-missing) = %q, %v, want empty", got, err)
	}
}

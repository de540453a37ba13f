package spell

import (
	"slices"
	"testing"
)

func TestKeywords(t *testing.T) {
	s := Spell{Name: "Greater Ward", Effect: "Increases armor rating, negates spells up to 60 points."}
	got := s.Keywords()
	want := []string{"greater", "ward", "increases", "armor", "rating", "negates", "spells", "up", "to", "60", "points"}
	if !slices.Equal(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}
}

func TestKeywords_Empty(t *testing.T) {
	if got := (Spell{}).Keywords(); len(got) != 0 {
		t.Errorf("Keywords() = %v, want none", got)
	}
}

func TestBySchool(t *testing.T) {
	spells := []Spell{
		{ID: "a", School: "Destruction"},
		{ID: "b", School: "Restoration"},
		{ID: "c", School: "Destruction"},
		{ID: "d", School: "Alteration"},
	}
	groups, order := BySchool(spells)

	if !slices.Equal(order, []string{"Destruction", "Restoration", "Alteration"}) {
		t.Errorf("order = %v, want first-seen order", order)
	}
	if len(groups["Destruction"]) != 2 {
		t.Errorf("Destruction group = %v", groups["Destruction"])
	}
	if groups["Destruction"][0].ID != "a" || groups["Destruction"][1].ID != "c" {
		t.Error("input order not preserved within school")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var s Settings
	s.ValidateAndSetDefaults()

	if s.MaxChildrenPerNode != DefaultMaxChildren {
		t.Errorf("MaxChildrenPerNode = %d, want %d", s.MaxChildrenPerNode, DefaultMaxChildren)
	}
	if s.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", s.Seed, DefaultSeed)
	}
	if s.Shapes == nil {
		t.Error("Shapes map not initialized")
	}

	// Out-of-range values clamp to defaults.
	s = Settings{MaxChildrenPerNode: -1}
	s.ValidateAndSetDefaults()
	if s.MaxChildrenPerNode != DefaultMaxChildren {
		t.Errorf("negative cap = %d, want default", s.MaxChildrenPerNode)
	}

	// Explicit values survive.
	s = Settings{MaxChildrenPerNode: 5, Seed: 9}
	s.ValidateAndSetDefaults()
	if s.MaxChildrenPerNode != 5 || s.Seed != 9 {
		t.Errorf("explicit settings changed: %+v", s)
	}

	// Strict isolation implies isolation.
	s = Settings{ElementIsolationStrict: true}
	s.ValidateAndSetDefaults()
	if !s.ElementIsolation {
		t.Error("strict isolation should imply isolation")
	}
}

func TestShapeFor(t *testing.T) {
	s := Settings{Shapes: map[string]string{"Destruction": "explosion", "Empty": ""}}

	if got := s.ShapeFor("Destruction"); got != "explosion" {
		t.Errorf("ShapeFor(Destruction) = %q, want explosion", got)
	}
	if got := s.ShapeFor("Restoration"); got != DefaultShape {
		t.Errorf("ShapeFor(Restoration) = %q, want %q", got, DefaultShape)
	}
	// An empty assignment falls back too.
	if got := s.ShapeFor("Empty"); got != DefaultShape {
		t.Errorf("ShapeFor(Empty) = %q, want %q", got, DefaultShape)
	}
}

package layout

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/caldwen/spellweave/pkg/shape"
	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/tree"
)

func layoutInput() (map[string][]spell.Spell, []string) {
	schools := map[string][]spell.Spell{
		"Destruction": {
			{ID: "flames", Tier: 0, Element: spell.ElementFire, School: "Destruction"},
			{ID: "firebolt", Tier: 1, Element: spell.ElementFire, School: "Destruction"},
			{ID: "fireball", Tier: 2, Element: spell.ElementFire, School: "Destruction"},
			{ID: "frostbite", Tier: 0, Element: spell.ElementFrost, School: "Destruction"},
			{ID: "icespike", Tier: 1, Element: spell.ElementFrost, School: "Destruction"},
			{ID: "incinerate", Tier: 3, Element: spell.ElementFire, School: "Destruction"},
		},
		"Restoration": {
			{ID: "healing", Tier: 0, Element: spell.ElementLight, School: "Restoration"},
			{ID: "candlelight", Tier: 1, Element: spell.ElementLight, School: "Restoration"},
			{ID: "oakflesh", Tier: 2, Element: spell.ElementNature, School: "Restoration"},
		},
	}
	return schools, []string{"Destruction", "Restoration"}
}

func TestAllocateSectors_EqualSpans(t *testing.T) {
	sectors := AllocateSectors([]string{"a", "b", "c"})
	if len(sectors) != 3 {
		t.Fatalf("len(sectors) = %d, want 3", len(sectors))
	}

	wantSpan := (2*math.Pi - 3*SectorPadding) / 3
	for school, s := range sectors {
		if math.Abs(s.Span-wantSpan) > 1e-12 {
			t.Errorf("sector %s span = %v, want %v", school, s.Span, wantSpan)
		}
		if math.Abs(s.Bisector-(s.Start+s.Span/2)) > 1e-12 {
			t.Errorf("sector %s bisector = %v, want start+span/2", school, s.Bisector)
		}
	}
}

func TestAllocateSectors_Empty(t *testing.T) {
	if got := AllocateSectors(nil); len(got) != 0 {
		t.Errorf("AllocateSectors(nil) = %v, want empty", got)
	}
}

func TestGenerate_EverySpellPlaced(t *testing.T) {
	schools, order := layoutInput()
	result := Generate(schools, order, spell.DefaultSettings())

	for school, spells := range schools {
		positions := result.Positions[school]
		if len(positions) != len(spells) {
			t.Errorf("%s: %d positions, want %d", school, len(positions), len(spells))
		}
		seen := make(map[string]bool)
		for _, p := range positions {
			if p.ID == "" {
				t.Errorf("%s: position with empty ID", school)
			}
			if seen[p.ID] {
				t.Errorf("%s: duplicate position for %s", school, p.ID)
			}
			seen[p.ID] = true
		}
	}
}

func TestGenerate_RootAtBisector(t *testing.T) {
	schools, order := layoutInput()
	result := Generate(schools, order, spell.DefaultSettings())

	for school, positions := range result.Positions {
		sector := result.Sectors[school]
		roots := 0
		for _, p := range positions {
			if !p.IsRoot {
				continue
			}
			roots++
			if math.Abs(angleDiff(p.Angle, sector.Bisector)) > 1e-9 {
				t.Errorf("%s: root angle = %v, want bisector %v", school, p.Angle, sector.Bisector)
			}
			if p.Radius != innerRadius {
				t.Errorf("%s: root radius = %v, want %v", school, p.Radius, innerRadius)
			}
		}
		if roots != 1 {
			t.Errorf("%s: %d root positions, want 1", school, roots)
		}
	}
}

func TestGenerate_RootMatchesTreeRoot(t *testing.T) {
	// Several tier-0 spells: the root slot must go to the spell the tree
	// builder selects, not to whichever tier-0 spell comes first in input
	// order.
	spells := []spell.Spell{
		{ID: "spell_042", Tier: 0, School: "S"},
		{ID: "spell_001", Tier: 0, School: "S"},
		{ID: "spell_007", Tier: 1, School: "S"},
	}
	built := tree.Build("S", spells, spell.DefaultSettings())
	result := Generate(map[string][]spell.Spell{"S": spells}, []string{"S"}, spell.DefaultSettings())

	var rootID string
	for _, p := range result.Positions["S"] {
		if p.IsRoot {
			rootID = p.ID
		}
	}
	if rootID != built.Tree.RootID() {
		t.Errorf("layout root = %s, tree root = %s; want the same spell", rootID, built.Tree.RootID())
	}
	if rootID != "spell_001" {
		t.Errorf("layout root = %s, want spell_001 (lowest canonical rank)", rootID)
	}
}

func TestGenerate_WithinSectorBounds(t *testing.T) {
	schools, order := layoutInput()
	result := Generate(schools, order, spell.DefaultSettings())

	for school, positions := range result.Positions {
		sector := result.Sectors[school]
		limit := sector.Span/2 - clampPadding
		for _, p := range positions {
			if p.IsRoot {
				continue
			}
			if dev := math.Abs(angleDiff(p.Angle, sector.Bisector)); dev > limit+1e-9 {
				t.Errorf("%s: %s deviates %v from bisector, limit %v", school, p.ID, dev, limit)
			}
		}
	}
}

func TestGenerate_ByteIdenticalDeterminism(t *testing.T) {
	schools, order := layoutInput()
	settings := spell.DefaultSettings()
	settings.Seed = 1234
	settings.Shapes = map[string]string{"Destruction": "explosion", "Restoration": "tree"}

	first, err := json.Marshal(Generate(schools, order, settings))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Generate(schools, order, settings))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("two runs with identical inputs produced different bytes")
	}
}

func TestGenerate_SeedChangesLayout(t *testing.T) {
	schools, order := layoutInput()

	a := spell.DefaultSettings()
	a.Seed = 1
	b := spell.DefaultSettings()
	b.Seed = 2

	first, _ := json.Marshal(Generate(schools, order, a))
	second, _ := json.Marshal(Generate(schools, order, b))
	if string(first) == string(second) {
		t.Error("different seeds produced identical layouts")
	}
}

func TestGenerate_SchoolsIndependent(t *testing.T) {
	// Changing one school's spells must not perturb another school's
	// positions: each sector draws from its own rng stream.
	schools, order := layoutInput()
	settings := spell.DefaultSettings()

	before := Generate(schools, order, settings)

	schools["Restoration"] = append(schools["Restoration"],
		spell.Spell{ID: "wardlight", Tier: 3, Element: spell.ElementLight, School: "Restoration"})
	after := Generate(schools, order, settings)

	first, _ := json.Marshal(before.Positions["Destruction"])
	second, _ := json.Marshal(after.Positions["Destruction"])
	if string(first) != string(second) {
		t.Error("Destruction layout changed when Restoration gained a spell")
	}
}

func TestGenerate_MinimumSpacingRespected(t *testing.T) {
	schools, order := layoutInput()
	result := Generate(schools, order, spell.DefaultSettings())

	for school, positions := range result.Positions {
		for i := range positions {
			if positions[i].IsRoot {
				continue
			}
			for j := i + 1; j < len(positions); j++ {
				if positions[j].IsRoot {
					continue
				}
				dist := math.Hypot(positions[j].X-positions[i].X, positions[j].Y-positions[i].Y)
				// Clamping may reintroduce slight overlap at the boundary;
				// allow a margin below the target spacing.
				if dist < minSpacing/2 {
					t.Errorf("%s: %s and %s are %v apart, want >= %v",
						school, positions[i].ID, positions[j].ID, dist, minSpacing/2)
				}
			}
		}
	}
}

func TestGenerate_GridShapeNoJitter(t *testing.T) {
	spells := make([]spell.Spell, 0, 8)
	ids := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	for i, id := range ids {
		spells = append(spells, spell.Spell{ID: id, Tier: min(i/2, 4), School: "S"})
	}
	settings := spell.DefaultSettings()
	settings.Shapes = map[string]string{"S": "grid"}

	first, _ := json.Marshal(Generate(map[string][]spell.Spell{"S": spells}, []string{"S"}, settings))
	second, _ := json.Marshal(Generate(map[string][]spell.Spell{"S": spells}, []string{"S"}, settings))
	if string(first) != string(second) {
		t.Error("grid layout not deterministic")
	}
}

func TestGenerate_EmptySchool(t *testing.T) {
	result := Generate(map[string][]spell.Spell{"S": nil}, []string{"S"}, spell.DefaultSettings())
	if got := result.Positions["S"]; got != nil {
		t.Errorf("Positions[S] = %v, want nil", got)
	}
}

func TestEstimateTiers_CappedAtMax(t *testing.T) {
	profile := shape.ProfileFor("organic")
	if got := estimateTiers(10000, math.Pi/8, profile); got != MaxTiers {
		t.Errorf("estimateTiers(huge) = %d, want cap %d", got, MaxTiers)
	}
	if got := estimateTiers(1, math.Pi, profile); got < 1 {
		t.Errorf("estimateTiers(1) = %d, want >= 1", got)
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caldwen/spellweave/pkg/errors"
	"github.com/caldwen/spellweave/pkg/spell"
)

const sampleManifest = `
[settings]
max_children_per_node = 2
element_isolation = true
seed = 7

[settings.shapes]
Destruction = "explosion"
Restoration = "tree"

[[spells]]
id = "dest_001"
name = "Flames"
school = "Destruction"
level = "novice"
effect = "A gout of fire that burns the target."

[[spells]]
id = "dest_002"
name = "Firebolt"
school = "Destruction"
level = "apprentice"
effect = "A bolt of fire."
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.Settings.MaxChildrenPerNode != 2 {
		t.Errorf("MaxChildrenPerNode = %d, want 2", m.Settings.MaxChildrenPerNode)
	}
	if !m.Settings.ElementIsolation {
		t.Error("ElementIsolation = false, want true")
	}
	if m.Settings.Seed != 7 {
		t.Errorf("Seed = %d, want 7", m.Settings.Seed)
	}
	if got := m.Settings.ShapeFor("Destruction"); got != "explosion" {
		t.Errorf("ShapeFor(Destruction) = %q, want explosion", got)
	}
	if got := m.Settings.ShapeFor("Conjuration"); got != spell.DefaultShape {
		t.Errorf("ShapeFor(Conjuration) = %q, want %q", got, spell.DefaultShape)
	}

	spells := m.SpellList()
	if len(spells) != 2 {
		t.Fatalf("got %d spells, want 2", len(spells))
	}
	want := spell.Spell{
		ID:     "dest_001",
		Name:   "Flames",
		School: "Destruction",
		Level:  "novice",
		Effect: "A gout of fire that burns the target.",
	}
	if spells[0] != want {
		t.Errorf("spells[0] = %+v, want %+v", spells[0], want)
	}
}

func TestParse_SettingsDefaults(t *testing.T) {
	m, err := Parse([]byte(`[[spells]]
id = "a"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Settings.MaxChildrenPerNode != spell.DefaultMaxChildren {
		t.Errorf("MaxChildrenPerNode = %d, want %d", m.Settings.MaxChildrenPerNode, spell.DefaultMaxChildren)
	}
	if m.Settings.Seed != spell.DefaultSeed {
		t.Errorf("Seed = %d, want %d", m.Settings.Seed, spell.DefaultSeed)
	}
	if m.Settings.Shapes == nil {
		t.Error("Shapes map not initialized")
	}
}

func TestParse_StrictIsolationImpliesIsolation(t *testing.T) {
	m, err := Parse([]byte(`[settings]
element_isolation_strict = true`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.Settings.ElementIsolation {
		t.Error("strict isolation did not enable element isolation")
	}
}

func TestParse_MissingSchoolAndName(t *testing.T) {
	m, err := Parse([]byte(`[[spells]]
id = "orphan_spell"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := m.SpellList()[0]
	if s.School != DefaultSchool {
		t.Errorf("School = %q, want %q", s.School, DefaultSchool)
	}
	if s.Name != "orphan_spell" {
		t.Errorf("Name = %q, want id fallback", s.Name)
	}
}

func TestParse_MissingID(t *testing.T) {
	_, err := Parse([]byte(`[[spells]]
name = "Nameless"`))
	if !errors.Is(err, errors.ErrCodeInvalidSpell) {
		t.Errorf("error = %v, want INVALID_SPELL", err)
	}
}

func TestParse_DuplicateID(t *testing.T) {
	_, err := Parse([]byte(`[[spells]]
id = "dup"

[[spells]]
id = "dup"`))
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("error = %v, want INVALID_MANIFEST", err)
	}
}

func TestParse_InvalidTOML(t *testing.T) {
	_, err := Parse([]byte(`[[spells]`))
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("error = %v, want INVALID_MANIFEST", err)
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	m, err := Parse([]byte(`
future_field = "whatever"

[[spells]]
id = "a"
mana_cost = 40
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Spells) != 1 {
		t.Errorf("got %d spells, want 1", len(m.Spells))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spells.toml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Spells) != 2 {
		t.Errorf("got %d spells, want 2", len(m.Spells))
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("error = %v, want INVALID_MANIFEST", err)
	}
}

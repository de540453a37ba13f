// Package manifest loads spell manifests: TOML files declaring the spells
// to build trees for, plus the build settings.
//
// A manifest looks like:
//
//	[settings]
//	max_children_per_node = 3
//	element_isolation = true
//	seed = 7
//
//	[settings.shapes]
//	Destruction = "explosion"
//	Restoration = "tree"
//
//	[[spells]]
//	id = "dest_001"
//	name = "Flames"
//	school = "Destruction"
//	level = "novice"
//	effect = "A gout of fire that burns the target."
//
// Unknown keys are ignored. Spells with a missing school or level are
// normalized to safe defaults rather than rejected; only structurally
// unusable entries (missing id, duplicate id) fail the load.
package manifest

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/caldwen/spellweave/pkg/errors"
	"github.com/caldwen/spellweave/pkg/spell"
)

// DefaultSchool is assigned to spells whose manifest entry has no school.
const DefaultSchool = "Unsorted"

// Manifest is a decoded spell manifest.
type Manifest struct {
	Settings spell.Settings `toml:"settings"`
	Spells   []spellEntry   `toml:"spells"`
}

type spellEntry struct {
	ID     string `toml:"id"`
	Name   string `toml:"name"`
	School string `toml:"school"`
	Level  string `toml:"level"`
	Effect string `toml:"effect"`
}

// Load reads and validates a manifest file.
func Load(path string) (Manifest, error) {
	if err := errors.ValidateManifestPath(path); err != nil {
		return Manifest{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s not found", path)
		}
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	return Parse(data)
}

// Parse decodes manifest bytes. Settings defaults are applied; spells are
// normalized but not yet classified.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	m.Settings.ValidateAndSetDefaults()

	seen := make(map[string]bool, len(m.Spells))
	for i := range m.Spells {
		e := &m.Spells[i]
		if err := errors.ValidateSpellID(e.ID); err != nil {
			return Manifest{}, err
		}
		if seen[e.ID] {
			return Manifest{}, errors.New(errors.ErrCodeInvalidManifest, "duplicate spell id %q", e.ID)
		}
		seen[e.ID] = true

		// Malformed entries degrade, they don't abort the build.
		if e.School == "" {
			e.School = DefaultSchool
		}
		if e.Name == "" {
			e.Name = e.ID
		}
	}
	return m, nil
}

// SpellList converts the manifest entries into the core spell model.
func (m Manifest) SpellList() []spell.Spell {
	spells := make([]spell.Spell, len(m.Spells))
	for i, e := range m.Spells {
		spells[i] = spell.Spell{
			ID:     e.ID,
			Name:   e.Name,
			School: e.School,
			Level:  e.Level,
			Effect: e.Effect,
		}
	}
	return spells
}

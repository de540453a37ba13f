// Package spell defines the core data model for spellweave: spells, schools,
// elements, and the build settings shared by the tree builder and the radial
// layout generator.
package spell

import "strings"

// Tier bounds. Tiers bucket spells by difficulty, from TierNovice (0) to
// TierMaster (4).
const (
	TierNovice = 0
	TierMaster = 4
)

// Element is an optional thematic tag attached to a spell. The empty string
// means "untagged" - such spells never trigger element isolation rules.
type Element string

// Known elements. The classifier only ever produces one of these (or the
// empty string), but external override providers may supply arbitrary tags,
// which the scorer treats opaquely.
const (
	ElementFire     Element = "fire"
	ElementFrost    Element = "frost"
	ElementShock    Element = "shock"
	ElementPoison   Element = "poison"
	ElementArcane   Element = "arcane"
	ElementLight    Element = "light"
	ElementShadow   Element = "shadow"
	ElementNature   Element = "nature"
)

// Spell is a single item to be placed in a prerequisite tree. Spells are
// created at ingestion and treated as immutable within one build.
type Spell struct {
	ID     string // unique identifier, non-empty
	Name   string // display name
	School string // category; one tree and one sector per school
	Level  string // raw difficulty string ("novice".."master"), classifier input
	Effect string // free-form effect text, classifier + scorer input

	// Assigned by the classifier.
	Tier    int
	Element Element
}

// Keywords returns the lowercase terms of the spell's name and effect text.
// The scorer uses these for thematic overlap; duplicates are preserved so
// callers can dedupe as needed.
func (s Spell) Keywords() []string {
	text := strings.ToLower(s.Name + " " + s.Effect)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

// BySchool groups spells by school, preserving input order within each
// school. The returned school slice lists schools in first-seen order.
func BySchool(spells []Spell) (map[string][]Spell, []string) {
	groups := make(map[string][]Spell)
	var order []string
	for _, s := range spells {
		if _, seen := groups[s.School]; !seen {
			order = append(order, s.School)
		}
		groups[s.School] = append(groups[s.School], s)
	}
	return groups, order
}

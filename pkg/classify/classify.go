// Package classify derives difficulty tiers and element tags for spells.
//
// Classification is rule-based: the tier comes from a fixed five-bucket
// lookup on the spell's difficulty string, and the element from
// case-insensitive keyword matching against the spell's name and effect
// text. An externally supplied override map (for example from a remote
// tagging service, see [Resolve]) always wins over keyword matching.
//
// Results are memoized in an append-only [Cache]. A cache is owned by a
// single build while being written; once a build's classification pass is
// finished the cache is read-only and safe to share with later builds.
package classify

import (
	"strings"

	"github.com/caldwen/spellweave/pkg/spell"
)

// tierBuckets maps the recognized difficulty strings to tiers. Unrecognized
// input falls through to tier 0 so malformed spells still build.
var tierBuckets = map[string]int{
	"novice":     0,
	"apprentice": 1,
	"adept":      2,
	"expert":     3,
	"master":     4,
}

// elementKeywords lists, per element, the substrings that mark a spell as
// belonging to that element. Order matters: the first element with a match
// wins, so more specific vocabularies come first.
var elementKeywords = []struct {
	element  spell.Element
	keywords []string
}{
	{spell.ElementFire, []string{"fire", "flame", "burn", "incinerate", "scorch", "ember", "inferno"}},
	{spell.ElementFrost, []string{"frost", "ice", "freeze", "chill", "glacial", "blizzard", "winter"}},
	{spell.ElementShock, []string{"shock", "lightning", "storm", "thunder", "spark", "volt"}},
	{spell.ElementPoison, []string{"poison", "venom", "toxic", "plague", "blight"}},
	{spell.ElementLight, []string{"light", "sun", "radiant", "holy", "dawn", "candle"}},
	{spell.ElementShadow, []string{"shadow", "dark", "void", "night", "umbral"}},
	{spell.ElementNature, []string{"oak", "root", "thorn", "vine", "bark", "grove"}},
	{spell.ElementArcane, []string{"arcane", "rune", "ward", "mystic", "mana"}},
}

// TierOf returns the tier bucket for a difficulty string. Matching is
// case-insensitive and tolerant of surrounding whitespace; anything
// unrecognized is tier 0.
func TierOf(level string) int {
	if t, ok := tierBuckets[strings.ToLower(strings.TrimSpace(level))]; ok {
		return t
	}
	return 0
}

// ElementOf returns the first element whose keyword set matches the spell's
// name or effect text, or the empty element when nothing matches.
func ElementOf(s spell.Spell) spell.Element {
	text := strings.ToLower(s.Name + " " + s.Effect)
	for _, ek := range elementKeywords {
		for _, kw := range ek.keywords {
			if strings.Contains(text, kw) {
				return ek.element
			}
		}
	}
	return ""
}

// Result is one classification outcome.
type Result struct {
	Tier    int
	Element spell.Element
}

// Classifier assigns tiers and elements to spells. Overrides take precedence
// over keyword matching; the cache short-circuits repeated classification of
// the same spell across builds.
type Classifier struct {
	overrides map[string]spell.Element
	cache     *Cache
}

// New creates a classifier. Both arguments may be nil: a nil override map
// means keyword-only classification, a nil cache disables memoization.
func New(overrides map[string]spell.Element, cache *Cache) *Classifier {
	return &Classifier{overrides: overrides, cache: cache}
}

// Classify returns the tier and element for one spell. Overrides are
// checked before the cache and their results are never cached: the override
// map belongs to a single build, while the cache may outlive it, and a
// cached override would leak into builds that never asked for it.
func (c *Classifier) Classify(s spell.Spell) Result {
	if tag, ok := c.overrides[s.ID]; ok {
		return Result{Tier: TierOf(s.Level), Element: tag}
	}
	if c.cache != nil {
		if r, ok := c.cache.Get(s.ID); ok {
			return r
		}
	}
	r := Result{Tier: TierOf(s.Level), Element: ElementOf(s)}
	if c.cache != nil {
		c.cache.Put(s.ID, r)
	}
	return r
}

// Apply classifies every spell in place and returns the same slice.
func (c *Classifier) Apply(spells []spell.Spell) []spell.Spell {
	for i := range spells {
		r := c.Classify(spells[i])
		spells[i].Tier = r.Tier
		spells[i].Element = r.Element
	}
	return spells
}

// Cache memoizes classification results by spell ID. Entries are only ever
// added, never mutated or removed, which is what makes a finished cache safe
// to reuse across builds without locking.
type Cache struct {
	results map[string]Result
}

// NewCache creates an empty classification cache.
func NewCache() *Cache {
	return &Cache{results: make(map[string]Result)}
}

// Get returns the cached result for a spell ID.
func (c *Cache) Get(id string) (Result, bool) {
	r, ok := c.results[id]
	return r, ok
}

// Put stores a result. The first write for an ID wins; later writes for the
// same ID are ignored to preserve append-only semantics.
func (c *Cache) Put(id string, r Result) {
	if _, exists := c.results[id]; exists {
		return
	}
	c.results[id] = r
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.results) }

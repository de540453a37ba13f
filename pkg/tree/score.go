package tree

import "github.com/caldwen/spellweave/pkg/spell"

// ScoreForbidden is the sentinel returned by [Score] for edges that must
// never be used regardless of how other candidates score.
const ScoreForbidden = -1000.0

// Scoring weights. The base is neutral; bonuses and penalties shift a
// candidate edge around it. Values are tuned so that a same-element adjacent
// pair always beats a cross-element one under soft isolation.
const (
	scoreBase = 50.0

	sameElementBonus    = 30.0
	crossElementPenalty = 40.0

	tierAdjacentBonus    = 20.0
	tierGapTwoBonus      = 5.0
	tierInversionPenalty = 60.0

	keywordBonusPerTerm = 4.0
	keywordBonusCap     = 12.0 // diminishing return after three shared terms
)

// Score rates parent→child as a candidate prerequisite edge. Higher is
// better; ScoreForbidden means the edge is never allowed. The function is
// pure: identical inputs always produce identical output, which both the
// builder and the repairer rely on.
func Score(parent, child *spell.Spell, settings spell.Settings) float64 {
	score := scoreBase

	// Element affinity.
	if parent.Element != "" && child.Element != "" {
		switch {
		case parent.Element == child.Element:
			score += sameElementBonus
		case settings.ElementIsolationStrict:
			return ScoreForbidden
		case settings.ElementIsolation:
			score -= crossElementPenalty
		}
	}

	// Tier progression. A child at the parent's tier or one above it is the
	// natural step; inversions either forbid the edge or cost heavily.
	switch gap := child.Tier - parent.Tier; {
	case gap < 0:
		if settings.StrictTierOrdering {
			return ScoreForbidden
		}
		score -= tierInversionPenalty
	case gap <= 1:
		score += tierAdjacentBonus
	case gap == 2:
		score += tierGapTwoBonus
	}

	score += keywordOverlapBonus(parent, child)
	return score
}

// keywordOverlapBonus rewards shared vocabulary between the two spells,
// capped so long effect texts don't dominate the score.
func keywordOverlapBonus(parent, child *spell.Spell) float64 {
	parentTerms := make(map[string]bool)
	for _, kw := range parent.Keywords() {
		if len(kw) >= 4 { // skip articles and particles
			parentTerms[kw] = true
		}
	}
	shared := 0.0
	counted := make(map[string]bool)
	for _, kw := range child.Keywords() {
		if parentTerms[kw] && !counted[kw] {
			counted[kw] = true
			shared += keywordBonusPerTerm
		}
	}
	return min(shared, keywordBonusCap)
}

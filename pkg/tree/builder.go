package tree

import (
	"sort"
	"strconv"
	"strings"

	"github.com/caldwen/spellweave/pkg/spell"
)

// CapViolation records an edge attached during the relaxation pass, where
// the parent's child count already met the configured maximum. The builder
// prefers full coverage over the branching cap, but every such edge is
// surfaced here rather than hidden.
type CapViolation struct {
	Edge       Edge
	ChildCount int // parent's child count before the edge was added
	Max        int // configured MaxChildrenPerNode
}

// BuildResult is the outcome of constructing one school's tree.
type BuildResult struct {
	Tree *Tree

	// Violations lists branching-cap relaxations; empty for healthy input.
	Violations []CapViolation
}

// Build constructs a prerequisite tree for the spells of one school.
//
// The algorithm is insertion-order greedy: after selecting the root, each
// remaining spell (tier ascending, input order within a tier) attaches to
// the already-placed spell with the best non-forbidden score whose child
// count is below the cap. Spells with no eligible parent are deferred; a
// second pass attaches them to the best-scoring parent regardless of the
// cap, recording a CapViolation. Every spell always ends up in the tree.
//
// Spells must already be classified (Tier and Element populated). An empty
// input yields an empty tree with no root.
func Build(school string, spells []spell.Spell, settings spell.Settings) BuildResult {
	settings.ValidateAndSetDefaults()

	t := New(school)
	if len(spells) == 0 {
		return BuildResult{Tree: t}
	}

	rootIdx := selectRoot(spells)
	_ = t.AddNode(spells[rootIdx])
	_ = t.SetRoot(spells[rootIdx].ID)

	remaining := make([]spell.Spell, 0, len(spells)-1)
	for i, s := range spells {
		if i != rootIdx {
			remaining = append(remaining, s)
		}
	}
	// Stable sort keeps input order within each tier.
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Tier < remaining[j].Tier
	})

	var deferred []spell.Spell
	for _, s := range remaining {
		_ = t.AddNode(s)
		node, _ := t.Node(s.ID)
		if parent, ok := bestParent(t, node, settings, true); ok {
			_ = t.AddEdge(parent, s.ID)
		} else {
			deferred = append(deferred, s)
		}
	}

	// Relaxation pass: coverage beats the branching cap.
	var violations []CapViolation
	for _, s := range deferred {
		node, _ := t.Node(s.ID)
		parent, ok := bestParent(t, node, settings, false)
		if !ok {
			// Every candidate scored forbidden; fall back to the root so the
			// tree stays connected.
			parent = t.RootID()
		}
		violations = append(violations, CapViolation{
			Edge:       Edge{Parent: parent, Child: s.ID},
			ChildCount: t.ChildCount(parent),
			Max:        settings.MaxChildrenPerNode,
		})
		_ = t.AddEdge(parent, s.ID)
	}

	return BuildResult{Tree: t, Violations: violations}
}

// bestParent scans the spells already attached to the tree for the
// highest-scoring non-forbidden parent of node. Only the root and nodes
// with an incoming edge qualify; deferred spells are present in the node
// set but not connected, and attaching under one would detach the pair
// from the root. With enforceCap, parents at the child-count limit are
// skipped. Ties keep the earliest-placed candidate so the result is
// stable across runs.
func bestParent(t *Tree, node *spell.Spell, settings spell.Settings, enforceCap bool) (string, bool) {
	best := ScoreForbidden
	bestID := ""
	for _, candidate := range t.Nodes() {
		if candidate.ID == node.ID {
			continue
		}
		if candidate.ID != t.RootID() && t.InDegree(candidate.ID) == 0 {
			continue
		}
		if enforceCap && t.ChildCount(candidate.ID) >= settings.MaxChildrenPerNode {
			continue
		}
		if s := Score(candidate, node, settings); s > best {
			best = s
			bestID = candidate.ID
		}
	}
	if bestID == "" || best == ScoreForbidden {
		return "", false
	}
	return bestID, true
}

// RootIndex reports the index of the spell Build selects as root, or -1
// for an empty slice. Callers placing spells outside the builder use it to
// agree on the same root.
func RootIndex(spells []spell.Spell) int {
	if len(spells) == 0 {
		return -1
	}
	return selectRoot(spells)
}

// selectRoot picks the index of the root spell: the tier-0 spell with the
// lowest canonical rank, falling back to the lowest-tier spell with ties
// broken by input order.
func selectRoot(spells []spell.Spell) int {
	best := 0
	for i := 1; i < len(spells); i++ {
		if rootBetter(spells[i], spells[best]) {
			best = i
		}
	}
	return best
}

// rootBetter reports whether a is a better root candidate than b. Lower
// tiers win; within tier 0 a lower canonical rank (numeric suffix of the
// identifier) wins. Equal candidates keep b, preserving input order.
func rootBetter(a, b spell.Spell) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	if a.Tier == spell.TierNovice {
		return canonicalRank(a.ID) < canonicalRank(b.ID)
	}
	return false
}

// canonicalRank extracts the trailing number of an identifier, so that
// "spell_001" outranks "spell_042". Identifiers without a numeric suffix
// rank last.
func canonicalRank(id string) int {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return int(^uint(0) >> 1)
	}
	suffix := strings.TrimLeft(id[i:], "0")
	if suffix == "" {
		return 0
	}
	n, _ := strconv.Atoi(suffix)
	return n
}

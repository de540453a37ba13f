package tree

import (
	"fmt"
	"sort"

	"github.com/caldwen/spellweave/pkg/spell"
)

// ActionKind identifies one category of structural repair.
type ActionKind string

// Repair action kinds, in the order the repairer applies them.
const (
	ActionRootSelected      ActionKind = "root_selected"
	ActionRootEdgeDropped   ActionKind = "root_edge_dropped"
	ActionExtraParentPruned ActionKind = "extra_parent_pruned"
	ActionCycleEdgeRemoved  ActionKind = "cycle_edge_removed"
	ActionOrphanReattached  ActionKind = "orphan_reattached"
)

// Action records a single structural change made during repair.
type Action struct {
	Kind ActionKind `json:"kind" bson:"kind"`
	Edge Edge       `json:"edge,omitempty" bson:"edge,omitempty"`
	Node string     `json:"node,omitempty" bson:"node,omitempty"`
}

// String formats the action for logs.
func (a Action) String() string {
	switch a.Kind {
	case ActionRootSelected:
		return fmt.Sprintf("selected %s as root", a.Node)
	case ActionOrphanReattached:
		return fmt.Sprintf("reattached orphan %s under %s", a.Edge.Child, a.Edge.Parent)
	default:
		return fmt.Sprintf("%s %s→%s", a.Kind, a.Edge.Parent, a.Edge.Child)
	}
}

// Report lists every change Repair made. An empty report means the tree
// already satisfied all invariants.
type Report struct {
	Actions []Action `json:"actions,omitempty" bson:"actions,omitempty"`
}

// Clean reports whether no repairs were needed.
func (r Report) Clean() bool { return len(r.Actions) == 0 }

func (r *Report) record(kind ActionKind, e Edge, node string) {
	r.Actions = append(r.Actions, Action{Kind: kind, Edge: e, Node: node})
}

// Repair enforces the single-rooted-tree invariants on t in place:
//
//   - a root is designated (chosen by the builder's root-selection rule when
//     missing) and never has an incoming edge
//   - every non-root node has exactly one incoming edge
//   - no directed cycles exist
//   - every node is reachable from the root
//
// It accepts anything - internally built trees as well as raw graphs from
// untrusted external generators - and never fails: violations are repaired
// using the edge scorer to pick replacement parents, and every change is
// recorded in the returned report. Repair is idempotent; running it on an
// already-valid tree is a no-op.
func Repair(t *Tree, settings spell.Settings) Report {
	settings.ValidateAndSetDefaults()
	var report Report

	if t.NodeCount() == 0 {
		return report
	}

	ensureRoot(t, &report)

	// The root has no prerequisites, ever. Former parents keep their
	// subtrees; if dropping the edge disconnects them, orphan repair below
	// picks them up.
	for _, p := range append([]string(nil), t.Parents(t.RootID())...) {
		t.RemoveEdge(p, t.RootID())
		report.record(ActionRootEdgeDropped, Edge{Parent: p, Child: t.RootID()}, "")
	}

	pruneExtraParents(t, settings, &report)
	breakCycles(t, &report)
	reattachOrphans(t, settings, &report)

	return report
}

// ensureRoot designates a root when none is set: the best candidate among
// nodes without incoming edges, falling back to the overall best candidate
// for graphs where every node has a parent.
func ensureRoot(t *Tree, report *Report) {
	if _, ok := t.Node(t.RootID()); ok && t.RootID() != "" {
		return
	}
	var best *spell.Spell
	for _, n := range t.Nodes() {
		if t.InDegree(n.ID) > 0 {
			continue
		}
		if best == nil || rootBetter(*n, *best) {
			best = n
		}
	}
	if best == nil {
		for _, n := range t.Nodes() {
			if best == nil || rootBetter(*n, *best) {
				best = n
			}
		}
	}
	_ = t.SetRoot(best.ID)
	report.record(ActionRootSelected, Edge{}, best.ID)
}

// pruneExtraParents reduces every node to at most one incoming edge,
// keeping the best-scoring parent.
func pruneExtraParents(t *Tree, settings spell.Settings, report *Report) {
	for _, n := range t.Nodes() {
		parents := t.Parents(n.ID)
		if len(parents) <= 1 {
			continue
		}
		keep := parents[0]
		bestScore := scoreEdge(t, keep, n.ID, settings)
		for _, p := range parents[1:] {
			if s := scoreEdge(t, p, n.ID, settings); s > bestScore {
				keep, bestScore = p, s
			}
		}
		for _, p := range append([]string(nil), parents...) {
			if p != keep {
				t.RemoveEdge(p, n.ID)
				report.record(ActionExtraParentPruned, Edge{Parent: p, Child: n.ID}, "")
			}
		}
	}
}

// breakCycles removes back-edges found by a three-color depth-first
// traversal. The walk starts at the root and then visits any nodes the root
// walk missed, so cycles in detached components are broken too (their heads
// become orphans for reattachment).
func breakCycles(t *Tree, report *Report) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, t.NodeCount())
	var backEdges []Edge

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range t.Children(id) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, Edge{Parent: id, Child: child})
			}
		}
		color[id] = black
	}

	dfs(t.RootID())
	for _, n := range t.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		t.RemoveEdge(e.Parent, e.Child)
		report.record(ActionCycleEdgeRemoved, e, "")
	}
}

// reattachOrphans connects every node unreachable from the root. Each pass
// attaches the heads (unreachable nodes without parents) to the best-scoring
// reachable spell, or to the root when every candidate scores forbidden.
// Whole detached subtrees follow their head, so each pass strictly shrinks
// the unreachable set.
func reattachOrphans(t *Tree, settings spell.Settings, report *Report) {
	for {
		reachable := t.Reachable()
		if len(reachable) == t.NodeCount() {
			return
		}

		var heads []string
		for _, n := range t.Nodes() {
			if !reachable[n.ID] && t.InDegree(n.ID) == 0 {
				heads = append(heads, n.ID)
			}
		}
		sort.Strings(heads)

		for _, head := range heads {
			node, _ := t.Node(head)
			parent := bestReachableParent(t, node, reachable, settings)
			_ = t.AddEdge(parent, head)
			report.record(ActionOrphanReattached, Edge{Parent: parent, Child: head}, "")
			// Everything below head is now reachable too.
			for id := range subtree(t, head) {
				reachable[id] = true
			}
		}
	}
}

// bestReachableParent picks the highest-scoring reachable parent for node,
// excluding forbidden edges; the root is the fallback of last resort.
func bestReachableParent(t *Tree, node *spell.Spell, reachable map[string]bool, settings spell.Settings) string {
	best := ScoreForbidden
	bestID := ""
	for _, candidate := range t.Nodes() {
		if !reachable[candidate.ID] || candidate.ID == node.ID {
			continue
		}
		if s := Score(candidate, node, settings); s > best {
			best = s
			bestID = candidate.ID
		}
	}
	if bestID == "" || best == ScoreForbidden {
		return t.RootID()
	}
	return bestID
}

// subtree returns head plus all nodes below it.
func subtree(t *Tree, head string) map[string]bool {
	seen := make(map[string]bool)
	stack := []string{head}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, t.Children(id)...)
	}
	return seen
}

// scoreEdge scores an existing edge by node lookup.
func scoreEdge(t *Tree, parent, child string, settings spell.Settings) float64 {
	p, _ := t.Node(parent)
	c, _ := t.Node(child)
	if p == nil || c == nil {
		return ScoreForbidden
	}
	return Score(p, c, settings)
}

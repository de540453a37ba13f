// Package tree builds and repairs per-school prerequisite trees.
//
// A Tree is a single-rooted DAG over the spells of one school: every
// non-root spell has exactly one incoming edge, no directed cycles exist,
// and every spell is reachable from the root. [Build] constructs such a tree
// from scratch using the edge scorer; [Repair] takes any graph - internally
// built or supplied by an untrusted external generator - and enforces those
// invariants, reporting every change it makes.
package tree

import (
	"errors"
	"slices"

	"github.com/caldwen/spellweave/pkg/spell"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the spell ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique per school.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Tree.AddEdge] when the parent
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Tree.AddEdge] when the child
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrCrossSchoolEdge is returned by [Tree.AddEdge] when the endpoints
	// belong to different schools. Edges never cross schools.
	ErrCrossSchoolEdge = errors.New("edge endpoints must share a school")
)

// Edge is a directed prerequisite relationship: Parent must be learned
// before Child.
type Edge struct {
	Parent string `json:"parent" bson:"parent"`
	Child  string `json:"child" bson:"child"`
}

// Tree is the prerequisite graph of one school. The zero value is not
// usable - use New. Tree is not safe for concurrent use without external
// synchronization.
type Tree struct {
	school   string
	rootID   string
	nodes    map[string]*spell.Spell
	order    []string // insertion order, for stable iteration
	edges    []Edge
	children map[string][]string // parent ID -> child IDs
	parents  map[string][]string // child ID -> parent IDs
}

// New creates an empty tree for one school.
func New(school string) *Tree {
	return &Tree{
		school:   school,
		nodes:    make(map[string]*spell.Spell),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// School returns the school this tree belongs to.
func (t *Tree) School() string { return t.school }

// RootID returns the designated root's ID, or "" if none is set.
func (t *Tree) RootID() string { return t.rootID }

// SetRoot designates the root spell. The ID must name an existing node.
func (t *Tree) SetRoot(id string) error {
	if _, ok := t.nodes[id]; !ok {
		return ErrUnknownTargetNode
	}
	t.rootID = id
	return nil
}

// AddNode adds a spell to the tree.
func (t *Tree) AddNode(s spell.Spell) error {
	if s.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[s.ID]; exists {
		return ErrDuplicateNodeID
	}
	n := s
	t.nodes[n.ID] = &n
	t.order = append(t.order, n.ID)
	return nil
}

// AddEdge adds a prerequisite edge between two existing spells of this
// school.
func (t *Tree) AddEdge(parent, child string) error {
	p, ok := t.nodes[parent]
	if !ok {
		return ErrUnknownSourceNode
	}
	c, ok := t.nodes[child]
	if !ok {
		return ErrUnknownTargetNode
	}
	if p.School != c.School {
		return ErrCrossSchoolEdge
	}
	t.edges = append(t.edges, Edge{Parent: parent, Child: child})
	t.children[parent] = append(t.children[parent], child)
	t.parents[child] = append(t.parents[child], parent)
	return nil
}

// RemoveEdge removes the parent→child edge if it exists. No error is
// returned for a missing edge; if duplicates exist all are removed.
func (t *Tree) RemoveEdge(parent, child string) {
	t.edges = slices.DeleteFunc(t.edges, func(e Edge) bool {
		return e.Parent == parent && e.Child == child
	})
	t.children[parent] = slices.DeleteFunc(t.children[parent], func(s string) bool { return s == child })
	t.parents[child] = slices.DeleteFunc(t.parents[child], func(s string) bool { return s == parent })
}

// Node returns the spell with the given ID, or nil and false.
func (t *Tree) Node(id string) (*spell.Spell, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns all spells in insertion order. The returned slice contains
// pointers to the actual node structs.
func (t *Tree) Nodes() []*spell.Spell {
	nodes := make([]*spell.Spell, 0, len(t.order))
	for _, id := range t.order {
		nodes = append(nodes, t.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (t *Tree) Edges() []Edge { return slices.Clone(t.edges) }

// NodeCount returns the number of spells in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of edges in the tree.
func (t *Tree) EdgeCount() int { return len(t.edges) }

// Children returns the IDs of direct prerequisites-of (spells unlocked by)
// the given spell. Read-only view.
func (t *Tree) Children(id string) []string { return t.children[id] }

// Parents returns the IDs of direct prerequisites of the given spell.
// Read-only view.
func (t *Tree) Parents(id string) []string { return t.parents[id] }

// ChildCount returns the number of outgoing edges from the node.
func (t *Tree) ChildCount(id string) int { return len(t.children[id]) }

// InDegree returns the number of incoming edges to the node.
func (t *Tree) InDegree(id string) int { return len(t.parents[id]) }

// Depth returns the number of edges on the path from the root to the given
// node, following each node's first parent. Returns 0 for the root and for
// nodes with no parent.
func (t *Tree) Depth(id string) int {
	depth := 0
	for id != t.rootID {
		ps := t.parents[id]
		if len(ps) == 0 {
			break
		}
		id = ps[0]
		depth++
		if depth > len(t.nodes) { // parent cycle guard
			break
		}
	}
	return depth
}

// Reachable returns the set of node IDs reachable from the root via forward
// traversal, including the root itself. Returns an empty set when no root
// is designated.
func (t *Tree) Reachable() map[string]bool {
	seen := make(map[string]bool, len(t.nodes))
	if t.rootID == "" {
		return seen
	}
	stack := []string{t.rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, t.children[id]...)
	}
	return seen
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	c := New(t.school)
	c.rootID = t.rootID
	for _, id := range t.order {
		_ = c.AddNode(*t.nodes[id])
	}
	for _, e := range t.edges {
		_ = c.AddEdge(e.Parent, e.Child)
	}
	return c
}

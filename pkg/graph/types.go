package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/tree"
)

// Node is the serialized form of one spell, shared by tree and layout
// documents.
type Node struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name,omitempty" bson:"name,omitempty"`
	School  string `json:"school" bson:"school"`
	Level   string `json:"level,omitempty" bson:"level,omitempty"`
	Effect  string `json:"effect,omitempty" bson:"effect,omitempty"`
	Tier    int    `json:"tier" bson:"tier"`
	Element string `json:"element,omitempty" bson:"element,omitempty"`
}

// Edge is a serialized prerequisite edge.
type Edge struct {
	Parent string `json:"parent" bson:"parent"`
	Child  string `json:"child" bson:"child"`
}

// TreeDoc is the canonical serialization of one school's prerequisite tree.
// Nodes are sorted by ID for deterministic output; edges keep build order.
type TreeDoc struct {
	School string `json:"school" bson:"school"`
	Root   string `json:"root" bson:"root"`
	Nodes  []Node `json:"nodes" bson:"nodes"`
	Edges  []Edge `json:"edges" bson:"edges"`
}

// EdgeList is the raw intake format for externally generated trees: just
// edges, optionally with a declared root. It goes through tree.Repair
// before any further use.
type EdgeList struct {
	School string `json:"school" bson:"school"`
	Root   string `json:"root,omitempty" bson:"root,omitempty"`
	Edges  []Edge `json:"edges" bson:"edges"`
}

// FromTree converts a tree to its serialization format.
func FromTree(t *tree.Tree) TreeDoc {
	doc := TreeDoc{
		School: t.School(),
		Root:   t.RootID(),
	}
	for _, n := range t.Nodes() {
		doc.Nodes = append(doc.Nodes, nodeFromSpell(*n))
	}
	sortNodes(doc.Nodes)
	for _, e := range t.Edges() {
		doc.Edges = append(doc.Edges, Edge{Parent: e.Parent, Child: e.Child})
	}
	return doc
}

// ToTree converts a TreeDoc back into a tree. Structural violations in the
// document are fine - the caller is expected to run tree.Repair - but
// references to undeclared nodes are not.
func ToTree(doc TreeDoc) (*tree.Tree, error) {
	t := tree.New(doc.School)
	for _, n := range doc.Nodes {
		if err := t.AddNode(spellFromNode(n)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := t.AddEdge(e.Parent, e.Child); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", e.Parent, e.Child, err)
		}
	}
	if doc.Root != "" {
		if err := t.SetRoot(doc.Root); err != nil {
			return nil, fmt.Errorf("set root %s: %w", doc.Root, err)
		}
	}
	return t, nil
}

// TreeFromEdgeList assembles a tree from a raw edge list, declaring any ID
// mentioned in an edge as a node of the given school. Spell metadata for
// known IDs is taken from the provided spells; unknown IDs become bare
// spells so repair can still operate on them.
func TreeFromEdgeList(list EdgeList, spells []spell.Spell) *tree.Tree {
	known := make(map[string]spell.Spell, len(spells))
	for _, s := range spells {
		known[s.ID] = s
	}

	t := tree.New(list.School)
	add := func(id string) {
		if _, ok := t.Node(id); ok {
			return
		}
		if s, ok := known[id]; ok {
			_ = t.AddNode(s)
			return
		}
		_ = t.AddNode(spell.Spell{ID: id, School: list.School})
	}
	for _, e := range list.Edges {
		add(e.Parent)
		add(e.Child)
		_ = t.AddEdge(e.Parent, e.Child)
	}
	if list.Root != "" {
		add(list.Root)
		_ = t.SetRoot(list.Root)
	}
	return t
}

func nodeFromSpell(s spell.Spell) Node {
	return Node{
		ID:      s.ID,
		Name:    s.Name,
		School:  s.School,
		Level:   s.Level,
		Effect:  s.Effect,
		Tier:    s.Tier,
		Element: string(s.Element),
	}
}

func spellFromNode(n Node) spell.Spell {
	return spell.Spell{
		ID:      n.ID,
		Name:    n.Name,
		School:  n.School,
		Level:   n.Level,
		Effect:  n.Effect,
		Tier:    n.Tier,
		Element: spell.Element(n.Element),
	}
}

func sortNodes(nodes []Node) {
	slices.SortFunc(nodes, func(a, b Node) int {
		return strings.Compare(a.ID, b.ID)
	})
}

package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/tree"
)

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New("Destruction")
	spells := []spell.Spell{
		{ID: "flames", Name: "Flames", School: "Destruction", Tier: 0, Element: "fire"},
		{ID: "firebolt", Name: "Firebolt", School: "Destruction", Tier: 1, Element: "fire"},
		{ID: "fireball", Name: "Fireball", School: "Destruction", Tier: 2, Element: "fire"},
	}
	for _, s := range spells {
		if err := tr.AddNode(s); err != nil {
			t.Fatalf("AddNode(%s): %v", s.ID, err)
		}
	}
	if err := tr.AddEdge("flames", "firebolt"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := tr.AddEdge("firebolt", "fireball"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := tr.SetRoot("flames"); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	return tr
}

func TestFromTree_ToTree_RoundTrip(t *testing.T) {
	orig := sampleTree(t)
	doc := FromTree(orig)

	if doc.School != "Destruction" {
		t.Errorf("school = %q, want Destruction", doc.School)
	}
	if doc.Root != "flames" {
		t.Errorf("root = %q, want flames", doc.Root)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges, want 3 and 2", len(doc.Nodes), len(doc.Edges))
	}

	back, err := ToTree(doc)
	if err != nil {
		t.Fatalf("ToTree: %v", err)
	}
	doc2 := FromTree(back)
	a, err := MarshalTree(doc)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	b, err := MarshalTree(doc2)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("round trip changed serialized bytes")
	}
}

func TestFromTree_NodesSortedByID(t *testing.T) {
	doc := FromTree(sampleTree(t))
	for i := 1; i < len(doc.Nodes); i++ {
		if doc.Nodes[i-1].ID >= doc.Nodes[i].ID {
			t.Errorf("nodes not sorted: %q before %q", doc.Nodes[i-1].ID, doc.Nodes[i].ID)
		}
	}
}

func TestToTree_UndeclaredEdgeNode(t *testing.T) {
	doc := TreeDoc{
		School: "Destruction",
		Nodes:  []Node{{ID: "flames", School: "Destruction"}},
		Edges:  []Edge{{Parent: "flames", Child: "ghost"}},
	}
	if _, err := ToTree(doc); err == nil {
		t.Error("expected error for edge to undeclared node")
	}
}

func TestTreeFromEdgeList_UnknownIDsBecomeBareSpells(t *testing.T) {
	list := EdgeList{
		School: "Restoration",
		Root:   "candlelight",
		Edges: []Edge{
			{Parent: "candlelight", Child: "healing"},
			{Parent: "healing", Child: "unknown_spell"},
		},
	}
	known := []spell.Spell{
		{ID: "candlelight", Name: "Candlelight", School: "Restoration", Element: "light"},
		{ID: "healing", Name: "Healing", School: "Restoration", Element: "light"},
	}

	tr := TreeFromEdgeList(list, known)
	if got := len(tr.Nodes()); got != 3 {
		t.Fatalf("node count = %d, want 3", got)
	}
	n, ok := tr.Node("unknown_spell")
	if !ok {
		t.Fatal("unknown_spell not declared")
	}
	if n.School != "Restoration" || n.Name != "" {
		t.Errorf("bare spell = %+v, want empty metadata with school Restoration", n)
	}
	c, ok := tr.Node("candlelight")
	if !ok || c.Name != "Candlelight" {
		t.Errorf("known spell metadata missing: %+v", c)
	}
	if tr.RootID() != "candlelight" {
		t.Errorf("root = %q, want candlelight", tr.RootID())
	}
}

func TestReadEdgeLists_SingleObject(t *testing.T) {
	in := `{"school": "Alteration", "edges": [{"parent": "a", "child": "b"}]}`
	lists, err := ReadEdgeLists(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadEdgeLists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("got %d lists, want 1", len(lists))
	}
	if lists[0].School != "Alteration" || len(lists[0].Edges) != 1 {
		t.Errorf("unexpected list: %+v", lists[0])
	}
}

func TestReadEdgeLists_Array(t *testing.T) {
	in := `[
		{"school": "Alteration", "edges": []},
		{"school": "Illusion", "root": "clairvoyance", "edges": [{"parent": "clairvoyance", "child": "muffle"}]}
	]`
	lists, err := ReadEdgeLists(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadEdgeLists: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("got %d lists, want 2", len(lists))
	}
	if lists[1].Root != "clairvoyance" {
		t.Errorf("root = %q, want clairvoyance", lists[1].Root)
	}
}

func TestReadEdgeLists_Invalid(t *testing.T) {
	if _, err := ReadEdgeLists(strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestWriteReadTreeFile(t *testing.T) {
	doc := FromTree(sampleTree(t))
	path := filepath.Join(t.TempDir(), "destruction.json")
	if err := WriteTreeFile(doc, path); err != nil {
		t.Fatalf("WriteTreeFile: %v", err)
	}
	got, err := ReadTreeFile(path)
	if err != nil {
		t.Fatalf("ReadTreeFile: %v", err)
	}
	if got.School != doc.School || len(got.Nodes) != len(doc.Nodes) || len(got.Edges) != len(doc.Edges) {
		t.Errorf("read back %+v, want %+v", got, doc)
	}
}

func TestWriteReadBuildFile(t *testing.T) {
	doc := BuildDoc{
		ID:    "test-build",
		Seed:  42,
		Trees: []TreeDoc{FromTree(sampleTree(t))},
	}
	path := filepath.Join(t.TempDir(), "out.build.json")
	if err := WriteBuildFile(doc, path); err != nil {
		t.Fatalf("WriteBuildFile: %v", err)
	}
	got, err := ReadBuildFile(path)
	if err != nil {
		t.Fatalf("ReadBuildFile: %v", err)
	}
	if got.ID != "test-build" || got.Seed != 42 || len(got.Trees) != 1 {
		t.Errorf("read back %+v", got)
	}
}

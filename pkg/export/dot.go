// Package export renders constructed spell trees as Graphviz DOT and SVG
// for quick visual inspection of tree structure before a full radial layout.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/tree"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes tier and element in node labels.
	// When false, only the spell name is shown.
	Detailed bool
}

// elementFill maps each element to a Graphviz fill color so trees read
// at a glance. Unknown elements fall back to white.
var elementFill = map[spell.Element]string{
	spell.ElementFire:   "mistyrose",
	spell.ElementFrost:  "aliceblue",
	spell.ElementShock:  "lightyellow",
	spell.ElementPoison: "honeydew",
	spell.ElementArcane: "lavender",
	spell.ElementLight:  "ivory",
	spell.ElementShadow: "lightgrey",
	spell.ElementNature: "palegreen",
}

// ToDOT converts a spell tree to Graphviz DOT format. Nodes are grouped by
// tier using rank constraints so the drawing reads top-down from the root.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(t *tree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	tiers := map[int][]string{}
	for _, s := range t.Nodes() {
		label := fmtLabel(s, opts.Detailed)
		attrs := fmtAttrs(s, t, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(attrs, ", "))
		tiers[s.Tier] = append(tiers[s.Tier], s.ID)
	}

	buf.WriteString("\n")
	for tier := spell.TierNovice; tier <= spell.TierMaster; tier++ {
		ids := tiers[tier]
		if len(ids) < 2 {
			continue
		}
		buf.WriteString("  { rank=same; ")
		for _, id := range ids {
			fmt.Fprintf(&buf, "%q; ", id)
		}
		buf.WriteString("}\n")
	}

	buf.WriteString("\n")
	for _, e := range t.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Parent, e.Child)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s *spell.Spell, detailed bool) string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	if !detailed {
		return name
	}

	parts := []string{fmt.Sprintf("tier: %d", s.Tier)}
	if s.Element != "" {
		parts = append(parts, "element: "+string(s.Element))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(s *spell.Spell, t *tree.Tree, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := elementFill[s.Element]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%s", fill))
	}
	if s.ID == t.RootID() {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// WriteSVGFile renders a tree to SVG and writes it to path.
func WriteSVGFile(ctx context.Context, path string, t *tree.Tree, opts Options) error {
	svg, err := RenderSVG(ctx, ToDOT(t, opts))
	if err != nil {
		return err
	}
	return os.WriteFile(path, svg, 0o644)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caldwen/spellweave/pkg/export"
	"github.com/caldwen/spellweave/pkg/graph"
	"github.com/caldwen/spellweave/pkg/tree"
)

// previewCommand creates the preview command for rendering trees as SVG.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output   string
		school   string
		detailed bool
		dotOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "preview [build.json]",
		Short: "Render a school's spell tree as SVG",
		Long: `Render a school's spell tree as SVG.

The preview command takes a build.json file (produced by 'build') and renders
one school's prerequisite tree as an SVG via Graphviz. This shows tree
structure only; radial positions are in the build file itself.

With --dot the raw DOT source is written instead of SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd, args[0], school, output, detailed, dotOnly)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<school>.svg)")
	cmd.Flags().StringVarP(&school, "school", "s", "", "school to render (default: first in build)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include tier and element in labels")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "write DOT source instead of SVG")

	return cmd
}

// runPreview loads the build, picks a school tree, and renders it.
func (c *CLI) runPreview(cmd *cobra.Command, input, school, output string, detailed, dotOnly bool) error {
	ctx := cmd.Context()

	doc, err := graph.ReadBuildFile(input)
	if err != nil {
		return err
	}
	if len(doc.Trees) == 0 {
		return fmt.Errorf("build %s contains no trees", input)
	}

	t, err := pickTree(doc.Trees, school)
	if err != nil {
		return err
	}

	dot := export.ToDOT(t, export.Options{Detailed: detailed})

	ext := ".svg"
	if dotOnly {
		ext = ".dot"
	}
	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + sanitizeName(t.School()) + ext
	}

	if dotOnly {
		if err := os.WriteFile(outputPath, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
	} else {
		spinner := newSpinnerWithContext(ctx, "Rendering "+t.School()+"...")
		spinner.Start()
		svg, err := export.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
		if err := os.WriteFile(outputPath, svg, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
	}

	printSuccess("Rendered %s", t.School())
	printFile(outputPath)
	printStats(t.NodeCount(), 0, t.EdgeCount(), false)

	return nil
}

// pickTree selects a school tree by name, or the first tree when school is empty.
func pickTree(docs []graph.TreeDoc, school string) (*tree.Tree, error) {
	if school == "" {
		return graph.ToTree(docs[0])
	}
	for _, doc := range docs {
		if strings.EqualFold(doc.School, school) {
			return graph.ToTree(doc)
		}
	}
	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = doc.School
	}
	return nil, fmt.Errorf("school %q not in build (have: %s)", school, strings.Join(names, ", "))
}

// sanitizeName makes a school name safe for use in a filename.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(s))
}

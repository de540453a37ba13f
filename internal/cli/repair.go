package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caldwen/spellweave/pkg/graph"
	"github.com/caldwen/spellweave/pkg/manifest"
	"github.com/caldwen/spellweave/pkg/spell"
)

// repairCommand creates the repair command for externally produced trees.
func (c *CLI) repairCommand() *cobra.Command {
	var (
		output       string
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "repair [edges.json]",
		Short: "Validate and repair externally produced spell trees",
		Long: `Validate and repair externally produced spell trees.

The repair command takes a JSON edge list (a single object or an array of
them, one per school) and enforces the structural invariants: a single root
with no incoming edges, exactly one parent per node, no cycles, and no
orphaned subtrees. Every action taken is reported.

Spell metadata is taken from the manifest given with --manifest; edge-list
IDs not present there are treated as bare spells. Repair is idempotent:
running it on an already-valid tree changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRepair(cmd, args[0], manifestPath, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.repaired.json)")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "spell manifest supplying metadata")

	return cmd
}

// runRepair loads the edge lists, repairs each school, and writes output.
func (c *CLI) runRepair(cmd *cobra.Command, input, manifestPath, output string) error {
	ctx := cmd.Context()

	lists, err := graph.ReadEdgeListFile(input)
	if err != nil {
		return err
	}

	var spells []spell.Spell
	settings := spell.DefaultSettings()
	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return err
		}
		spells = m.SpellList()
		settings = m.Settings
	}

	runner, err := c.newRunner(ctx, true, "")
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	trees, reports := runner.RepairExternal(ctx, lists, spells, settings)
	prog.done(fmt.Sprintf("Checked %d trees", len(trees)))

	actionTotal := 0
	for school, report := range reports {
		if report.Clean() {
			continue
		}
		actionTotal += len(report.Actions)
		for _, action := range report.Actions {
			printDetail("%s: %s", school, action)
		}
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".repaired.json"
	}

	doc := struct {
		Trees []graph.TreeDoc `json:"trees"`
	}{Trees: trees}
	if err := graph.WriteJSONFile(doc, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if actionTotal == 0 {
		printSuccess("All trees valid, nothing to repair")
	} else {
		printSuccess("Repaired %d trees with %d actions", len(trees), actionTotal)
	}
	printFile(outputPath)

	return nil
}

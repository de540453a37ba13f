package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caldwen/spellweave/pkg/graph"
	"github.com/caldwen/spellweave/pkg/manifest"
	"github.com/caldwen/spellweave/pkg/pipeline"
	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/store"
)

// buildFlags holds the command-line overrides for the build command.
// Settings from the manifest win unless the flag was set explicitly.
type buildFlags struct {
	output      string
	noCache     bool
	redisAddr   string
	mongoURI    string
	refresh     bool
	interactive bool
	seed        uint64
	maxChildren int
	strictTiers bool
	isolation   bool
	strictIso   bool
	shapes      []string
}

// buildCommand creates the build command for constructing trees and layout.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [manifest.toml]",
		Short: "Build spell trees and radial layout from a manifest",
		Long: `Build spell trees and radial layout from a manifest.

The build command reads a spell manifest, classifies each spell into a tier
and element, constructs one prerequisite tree per school, repairs any
structural violations, and computes a deterministic radial layout. The
output is a build.json file containing trees, positions, and repair reports.

Identical manifest, settings, and seed always produce byte-identical output.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.build.json)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&flags.redisAddr, "redis", "", "redis address for shared caching (e.g. localhost:6379)")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo", "", "mongodb URI to persist the build")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even when cached")

	// Settings overrides
	cmd.Flags().Uint64Var(&flags.seed, "seed", spell.DefaultSeed, "layout seed")
	cmd.Flags().IntVar(&flags.maxChildren, "max-children", spell.DefaultMaxChildren, "max prerequisites per spell")
	cmd.Flags().BoolVar(&flags.strictTiers, "strict-tiers", false, "forbid downward tier edges")
	cmd.Flags().BoolVar(&flags.isolation, "isolate-elements", false, "penalize cross-element edges")
	cmd.Flags().BoolVar(&flags.strictIso, "strict-isolation", false, "forbid cross-element edges")
	cmd.Flags().StringArrayVar(&flags.shapes, "shape", nil, "school shape override (school=shape, repeatable)")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "pick a shape per school interactively")

	return cmd
}

// runBuild loads the manifest, runs the pipeline, and writes output.
func (c *CLI) runBuild(cmd *cobra.Command, input string, flags buildFlags) error {
	ctx := cmd.Context()

	m, err := manifest.Load(input)
	if err != nil {
		return err
	}
	spells := m.SpellList()

	settings := m.Settings
	applySettingsFlags(cmd, &settings, flags)
	if err := applyShapeFlags(&settings, flags.shapes); err != nil {
		return err
	}

	if flags.interactive {
		_, order := spell.BySchool(spells)
		picked, err := pickShapes(order)
		if err != nil {
			return err
		}
		if picked == nil {
			printInfo("Aborted")
			return nil
		}
		settings.Shapes = picked
	}

	runner, err := c.newRunner(ctx, flags.noCache, flags.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building spell trees...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Spells:   spells,
		Settings: settings,
		Refresh:  flags.refresh,
		Logger:   c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := flags.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".build.json"
	}

	if err := graph.WriteBuildFile(result.Doc, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Build complete")
	printFile(outputPath)
	printStats(result.Stats.SpellCount, result.Stats.SchoolCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	if result.Stats.RepairCount > 0 {
		printWarning("%d repair actions taken", result.Stats.RepairCount)
	}

	if flags.mongoURI != "" {
		if err := c.persistBuild(ctx, flags.mongoURI, result.Doc); err != nil {
			return err
		}
		printDetail("Persisted as %s", result.Doc.ID)
	}

	printNewline()
	printNextStep("Preview", "spellweave preview "+outputPath)

	return nil
}

// persistBuild saves the build document to MongoDB.
func (c *CLI) persistBuild(ctx context.Context, uri string, doc graph.BuildDoc) error {
	st, err := store.Connect(ctx, uri, "")
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return st.SaveBuild(ctx, doc)
}

// applySettingsFlags copies explicitly set flags over manifest settings.
func applySettingsFlags(cmd *cobra.Command, settings *spell.Settings, flags buildFlags) {
	if cmd.Flags().Changed("seed") {
		settings.Seed = flags.seed
	}
	if cmd.Flags().Changed("max-children") {
		settings.MaxChildrenPerNode = flags.maxChildren
	}
	if cmd.Flags().Changed("strict-tiers") {
		settings.StrictTierOrdering = flags.strictTiers
	}
	if cmd.Flags().Changed("isolate-elements") {
		settings.ElementIsolation = flags.isolation
	}
	if cmd.Flags().Changed("strict-isolation") {
		settings.ElementIsolationStrict = flags.strictIso
	}
}

// applyShapeFlags parses repeated school=shape pairs into the settings map.
func applyShapeFlags(settings *spell.Settings, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}
	if settings.Shapes == nil {
		settings.Shapes = map[string]string{}
	}
	for _, pair := range pairs {
		school, name, ok := strings.Cut(pair, "=")
		if !ok || school == "" || name == "" {
			return fmt.Errorf("invalid --shape %q: expected school=shape", pair)
		}
		settings.Shapes[school] = name
	}
	return nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/caldwen/spellweave/pkg/cache"
	"github.com/caldwen/spellweave/pkg/classify"
	"github.com/caldwen/spellweave/pkg/graph"
	"github.com/caldwen/spellweave/pkg/layout"
	"github.com/caldwen/spellweave/pkg/observability"
	"github.com/caldwen/spellweave/pkg/spell"
	"github.com/caldwen/spellweave/pkg/tree"
)

// Runner executes the build pipeline with caching. It is stateless apart
// from the cache and logger; multiple goroutines can share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer gets the default keyer, a nil
// cache disables caching, a nil logger gets log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// treePayload bundles the cacheable output of the build+repair stage.
type treePayload struct {
	Trees      []graph.TreeDoc                `json:"trees"`
	Reports    map[string]tree.Report         `json:"reports,omitempty"`
	Violations map[string][]tree.CapViolation `json:"violations,omitempty"`
}

// Execute runs the complete classify → build → repair → layout pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}
	result.Stats.SpellCount = len(opts.Spells)

	// Stage 1: classification.
	classifyStart := time.Now()
	spells := r.classifySpells(ctx, opts)
	result.Stats.ClassifyTime = time.Since(classifyStart)

	schools, order := spell.BySchool(spells)
	result.Stats.SchoolCount = len(order)

	// Stage 2+3: tree construction and repair.
	buildStart := time.Now()
	payload, treeHit := r.buildTrees(ctx, spells, schools, order, opts)
	result.Stats.BuildTime = time.Since(buildStart)
	result.CacheInfo.TreeHit = treeHit
	for _, doc := range payload.Trees {
		result.Stats.EdgeCount += len(doc.Edges)
	}
	for _, rep := range payload.Reports {
		result.Stats.RepairCount += len(rep.Actions)
	}

	r.Logger.Info("built trees",
		"schools", len(order),
		"edges", result.Stats.EdgeCount,
		"repairs", result.Stats.RepairCount,
		"duration", result.Stats.BuildTime)

	// Stage 4: layout.
	layoutStart := time.Now()
	lay, layoutHit := r.computeLayout(ctx, payload.Trees, schools, order, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"sectors", len(lay.Sectors),
		"duration", result.Stats.LayoutTime)

	result.Doc = graph.BuildDoc{
		ID:         uuid.NewString(),
		Seed:       opts.Settings.Seed,
		CreatedAt:  time.Now().UTC(),
		Trees:      payload.Trees,
		Layout:     lay,
		Reports:    payload.Reports,
		Violations: payload.Violations,
	}
	return result, nil
}

// classifySpells runs the classification stage: resolve external overrides
// (bounded wait, degrade on failure), then classify every spell.
func (r *Runner) classifySpells(ctx context.Context, opts Options) []spell.Spell {
	observability.Build().OnClassifyStart(ctx, len(opts.Spells))
	start := time.Now()

	res := classify.Resolve(ctx, opts.Provider, opts.Spells, opts.ProviderTimeout)
	outcome := "ok"
	switch res.Outcome {
	case classify.OutcomeTimedOut:
		outcome = "timed_out"
		r.Logger.Warn("tag provider timed out, using keyword classification")
	case classify.OutcomeUnavailable:
		outcome = "unavailable"
		if res.Err != nil {
			r.Logger.Warn("tag provider unavailable, using keyword classification", "err", res.Err)
		}
	}

	spells := make([]spell.Spell, len(opts.Spells))
	copy(spells, opts.Spells)
	classify.New(res.Overrides, opts.ClassifyCache).Apply(spells)

	observability.Build().OnClassifyComplete(ctx, len(spells), outcome, time.Since(start))
	return spells
}

// buildTrees constructs and repairs one tree per school, with caching over
// the whole stage output.
func (r *Runner) buildTrees(ctx context.Context, spells []spell.Spell, schools map[string][]spell.Spell, order []string, opts Options) (treePayload, bool) {
	spellsHash := hashSpells(spells)
	key := r.Keyer.TreeKey(spellsHash, opts.TreeKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached treePayload
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "tree")
				return cached, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "tree")
	}

	payload := treePayload{
		Reports:    make(map[string]tree.Report),
		Violations: make(map[string][]tree.CapViolation),
	}
	for _, school := range order {
		observability.Build().OnTreeBuildStart(ctx, school, len(schools[school]))
		start := time.Now()

		built := tree.Build(school, schools[school], opts.Settings)
		report := tree.Repair(built.Tree, opts.Settings)

		for _, v := range built.Violations {
			r.Logger.Warn("branching cap relaxed",
				"school", school,
				"parent", v.Edge.Parent, "child", v.Edge.Child,
				"children", v.ChildCount, "max", v.Max)
		}
		for _, a := range report.Actions {
			r.Logger.Warn("repaired tree", "school", school, "action", a.String())
			observability.Build().OnRepairAction(ctx, school, string(a.Kind))
		}

		payload.Trees = append(payload.Trees, graph.FromTree(built.Tree))
		if !report.Clean() {
			payload.Reports[school] = report
		}
		if len(built.Violations) > 0 {
			payload.Violations[school] = built.Violations
		}

		observability.Build().OnTreeBuildComplete(ctx, school,
			built.Tree.EdgeCount(), len(built.Violations), time.Since(start))
	}

	if data, err := json.Marshal(payload); err == nil {
		if r.Cache.Set(ctx, key, data, cache.TTLTree) == nil {
			observability.Cache().OnCacheSet(ctx, "tree", len(data))
		}
	}
	return payload, false
}

// computeLayout generates radial positions for every school, with caching
// keyed on the repaired trees.
func (r *Runner) computeLayout(ctx context.Context, trees []graph.TreeDoc, schools map[string][]spell.Spell, order []string, opts Options) (layout.Result, bool) {
	treesData, _ := json.Marshal(trees)
	key := r.Keyer.LayoutKey(cache.Hash(treesData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.Result
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Build().OnLayoutStart(ctx, len(order))
	start := time.Now()
	lay := layout.Generate(schools, order, opts.Settings)
	observability.Build().OnLayoutComplete(ctx, len(order), time.Since(start))

	if data, err := json.Marshal(lay); err == nil {
		if r.Cache.Set(ctx, key, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return lay, false
}

// RepairExternal runs only the repair stage on externally supplied edge
// lists, pairing them with known spell metadata when available.
func (r *Runner) RepairExternal(ctx context.Context, lists []graph.EdgeList, spells []spell.Spell, settings spell.Settings) ([]graph.TreeDoc, map[string]tree.Report) {
	settings.ValidateAndSetDefaults()
	classified := make([]spell.Spell, len(spells))
	copy(classified, spells)
	classify.New(nil, nil).Apply(classified)

	var docs []graph.TreeDoc
	reports := make(map[string]tree.Report)
	for _, list := range lists {
		t := graph.TreeFromEdgeList(list, classified)
		report := tree.Repair(t, settings)
		for _, a := range report.Actions {
			r.Logger.Warn("repaired tree", "school", list.School, "action", a.String())
			observability.Build().OnRepairAction(ctx, list.School, string(a.Kind))
		}
		docs = append(docs, graph.FromTree(t))
		if !report.Clean() {
			reports[list.School] = report
		}
	}
	return docs, reports
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashSpells produces the content hash of a classified spell list, the
// basis for tree cache keys.
func hashSpells(spells []spell.Spell) string {
	data, _ := json.Marshal(spells)
	return cache.Hash(data)
}

// Package pipeline runs the spellweave build: classify → build → repair →
// layout. CLI and server share this code so behavior never drifts between
// entry points.
//
// # Stages
//
//  1. Classify: assign tier and element to every spell, preferring tags
//     from an external provider when one answers in time.
//  2. Build: construct one prerequisite tree per school.
//  3. Repair: enforce the single-rooted-DAG invariants, recording actions.
//  4. Layout: compute deterministic radial positions per school.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Spells:   spells,
//	    Settings: settings,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Doc
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/caldwen/spellweave/pkg/cache"
	"github.com/caldwen/spellweave/pkg/classify"
	"github.com/caldwen/spellweave/pkg/errors"
	"github.com/caldwen/spellweave/pkg/graph"
	"github.com/caldwen/spellweave/pkg/spell"
)

// Options contains all configuration for one build.
type Options struct {
	// Spells is the full, unclassified item list across all schools.
	Spells []spell.Spell `json:"spells"`

	// Settings holds the build knobs; zero values are defaulted.
	Settings spell.Settings `json:"settings"`

	// Refresh bypasses cached results and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Provider optionally supplies element tag overrides. A nil provider
	// means keyword-only classification.
	Provider classify.Provider `json:"-"`

	// ProviderTimeout bounds the wait for the provider; zero uses
	// classify.DefaultProviderTimeout.
	ProviderTimeout time.Duration `json:"-"`

	// ClassifyCache memoizes classification across builds. Optional.
	ClassifyCache *classify.Cache `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Spells) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no spells to build")
	}
	for _, s := range o.Spells {
		if err := errors.ValidateSpellID(s.ID); err != nil {
			return err
		}
	}
	o.Settings.ValidateAndSetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// TreeKeyOpts returns cache key options for tree construction.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{
		MaxChildren:  o.Settings.MaxChildrenPerNode,
		StrictTiers:  o.Settings.StrictTierOrdering,
		Isolation:    o.Settings.ElementIsolation,
		IsolationStr: o.Settings.ElementIsolationStrict,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:   o.Settings.Seed,
		Shapes: o.Settings.Shapes,
	}
}

// Result contains the outputs of one pipeline run.
type Result struct {
	// Doc is the complete build document: trees, layout, reports.
	Doc graph.BuildDoc

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SpellCount   int
	SchoolCount  int
	EdgeCount    int
	RepairCount  int
	ClassifyTime time.Duration
	BuildTime    time.Duration
	LayoutTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // trees came from cache
	LayoutHit bool // layout came from cache
}

// Package observability provides hooks for metrics, tracing, and logging.
//
// The core pipeline stays free of observability backends: it emits events
// through hook interfaces with no-op defaults, and applications register
// real implementations (OpenTelemetry, Prometheus, plain logs) at startup.
//
// Register hooks before running any builds:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// BuildHooks receives events from the build pipeline.
type BuildHooks interface {
	// Classification events. outcome is "ok", "timed_out", or "unavailable".
	OnClassifyStart(ctx context.Context, spellCount int)
	OnClassifyComplete(ctx context.Context, spellCount int, overrideOutcome string, duration time.Duration)

	// Tree construction events, one pair per school.
	OnTreeBuildStart(ctx context.Context, school string, spellCount int)
	OnTreeBuildComplete(ctx context.Context, school string, edgeCount, capViolations int, duration time.Duration)

	// OnRepairAction fires once per structural repair (cycle edge removed,
	// orphan reattached, root edge dropped, ...).
	OnRepairAction(ctx context.Context, school, kind string)

	// Layout events, covering all schools of one build.
	OnLayoutStart(ctx context.Context, schoolCount int)
	OnLayoutComplete(ctx context.Context, schoolCount int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnClassifyStart(context.Context, int)                                 {}
func (NoopBuildHooks) OnClassifyComplete(context.Context, int, string, time.Duration)       {}
func (NoopBuildHooks) OnTreeBuildStart(context.Context, string, int)                        {}
func (NoopBuildHooks) OnTreeBuildComplete(context.Context, string, int, int, time.Duration) {}
func (NoopBuildHooks) OnRepairAction(context.Context, string, string)                       {}
func (NoopBuildHooks) OnLayoutStart(context.Context, int)                                   {}
func (NoopBuildHooks) OnLayoutComplete(context.Context, int, time.Duration)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks. Call once at startup before
// any pipeline runs.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Call once at startup before
// any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults. Primarily for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	cacheHooks = NoopCacheHooks{}
}

// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about layout runs and cache operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, nodeCount, iterations)
//	// ... run the engine ...
//	observability.Layout().OnLayoutComplete(ctx, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// LayoutHooks receives events from the layout pipeline.
type LayoutHooks interface {
	// OnFetchStart and OnFetchComplete bracket graph retrieval.
	OnFetchStart(ctx context.Context, source, name string)
	OnFetchComplete(ctx context.Context, source, name string, nodeCount int, duration time.Duration, err error)

	// OnLayoutStart and OnLayoutComplete bracket an engine run.
	OnLayoutStart(ctx context.Context, nodeCount, iterations int)
	OnLayoutComplete(ctx context.Context, nodeCount int, duration time.Duration, err error)

	// OnRenderStart and OnRenderComplete bracket chart generation.
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Registry
// =============================================================================

var (
	mu          sync.RWMutex
	layoutHooks LayoutHooks = noopLayout{}
	cacheHooks  CacheHooks  = noopCache{}
)

// SetLayoutHooks registers layout hooks. Pass nil to restore the no-op default.
func SetLayoutHooks(h LayoutHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopLayout{}
	}
	layoutHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to restore the no-op default.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopCache{}
	}
	cacheHooks = h
}

// Layout returns the registered layout hooks, never nil.
func Layout() LayoutHooks {
	mu.RLock()
	defer mu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks, never nil.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// =============================================================================
// No-op defaults
// =============================================================================

type noopLayout struct{}

func (noopLayout) OnFetchStart(context.Context, string, string) {}
func (noopLayout) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}
func (noopLayout) OnLayoutStart(context.Context, int, int)                       {}
func (noopLayout) OnLayoutComplete(context.Context, int, time.Duration, error)   {}
func (noopLayout) OnRenderStart(context.Context, []string)                       {}
func (noopLayout) OnRenderComplete(context.Context, []string, time.Duration, error) {
}

type noopCache struct{}

func (noopCache) OnCacheHit(context.Context, string)       {}
func (noopCache) OnCacheMiss(context.Context, string)      {}
func (noopCache) OnCacheSet(context.Context, string, int)  {}

// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through globally registered hooks
// instead of importing a metrics backend. The defaults are no-ops; the
// binary registers real implementations at startup (see internal/metrics
// for the Prometheus one).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRouteHooks(collector)
//	    observability.SetCacheHooks(collector)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Route().OnSearchStart(ctx, start, end)
//	// ... search ...
//	observability.Route().OnSearchComplete(ctx, start, end, visited, found, duration)
//
// A path whose consecutive stations are not joined by any edge is a data
// inconsistency, not an error; the resolver reports it through
// [RouteHooks.OnMissingEdge] and keeps going.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Route Hooks
// =============================================================================

// RouteHooks receives events from shortest-path searches and segment resolution.
type RouteHooks interface {
	// Search events
	OnSearchStart(ctx context.Context, start, end string)
	OnSearchComplete(ctx context.Context, start, end string, visited int, found bool, duration time.Duration)

	// OnMissingEdge records a path hop with no matching edge in the graph.
	OnMissingEdge(ctx context.Context, from, to string)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from network data loading.
type SourceHooks interface {
	// OnLoad records a completed (or failed) dataset load from a source kind
	// such as "file", "sqlite", "postgres", or "mongo".
	OnLoad(ctx context.Context, kind string, stations, segments int, duration time.Duration, err error)

	// OnSkippedSegment records a segment dropped because an endpoint is unknown.
	OnSkippedSegment(ctx context.Context, from, to string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

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
// No-op Implementations
// =============================================================================

// NoopRouteHooks is a no-op implementation of RouteHooks.
type NoopRouteHooks struct{}

func (NoopRouteHooks) OnSearchStart(context.Context, string, string) {}
func (NoopRouteHooks) OnSearchComplete(context.Context, string, string, int, bool, time.Duration) {
}
func (NoopRouteHooks) OnMissingEdge(context.Context, string, string) {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnLoad(context.Context, string, int, int, time.Duration, error) {}
func (NoopSourceHooks) OnSkippedSegment(context.Context, string, string)                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	routeHooks  RouteHooks  = NoopRouteHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetRouteHooks registers custom route hooks.
// This should be called once at application startup before any searches run.
func SetRouteHooks(h RouteHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routeHooks = h
	}
}

// SetSourceHooks registers custom source hooks.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Route returns the registered route hooks.
func Route() RouteHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routeHooks
}

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	routeHooks = NoopRouteHooks{}
	sourceHooks = NoopSourceHooks{}
	cacheHooks = NoopCacheHooks{}
}

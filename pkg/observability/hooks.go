// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about allocation runs and annotation store traffic.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the allocation engine
// never imports a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAllocationHooks(&myAllocationHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Allocation().OnSkip(ctx, key, wells)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Allocation Hooks
// =============================================================================

// AllocationHooks receives events from the occupancy-aware allocator.
type AllocationHooks interface {
	// OnDraw records a candidate well or group drawn from the layout.
	OnDraw(ctx context.Context, key string, wells []string)

	// OnSkip records a candidate rejected because it is already claimed.
	OnSkip(ctx context.Context, key string, wells []string)

	// OnClaim records a committed claim.
	OnClaim(ctx context.Context, key string, wells []string, duration time.Duration, err error)

	// OnExhausted records an allocation that ran out of wells.
	OnExhausted(ctx context.Context, key string, skipped int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from annotation store operations.
type StoreHooks interface {
	// OnRead records an annotation lookup.
	OnRead(ctx context.Context, backend string, hit bool, duration time.Duration)

	// OnWrite records an annotation write.
	OnWrite(ctx context.Context, backend string, duration time.Duration)

	// OnError records a failed store operation.
	OnError(ctx context.Context, backend, op string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAllocationHooks is a no-op implementation of AllocationHooks.
type NoopAllocationHooks struct{}

func (NoopAllocationHooks) OnDraw(context.Context, string, []string) {}
func (NoopAllocationHooks) OnSkip(context.Context, string, []string) {}
func (NoopAllocationHooks) OnClaim(context.Context, string, []string, time.Duration, error) {
}
func (NoopAllocationHooks) OnExhausted(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnRead(context.Context, string, bool, time.Duration) {}
func (NoopStoreHooks) OnWrite(context.Context, string, time.Duration)      {}
func (NoopStoreHooks) OnError(context.Context, string, string, error)      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	allocationHooks AllocationHooks = NoopAllocationHooks{}
	storeHooks      StoreHooks      = NoopStoreHooks{}
	hooksMu         sync.RWMutex
)

// SetAllocationHooks registers custom allocation hooks.
// This should be called once at application startup before any allocation.
func SetAllocationHooks(h AllocationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		allocationHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Allocation returns the registered allocation hooks.
func Allocation() AllocationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return allocationHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	allocationHooks = NoopAllocationHooks{}
	storeHooks = NoopStoreHooks{}
}

package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAllocationHooks{}
	a.OnDraw(ctx, "sample", []string{"A1"})
	a.OnSkip(ctx, "sample", []string{"A1"})
	a.OnClaim(ctx, "sample", []string{"A1", "B1"}, time.Millisecond, nil)
	a.OnExhausted(ctx, "sample", 3)

	s := NoopStoreHooks{}
	s.OnRead(ctx, "memory", true, time.Millisecond)
	s.OnWrite(ctx, "memory", time.Millisecond)
	s.OnError(ctx, "redis", "get", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Allocation().(NoopAllocationHooks); !ok {
		t.Error("Allocation() should return NoopAllocationHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customAlloc := &testAllocationHooks{}
	SetAllocationHooks(customAlloc)
	if Allocation() != customAlloc {
		t.Error("SetAllocationHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	Reset()
	if _, ok := Allocation().(NoopAllocationHooks); !ok {
		t.Error("Reset() should restore NoopAllocationHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testAllocationHooks{}
	SetAllocationHooks(custom)
	SetAllocationHooks(nil)
	if Allocation() != custom {
		t.Error("SetAllocationHooks(nil) should keep the previous hooks")
	}

	SetStoreHooks(nil)
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("SetStoreHooks(nil) should keep the default hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testAllocationHooks{}
	SetAllocationHooks(h)

	ctx := context.Background()
	Allocation().OnSkip(ctx, "sample", []string{"A1"})
	Allocation().OnSkip(ctx, "sample", []string{"B1"})
	Allocation().OnExhausted(ctx, "sample", 2)

	if h.skips != 2 {
		t.Errorf("skips = %d, want 2", h.skips)
	}
	if h.exhausted != 1 {
		t.Errorf("exhausted = %d, want 1", h.exhausted)
	}
}

type testAllocationHooks struct {
	NoopAllocationHooks
	skips     int
	exhausted int
}

func (h *testAllocationHooks) OnSkip(context.Context, string, []string) { h.skips++ }
func (h *testAllocationHooks) OnExhausted(context.Context, string, int) { h.exhausted++ }

type testStoreHooks struct {
	NoopStoreHooks
}

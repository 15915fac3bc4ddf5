package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matzehuels/platekit/pkg/observability"
)

// runStats counts allocator and store events for the summary line printed
// after a command. It is registered as both hook sets by the root command.
type runStats struct {
	draws, skips, claims atomic.Int64
	reads, hits, writes  atomic.Int64
	storeErrs            atomic.Int64
	storeTime            atomic.Int64 // nanoseconds
}

var (
	_ observability.AllocationHooks = (*runStats)(nil)
	_ observability.StoreHooks      = (*runStats)(nil)
)

func (s *runStats) OnDraw(context.Context, string, []string) { s.draws.Add(1) }
func (s *runStats) OnSkip(context.Context, string, []string) { s.skips.Add(1) }

func (s *runStats) OnClaim(_ context.Context, _ string, wells []string, _ time.Duration, err error) {
	if err == nil {
		s.claims.Add(int64(len(wells)))
	}
}

func (s *runStats) OnExhausted(ctx context.Context, key string, skipped int) {
	loggerFromContext(ctx).Warn("layout exhausted", "key", key, "skipped", skipped)
}

func (s *runStats) OnRead(_ context.Context, _ string, hit bool, d time.Duration) {
	s.reads.Add(1)
	if hit {
		s.hits.Add(1)
	}
	s.storeTime.Add(int64(d))
}

func (s *runStats) OnWrite(_ context.Context, _ string, d time.Duration) {
	s.writes.Add(1)
	s.storeTime.Add(int64(d))
}

func (s *runStats) OnError(ctx context.Context, backend, op string, err error) {
	s.storeErrs.Add(1)
	loggerFromContext(ctx).Error("store operation failed", "backend", backend, "op", op, "err", err)
}

// storeDuration returns the accumulated store time.
func (s *runStats) storeDuration() time.Duration {
	return time.Duration(s.storeTime.Load())
}

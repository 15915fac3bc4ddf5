package alloc

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/observability"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/cursor"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// fakeGrid is an in-memory Grid with injectable faults.
type fakeGrid struct {
	dims     plate.Dimensions
	ann      map[string]map[plate.Coordinate]string
	readErr  error
	writeErr error
	reads    int
	writes   int
}

func newFakeGrid(dims plate.Dimensions) *fakeGrid {
	return &fakeGrid{dims: dims, ann: make(map[string]map[plate.Coordinate]string)}
}

func (g *fakeGrid) Dimensions() plate.Dimensions { return g.dims }

func (g *fakeGrid) HasAnnotation(_ context.Context, c plate.Coordinate, key string) (bool, error) {
	g.reads++
	if g.readErr != nil {
		return false, g.readErr
	}
	_, ok := g.ann[key][c]
	return ok, nil
}

func (g *fakeGrid) SetAnnotation(_ context.Context, c plate.Coordinate, key, value string) error {
	g.writes++
	if g.writeErr != nil {
		return g.writeErr
	}
	if g.ann[key] == nil {
		g.ann[key] = make(map[plate.Coordinate]string)
	}
	g.ann[key][c] = value
	return nil
}

// batchGrid records whether the batch path was used.
type batchGrid struct {
	*fakeGrid
	batches int
}

func (g *batchGrid) SetAnnotations(ctx context.Context, cells []plate.Coordinate, key, value string) error {
	g.batches++
	for _, c := range cells {
		if err := g.fakeGrid.SetAnnotation(ctx, c, key, value); err != nil {
			return err
		}
	}
	return nil
}

func rowCursor(coords ...plate.Coordinate) *cursor.Cursor {
	return cursor.New(plate.Sequence(coords), 12)
}

func TestNextUnclaimedSkipsAnnotated(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	_ = grid.SetAnnotation(ctx, plate.At(0, 0), "K", "x")
	_ = grid.SetAnnotation(ctx, plate.At(0, 1), "K", "x")

	a := New(grid, rowCursor(plate.At(0, 0), plate.At(0, 1), plate.At(0, 2)))
	got, err := a.NextUnclaimed(ctx, "K")
	if err != nil {
		t.Fatalf("NextUnclaimed: %v", err)
	}
	if got != plate.At(0, 2) {
		t.Errorf("NextUnclaimed() = %v, want (0,2)", got)
	}
}

func TestNextUnclaimedIgnoresOtherKeys(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	_ = grid.SetAnnotation(ctx, plate.At(0, 0), "other", "x")

	a := New(grid, rowCursor(plate.At(0, 0), plate.At(0, 1)))
	got, err := a.NextUnclaimed(ctx, "K")
	if err != nil || got != plate.At(0, 0) {
		t.Errorf("NextUnclaimed() = %v, %v, want (0,0)", got, err)
	}
}

func TestNextUnclaimedExhausted(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	_ = grid.SetAnnotation(ctx, plate.At(0, 0), "K", "x")

	a := New(grid, rowCursor(plate.At(0, 0)))
	_, err := a.NextUnclaimed(ctx, "K")
	if !perrors.Is(err, perrors.ErrCodeExhausted) {
		t.Fatalf("NextUnclaimed() = %v, want EXHAUSTED", err)
	}
	if perrors.Is(err, perrors.ErrCodeStoreUnavailable) {
		t.Error("exhaustion must not look like a store fault")
	}
}

func TestStoreFaultPropagatesUnmodified(t *testing.T) {
	ctx := context.Background()
	fault := errors.New("store offline")
	grid := newFakeGrid(plate.Plate96)
	grid.readErr = fault

	a := New(grid, rowCursor(plate.At(0, 0), plate.At(0, 1)))
	_, err := a.NextUnclaimed(ctx, "K")
	if err != fault {
		t.Fatalf("NextUnclaimed() error = %v, want the store error itself", err)
	}
	if perrors.Is(err, perrors.ErrCodeExhausted) {
		t.Error("store fault must not look like exhaustion")
	}

	_, err = a.NextUnclaimedGroup(ctx, "K", 1)
	if err != fault {
		t.Errorf("NextUnclaimedGroup() error = %v, want the store error itself", err)
	}
}

func TestClaimFaultPropagatesUnmodified(t *testing.T) {
	ctx := context.Background()
	fault := perrors.New(perrors.ErrCodeStoreUnavailable, "write failed")
	grid := newFakeGrid(plate.Plate96)
	grid.writeErr = fault

	a := New(grid, rowCursor(plate.At(0, 0)))
	err := a.Claim(ctx, []plate.Coordinate{plate.At(0, 0)}, "K", "v")
	if err != fault {
		t.Errorf("Claim() error = %v, want the store error itself", err)
	}
}

func TestNextUnclaimedGroupRejectsPartiallyClaimed(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	_ = grid.SetAnnotation(ctx, plate.At(1, 0), "K", "x")

	cur, err := cursor.FromStrategy(layout.Sample, plate.Plate96, 3)
	if err != nil {
		t.Fatalf("FromStrategy: %v", err)
	}
	a := New(grid, cur)

	g, err := a.NextUnclaimedGroup(ctx, "K", 3)
	if err != nil {
		t.Fatalf("NextUnclaimedGroup: %v", err)
	}
	want := plate.Group{plate.At(0, 1), plate.At(1, 1), plate.At(2, 1)}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}
}

func TestNextUnclaimedGroupShortGroup(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)

	a := New(grid, rowCursor(plate.At(0, 0), plate.At(0, 1), plate.At(0, 2)))
	if _, err := a.NextUnclaimedGroup(ctx, "K", 2); err != nil {
		t.Fatalf("first group: %v", err)
	}
	_, err := a.NextUnclaimedGroup(ctx, "K", 2)
	if !perrors.Is(err, perrors.ErrCodeShortGroup) {
		t.Errorf("second group = %v, want SHORT_GROUP", err)
	}
}

func TestNextUnclaimedInColumn(t *testing.T) {
	ctx := context.Background()
	dims := plate.Dimensions{Rows: 3, Columns: 4}
	grid := newFakeGrid(dims)
	_ = grid.SetAnnotation(ctx, plate.At(0, 2), "K", "x")

	a, err := NewForStrategy(grid, layout.Primer, 1)
	if err != nil {
		t.Fatalf("NewForStrategy: %v", err)
	}

	got, err := a.NextUnclaimedIn(ctx, "K", 2)
	if err != nil || got != plate.At(1, 2) {
		t.Fatalf("NextUnclaimedIn(2) = %v, %v, want (1,2)", got, err)
	}
	got, err = a.NextUnclaimedIn(ctx, "K", 2)
	if err != nil || got != plate.At(2, 2) {
		t.Fatalf("NextUnclaimedIn(2) = %v, %v, want (2,2)", got, err)
	}
	if _, err := a.NextUnclaimedIn(ctx, "K", 2); !perrors.Is(err, perrors.ErrCodeInvalidSeek) {
		t.Errorf("NextUnclaimedIn(2) = %v, want INVALID_SEEK", err)
	}
}

func TestNextUnclaimedGroupIn(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	_ = grid.SetAnnotation(ctx, plate.At(0, 3), "K", "x")

	a, err := NewForStrategy(grid, layout.Sample, 2)
	if err != nil {
		t.Fatalf("NewForStrategy: %v", err)
	}
	g, err := a.NextUnclaimedGroupIn(ctx, "K", 2, 3)
	if err != nil {
		t.Fatalf("NextUnclaimedGroupIn: %v", err)
	}
	want := plate.Group{plate.At(2, 3), plate.At(3, 3)}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatedAllocationNeverRepeats(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	seen := make(map[plate.Coordinate]bool)

	// Each run builds a fresh cursor, as a re-run after an interruption would.
	for run := 0; run < 5; run++ {
		a, err := NewForStrategy(grid, layout.Exhaustive, 1)
		if err != nil {
			t.Fatalf("NewForStrategy: %v", err)
		}
		for i := 0; i < 7; i++ {
			c, err := a.NextUnclaimed(ctx, "K")
			if err != nil {
				t.Fatalf("run %d: NextUnclaimed: %v", run, err)
			}
			if seen[c] {
				t.Fatalf("run %d: %v handed out twice", run, c)
			}
			seen[c] = true
			if err := a.Claim(ctx, []plate.Coordinate{c}, "K", "v"); err != nil {
				t.Fatalf("Claim: %v", err)
			}
		}
	}
	if len(seen) != 35 {
		t.Errorf("claimed %d wells, want 35", len(seen))
	}
}

func TestInterruptedRunResumes(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)

	first, _ := NewForStrategy(grid, layout.Sample, 3)
	g1, err := first.Allocate(ctx, "K", 3, "sample-1")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	// Found but never claimed: the run was interrupted.
	if _, err := first.NextUnclaimedGroup(ctx, "K", 3); err != nil {
		t.Fatalf("NextUnclaimedGroup: %v", err)
	}

	second, _ := NewForStrategy(grid, layout.Sample, 3)
	g2, err := second.NextUnclaimedGroup(ctx, "K", 3)
	if err != nil {
		t.Fatalf("NextUnclaimedGroup: %v", err)
	}
	if g2[0] == g1[0] {
		t.Fatalf("resumed run reused %v", g1)
	}
	if g2[0] != plate.At(0, 1) {
		t.Errorf("resumed run starts at %v, want (0,1)", g2[0])
	}
}

func TestClaimUsesBatchWrite(t *testing.T) {
	ctx := context.Background()
	grid := &batchGrid{fakeGrid: newFakeGrid(plate.Plate96)}

	a := New(grid, rowCursor(plate.At(0, 0), plate.At(0, 1)))
	g, err := a.Allocate(ctx, "K", 2, "v")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if grid.batches != 1 {
		t.Errorf("batches = %d, want 1", grid.batches)
	}
	for _, c := range g {
		if grid.ann["K"][c] != "v" {
			t.Errorf("%v not annotated", c)
		}
	}
}

func TestClaimValidation(t *testing.T) {
	ctx := context.Background()
	a := New(newFakeGrid(plate.Plate96), rowCursor())

	if err := a.Claim(ctx, nil, "K", "v"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("Claim(nil) = %v, want INVALID_INPUT", err)
	}
	if err := a.Claim(ctx, []plate.Coordinate{plate.At(0, 0)}, "", "v"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("Claim(empty key) = %v, want INVALID_INPUT", err)
	}
	if _, err := a.NextUnclaimed(ctx, "bad key"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("NextUnclaimed(bad key) = %v, want INVALID_INPUT", err)
	}
}

func TestFindDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Plate96)
	a, _ := NewForStrategy(grid, layout.Sample, 2)

	if _, err := a.NextUnclaimedGroup(ctx, "K", 2); err != nil {
		t.Fatalf("NextUnclaimedGroup: %v", err)
	}
	if grid.writes != 0 {
		t.Errorf("writes = %d, want 0", grid.writes)
	}
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Dimensions{Rows: 2, Columns: 2})
	_ = grid.SetAnnotation(ctx, plate.At(0, 0), "K", "x")
	grid.writes = 0

	a, _ := NewForStrategy(grid, layout.Sample, 2)
	groups, err := a.Plan(ctx, "K", 3, 2)
	if !perrors.Is(err, perrors.ErrCodeExhausted) {
		t.Fatalf("Plan() error = %v, want EXHAUSTED", err)
	}
	want := []plate.Group{{plate.At(0, 1), plate.At(1, 1)}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	if grid.writes != 0 {
		t.Errorf("Plan wrote %d annotations", grid.writes)
	}

	if _, err := a.Plan(ctx, "K", 0, 2); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("Plan(count=0) = %v, want INVALID_INPUT", err)
	}
}

func TestPlanHugeCount(t *testing.T) {
	ctx := context.Background()
	const huge = math.MaxInt

	a, _ := NewForStrategy(newFakeGrid(plate.Dimensions{Rows: 2, Columns: 2}), layout.Sample, 2)
	groups, err := a.Plan(ctx, "K", huge, 2)
	if !perrors.Is(err, perrors.ErrCodeExhausted) || len(groups) != 2 {
		t.Errorf("Plan(huge) = %d groups, %v; want 2 groups, EXHAUSTED", len(groups), err)
	}

	a, _ = NewForStrategy(newFakeGrid(plate.Dimensions{Rows: 2, Columns: 2}), layout.Sample, 2)
	groups, err = a.PlanIn(ctx, "K", huge, 2, 1)
	if !perrors.IsCapacity(err) || len(groups) != 2 {
		t.Errorf("PlanIn(huge) = %d groups, %v; want 2 groups and a capacity error", len(groups), err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(newFakeGrid(plate.Plate96), rowCursor(plate.At(0, 0)))
	if _, err := a.NextUnclaimed(ctx, "K"); !errors.Is(err, context.Canceled) {
		t.Errorf("NextUnclaimed() = %v, want context.Canceled", err)
	}
	if a.Cursor().Remaining() != 1 {
		t.Error("canceled search consumed a well")
	}
}

func TestLoggerAndHooks(t *testing.T) {
	ctx := context.Background()
	observability.Reset()
	defer observability.Reset()

	rec := &recordingHooks{}
	observability.SetAllocationHooks(rec)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	grid := newFakeGrid(plate.Plate96)
	_ = grid.SetAnnotation(ctx, plate.At(0, 0), "K", "x")

	a := New(grid, rowCursor(plate.At(0, 0), plate.At(0, 1)), WithLogger(logger))
	c, err := a.NextUnclaimed(ctx, "K")
	if err != nil {
		t.Fatalf("NextUnclaimed: %v", err)
	}
	if err := a.Claim(ctx, []plate.Coordinate{c}, "K", "v"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := a.NextUnclaimed(ctx, "K"); err == nil {
		t.Fatal("expected exhaustion")
	}

	if rec.draws != 2 || rec.skips != 1 || rec.claims != 1 || rec.exhausted != 1 {
		t.Errorf("hooks = %+v", rec)
	}
	out := buf.String()
	if !strings.Contains(out, "skipping claimed wells") || !strings.Contains(out, "claimed wells") {
		t.Errorf("log output missing messages:\n%s", out)
	}
}

type recordingHooks struct {
	observability.NoopAllocationHooks
	draws, skips, claims, exhausted int
}

func (r *recordingHooks) OnDraw(context.Context, string, []string) { r.draws++ }
func (r *recordingHooks) OnSkip(context.Context, string, []string) { r.skips++ }
func (r *recordingHooks) OnClaim(context.Context, string, []string, time.Duration, error) {
	r.claims++
}
func (r *recordingHooks) OnExhausted(context.Context, string, int) { r.exhausted++ }

func TestPlanIn(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Dimensions{Rows: 4, Columns: 3})
	grid.SetAnnotation(ctx, plate.At(0, 2), "pcr", "old")

	a, err := NewForStrategy(grid, layout.Sample, 2)
	if err != nil {
		t.Fatalf("NewForStrategy: %v", err)
	}
	groups, err := a.PlanIn(ctx, "pcr", 3, 2, 1)
	if err != nil {
		t.Fatalf("PlanIn: %v", err)
	}

	var got [][]string
	for _, g := range groups {
		got = append(got, g.Wells())
	}
	want := [][]string{{"A2", "B2"}, {"C3", "D3"}, {"A1", "B1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PlanIn mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanInSkipsEmptyColumns(t *testing.T) {
	ctx := context.Background()
	grid := newFakeGrid(plate.Dimensions{Rows: 2, Columns: 3})
	a, _ := NewForStrategy(grid, layout.Sample, 2)

	// One band per column: groups walk right and wrap to column 0.
	groups, err := a.PlanIn(ctx, "pcr", 3, 2, 1)
	if err != nil {
		t.Fatalf("PlanIn: %v", err)
	}
	if groups[0][0] != plate.At(0, 1) || groups[1][0] != plate.At(0, 2) || groups[2][0] != plate.At(0, 0) {
		t.Errorf("PlanIn = %v", groups)
	}

	_, err = a.PlanIn(ctx, "pcr", 1, 2, 0)
	if !perrors.Is(err, perrors.ErrCodeExhausted) {
		t.Errorf("PlanIn(full) = %v, want EXHAUSTED", err)
	}
}

func TestPlanInInvalidColumn(t *testing.T) {
	a, _ := NewForStrategy(newFakeGrid(plate.Plate96), layout.Sample, 1)
	for _, col := range []int{-1, 12} {
		if _, err := a.PlanIn(context.Background(), "pcr", 1, 1, col); !perrors.Is(err, perrors.ErrCodeInvalidSeek) {
			t.Errorf("PlanIn(column %d) = %v, want INVALID_SEEK", col, err)
		}
	}
}

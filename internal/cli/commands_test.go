package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/platekit/pkg/annotation"
	"github.com/matzehuels/platekit/pkg/config"
	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/observability"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/alloc"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// run executes the CLI against store with the built-in config.
func run(t *testing.T, store annotation.Store, args ...string) error {
	t.Helper()
	t.Setenv(config.EnvConfig, filepath.Join(t.TempDir(), "missing.toml"))
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	c.openStore = func(context.Context, config.Store) (annotation.Store, error) {
		return store, nil
	}
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestAllocateCommand(t *testing.T) {
	ctx := context.Background()
	store := annotation.NewMemoryStore()
	store.SetMany(ctx, "p1", []plate.Coordinate{plate.At(0, 0)}, "pcr", "old")

	err := run(t, store, "allocate", "p1", "--key", "pcr", "--rows", "4", "--columns", "2",
		"-g", "2", "-n", "2", "--source", "lot-3", "--yes")
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	got, _ := store.List(ctx, "p1", "pcr")
	for _, c := range []plate.Coordinate{plate.At(0, 1), plate.At(1, 1), plate.At(2, 0), plate.At(3, 0)} {
		p, err := alloc.DecodeProvenance(got[c])
		if err != nil {
			t.Errorf("%v: value %q is not provenance: %v", c, got[c], err)
			continue
		}
		if p.Source != "lot-3" {
			t.Errorf("%v: source = %q", c, p.Source)
		}
	}
	if got[plate.At(0, 0)] != "old" {
		t.Errorf("existing claim overwritten: %q", got[plate.At(0, 0)])
	}
	if len(got) != 5 {
		t.Errorf("claimed %d wells, want 5", len(got))
	}
}

func TestAllocateCommandColumn(t *testing.T) {
	store := annotation.NewMemoryStore()
	err := run(t, store, "allocate", "p1", "-k", "pcr", "--value", "x", "-g", "2", "-n", "2", "--column", "3", "--yes")
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	got, _ := store.List(context.Background(), "p1", "pcr")
	want := map[plate.Coordinate]string{
		plate.At(0, 2): "x", plate.At(1, 2): "x",
		plate.At(0, 3): "x", plate.At(1, 3): "x",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestAllocateCommandDryRun(t *testing.T) {
	store := annotation.NewMemoryStore()
	if err := run(t, store, "allocate", "p1", "-k", "pcr", "-n", "3", "--dry-run"); err != nil {
		t.Fatalf("allocate --dry-run: %v", err)
	}
	got, _ := store.List(context.Background(), "p1", "pcr")
	if len(got) != 0 {
		t.Errorf("dry run claimed %d wells", len(got))
	}
}

func TestAllocateCommandPartial(t *testing.T) {
	store := annotation.NewMemoryStore()
	// A 2x2 plate holds two groups of two; the third request is dropped.
	err := run(t, store, "allocate", "p1", "-k", "pcr", "--rows", "2", "--columns", "2", "-g", "2", "-n", "3", "--value", "v", "--yes")
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	got, _ := store.List(context.Background(), "p1", "pcr")
	if len(got) != 4 {
		t.Errorf("claimed %d wells, want 4", len(got))
	}

	err = run(t, store, "allocate", "p1", "-k", "pcr", "--rows", "2", "--columns", "2", "-g", "2", "--yes")
	if !perrors.Is(err, perrors.ErrCodeExhausted) {
		t.Errorf("allocate on full plate = %v, want EXHAUSTED", err)
	}
}

func TestAllocateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code perrors.Code
	}{
		{"bad plate id", []string{"allocate", "../x", "-k", "pcr"}, perrors.ErrCodeInvalidInput},
		{"bad key", []string{"allocate", "p1", "-k", "a b"}, perrors.ErrCodeInvalidInput},
		{"bad strategy", []string{"allocate", "p1", "-k", "pcr", "-s", "spiral"}, perrors.ErrCodeInvalidStrategy},
		{"bad rows", []string{"allocate", "p1", "-k", "pcr", "--rows", "0"}, perrors.ErrCodeInvalidDimensions},
		{"bad column", []string{"allocate", "p1", "-k", "pcr", "--column", "13"}, perrors.ErrCodeInvalidSeek},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, annotation.NewMemoryStore(), tt.args...)
			if !perrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAnnotationsAndClearCommands(t *testing.T) {
	ctx := context.Background()
	store := annotation.NewMemoryStore()
	store.SetMany(ctx, "p1", []plate.Coordinate{plate.At(0, 0), plate.At(7, 11)}, "pcr", "v")

	if err := run(t, store, "annotations", "p1", "-k", "pcr"); err != nil {
		t.Fatalf("annotations: %v", err)
	}
	if err := run(t, store, "annotations", "p1", "-k", "pcr", "-f", "yaml"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("annotations -f yaml = %v, want INVALID_INPUT", err)
	}
	if err := run(t, store, "clear", "p1", "-k", "pcr", "--yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ := store.List(ctx, "p1", "pcr")
	if len(got) != 0 {
		t.Errorf("after clear %d wells remain", len(got))
	}
}

func TestLayoutCommand(t *testing.T) {
	store := annotation.NewMemoryStore()
	for _, format := range []string{"table", "list", "json", "dot"} {
		if err := run(t, store, "layout", "cdc-sample", "-f", format); err != nil {
			t.Errorf("layout -f %s: %v", format, err)
		}
	}
	if err := run(t, store, "layout", "spiral"); !perrors.Is(err, perrors.ErrCodeInvalidStrategy) {
		t.Errorf("layout spiral = %v, want INVALID_STRATEGY", err)
	}
	if err := run(t, store, "layout", "sample", "-f", "png"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("layout -f png = %v, want INVALID_INPUT", err)
	}
}

func TestLayoutCommandWritesDOTFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plate.dot")
	if err := run(t, annotation.NewMemoryStore(), "layout", "sample", "-f", "dot", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
}

func TestWriteLayoutJSON(t *testing.T) {
	dims := plate.Dimensions{Rows: 2, Columns: 2}
	seq := layout.MustGenerate(layout.Sample, dims, 2)

	var buf bytes.Buffer
	if err := writeLayoutJSON(&buf, layout.Sample, dims, 2, seq); err != nil {
		t.Fatalf("writeLayoutJSON: %v", err)
	}

	var got struct {
		Strategy string             `json:"strategy"`
		Wells    []string           `json:"wells"`
		Sequence []plate.Coordinate `json:"sequence"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Strategy != "sample" {
		t.Errorf("strategy = %q", got.Strategy)
	}
	if diff := cmp.Diff([]string{"A1", "B1", "A2", "B2"}, got.Wells); diff != "" {
		t.Errorf("wells mismatch (-want +got):\n%s", diff)
	}
	if len(got.Sequence) != 4 || got.Sequence[2] != plate.At(0, 1) {
		t.Errorf("sequence = %v", got.Sequence)
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := run(t, annotation.NewMemoryStore(), "--config", path, "config", "show"); err != nil {
		t.Errorf("config show with missing file: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, bad, "[plate]\nrows = -1\n")
	if err := run(t, annotation.NewMemoryStore(), "--config", bad, "strategies"); !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("bad config = %v, want INVALID_CONFIG", err)
	}
}

func TestRunStatsCountsAllocation(t *testing.T) {
	store := annotation.NewMemoryStore()
	store.SetMany(context.Background(), "p1", []plate.Coordinate{plate.At(0, 0)}, "pcr", "old")

	t.Setenv(config.EnvConfig, filepath.Join(t.TempDir(), "missing.toml"))
	defer observability.Reset()

	c := New(io.Discard, LogInfo)
	c.openStore = func(context.Context, config.Store) (annotation.Store, error) { return store, nil }
	root := c.RootCommand()
	root.SetArgs([]string{"allocate", "p1", "-k", "pcr", "--value", "v", "--yes"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if d := c.stats.draws.Load(); d != 2 {
		t.Errorf("draws = %d, want 2", d)
	}
	if s := c.stats.skips.Load(); s != 1 {
		t.Errorf("skips = %d, want 1", s)
	}
	if n := c.stats.claims.Load(); n != 1 {
		t.Errorf("claims = %d, want 1", n)
	}
	if w := c.stats.writes.Load(); w != 1 {
		t.Errorf("writes = %d, want 1", w)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPrintProposalReportsLayoutErrors(t *testing.T) {
	ctx := context.Background()
	grid := annotation.NewGrid(annotation.NewMemoryStore(), "P001", plate.Plate96)
	a, err := alloc.NewForStrategy(grid, layout.Sample, 2)
	if err != nil {
		t.Fatalf("NewForStrategy: %v", err)
	}
	groups, err := a.Plan(ctx, "pcr", 1, 2)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if err := printProposal("P001", layout.Sample, plate.Plate96, 2, a, groups, nil); err != nil {
		t.Errorf("printProposal() = %v, want nil", err)
	}
	err = printProposal("P001", layout.Sample, plate.Plate96, 0, a, groups, nil)
	if !perrors.Is(err, perrors.ErrCodeInvalidGroupSize) {
		t.Errorf("printProposal(group 0) = %v, want INVALID_GROUP_SIZE", err)
	}
}

package alloc

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/observability"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/cursor"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// Grid is the plate resource an Allocator works against.
type Grid interface {
	// Dimensions returns the plate size.
	Dimensions() plate.Dimensions

	// HasAnnotation reports whether c already carries a value under key.
	HasAnnotation(ctx context.Context, c plate.Coordinate, key string) (bool, error)

	// SetAnnotation attaches value under key to c.
	SetAnnotation(ctx context.Context, c plate.Coordinate, key, value string) error
}

// BatchGrid is implemented by grids that can annotate several wells in one
// atomic write. Claim uses it when available.
type BatchGrid interface {
	Grid
	SetAnnotations(ctx context.Context, cells []plate.Coordinate, key, value string) error
}

// Allocator finds and claims unannotated wells in layout order.
type Allocator struct {
	grid   Grid
	cursor *cursor.Cursor
	logger *log.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for skip and claim messages.
func WithLogger(l *log.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an allocator drawing from cur against grid.
func New(grid Grid, cur *cursor.Cursor, opts ...Option) *Allocator {
	a := &Allocator{
		grid:   grid,
		cursor: cur,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewForStrategy builds a cursor for strategy s over the grid's own
// dimensions and returns an allocator over it.
func NewForStrategy(grid Grid, s layout.Strategy, groupSize int, opts ...Option) (*Allocator, error) {
	cur, err := cursor.FromStrategy(s, grid.Dimensions(), groupSize)
	if err != nil {
		return nil, err
	}
	return New(grid, cur, opts...), nil
}

// Cursor returns the underlying cursor.
func (a *Allocator) Cursor() *cursor.Cursor { return a.cursor }

// NextUnclaimed returns the next well in layout order with no value under key.
func (a *Allocator) NextUnclaimed(ctx context.Context, key string) (plate.Coordinate, error) {
	g, err := a.search(ctx, key, func() (plate.Group, error) {
		c, err := a.cursor.Next()
		return plate.Group{c}, err
	})
	if err != nil {
		return plate.Coordinate{}, err
	}
	return g[0], nil
}

// NextUnclaimedIn is NextUnclaimed restricted to wells in column.
func (a *Allocator) NextUnclaimedIn(ctx context.Context, key string, column int) (plate.Coordinate, error) {
	g, err := a.search(ctx, key, func() (plate.Group, error) {
		c, err := a.cursor.NextIn(column)
		return plate.Group{c}, err
	})
	if err != nil {
		return plate.Coordinate{}, err
	}
	return g[0], nil
}

// NextUnclaimedGroup returns the next group of size wells none of which has a
// value under key. Groups with any claimed member are discarded whole.
func (a *Allocator) NextUnclaimedGroup(ctx context.Context, key string, size int) (plate.Group, error) {
	return a.search(ctx, key, func() (plate.Group, error) {
		return a.cursor.NextGroup(size)
	})
}

// NextUnclaimedGroupIn is NextUnclaimedGroup with each draw starting at the
// first remaining well in column.
func (a *Allocator) NextUnclaimedGroupIn(ctx context.Context, key string, size, column int) (plate.Group, error) {
	return a.search(ctx, key, func() (plate.Group, error) {
		return a.cursor.NextGroupIn(size, column)
	})
}

// search draws candidates until one has no claimed member.
func (a *Allocator) search(ctx context.Context, key string, draw func() (plate.Group, error)) (plate.Group, error) {
	if err := perrors.ValidateKey(key); err != nil {
		return nil, err
	}

	hooks := observability.Allocation()
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g, err := draw()
		if err != nil {
			if perrors.Is(err, perrors.ErrCodeExhausted) {
				hooks.OnExhausted(ctx, key, skipped)
				a.logger.Debug("layout exhausted", "key", key, "skipped", skipped)
				return nil, perrors.Wrap(perrors.ErrCodeExhausted, err, "no unclaimed wells left for %q", key)
			}
			return nil, err
		}

		wells := g.Wells()
		hooks.OnDraw(ctx, key, wells)

		claimed, err := a.anyClaimed(ctx, g, key)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return g, nil
		}
		skipped++
		hooks.OnSkip(ctx, key, wells)
		a.logger.Debug("skipping claimed wells", "key", key, "wells", wells)
	}
}

func (a *Allocator) anyClaimed(ctx context.Context, g plate.Group, key string) (bool, error) {
	for _, c := range g {
		has, err := a.grid.HasAnnotation(ctx, c, key)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

// Claim writes value under key to every well in target. It is the only
// operation that mutates the grid. Store errors are returned unchanged.
func (a *Allocator) Claim(ctx context.Context, target []plate.Coordinate, key, value string) error {
	if err := perrors.ValidateKey(key); err != nil {
		return err
	}
	if len(target) == 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "nothing to claim")
	}

	wells := plate.Sequence(target).Wells()
	start := time.Now()
	err := a.write(ctx, target, key, value)
	observability.Allocation().OnClaim(ctx, key, wells, time.Since(start), err)
	if err != nil {
		a.logger.Error("claim failed", "key", key, "wells", wells, "err", err)
		return err
	}
	a.logger.Info("claimed wells", "key", key, "wells", wells)
	return nil
}

func (a *Allocator) write(ctx context.Context, target []plate.Coordinate, key, value string) error {
	if b, ok := a.grid.(BatchGrid); ok {
		return b.SetAnnotations(ctx, target, key, value)
	}
	for _, c := range target {
		if err := a.grid.SetAnnotation(ctx, c, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Allocate finds the next unclaimed group of size wells and claims it.
func (a *Allocator) Allocate(ctx context.Context, key string, size int, value string) (plate.Group, error) {
	g, err := a.NextUnclaimedGroup(ctx, key, size)
	if err != nil {
		return nil, err
	}
	if err := a.Claim(ctx, g, key, value); err != nil {
		return nil, err
	}
	return g, nil
}

// Plan proposes up to count unclaimed groups of size wells without claiming
// them. The proposed wells are consumed from the cursor. If the layout runs
// out first, Plan returns the groups found so far together with the
// EXHAUSTED or SHORT_GROUP error.
func (a *Allocator) Plan(ctx context.Context, key string, count, size int) ([]plate.Group, error) {
	if count < 1 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "count must be at least 1, got %d", count)
	}
	groups := make([]plate.Group, 0, min(count, a.cursor.Remaining()))
	for len(groups) < count {
		g, err := a.NextUnclaimedGroup(ctx, key, size)
		if err != nil {
			return groups, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// PlanIn is Plan with column seeking. The first group starts in column and
// each following group starts in the next column that still has a remaining
// well, wrapping after the last plate column.
func (a *Allocator) PlanIn(ctx context.Context, key string, count, size, column int) ([]plate.Group, error) {
	if count < 1 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "count must be at least 1, got %d", count)
	}
	groups := make([]plate.Group, 0, min(count, a.cursor.Remaining()))
	for len(groups) < count {
		g, err := a.nextInFrom(ctx, key, size, column)
		if err != nil {
			return groups, err
		}
		groups = append(groups, g)
		column = a.cursor.ColumnAfter(g[0].Column)
	}
	return groups, nil
}

// nextInFrom tries column and the columns after it until one yields a group.
func (a *Allocator) nextInFrom(ctx context.Context, key string, size, column int) (plate.Group, error) {
	columns := a.cursor.Columns()
	if column < 0 || column >= columns {
		return nil, perrors.New(perrors.ErrCodeInvalidSeek, "column %d outside a %d-column plate", column, columns)
	}
	var err error
	for i := 0; i < columns; i++ {
		var g plate.Group
		g, err = a.NextUnclaimedGroupIn(ctx, key, size, column)
		if err == nil {
			return g, nil
		}
		if !perrors.Is(err, perrors.ErrCodeInvalidSeek) && !perrors.Is(err, perrors.ErrCodeShortGroup) {
			return nil, err
		}
		column = a.cursor.ColumnAfter(column)
	}
	return nil, err
}

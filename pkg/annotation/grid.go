package annotation

import (
	"context"
	"time"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/observability"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/alloc"
)

// Grid is one plate of a Store, scoped to its dimensions. It implements
// alloc.BatchGrid so claims go through SetMany.
type Grid struct {
	store   Store
	plateID string
	dims    plate.Dimensions
}

var _ alloc.BatchGrid = (*Grid)(nil)

// NewGrid returns the plate plateID of store with dimensions dims.
func NewGrid(store Store, plateID string, dims plate.Dimensions) *Grid {
	return &Grid{store: store, plateID: plateID, dims: dims}
}

// PlateID returns the plate identifier.
func (g *Grid) PlateID() string { return g.plateID }

// Dimensions returns the plate size.
func (g *Grid) Dimensions() plate.Dimensions { return g.dims }

// HasAnnotation reports whether c carries a value under key.
func (g *Grid) HasAnnotation(ctx context.Context, c plate.Coordinate, key string) (bool, error) {
	if err := g.check(c); err != nil {
		return false, err
	}
	hooks := observability.Store()
	start := time.Now()
	_, ok, err := g.store.Get(ctx, g.plateID, c, key)
	if err != nil {
		hooks.OnError(ctx, g.store.Name(), "get", err)
		return false, err
	}
	hooks.OnRead(ctx, g.store.Name(), ok, time.Since(start))
	return ok, nil
}

// SetAnnotation stores value under key at c.
func (g *Grid) SetAnnotation(ctx context.Context, c plate.Coordinate, key, value string) error {
	return g.SetAnnotations(ctx, []plate.Coordinate{c}, key, value)
}

// SetAnnotations stores value under key at every cell in one write.
func (g *Grid) SetAnnotations(ctx context.Context, cells []plate.Coordinate, key, value string) error {
	for _, c := range cells {
		if err := g.check(c); err != nil {
			return err
		}
	}
	hooks := observability.Store()
	start := time.Now()
	if err := g.store.SetMany(ctx, g.plateID, cells, key, value); err != nil {
		hooks.OnError(ctx, g.store.Name(), "set", err)
		return err
	}
	hooks.OnWrite(ctx, g.store.Name(), time.Since(start))
	return nil
}

// Annotations returns every annotated well under key.
func (g *Grid) Annotations(ctx context.Context, key string) (map[plate.Coordinate]string, error) {
	hooks := observability.Store()
	start := time.Now()
	m, err := g.store.List(ctx, g.plateID, key)
	if err != nil {
		hooks.OnError(ctx, g.store.Name(), "list", err)
		return nil, err
	}
	hooks.OnRead(ctx, g.store.Name(), len(m) > 0, time.Since(start))
	return m, nil
}

// Clear removes every annotation under key.
func (g *Grid) Clear(ctx context.Context, key string) error {
	if err := g.store.Delete(ctx, g.plateID, key); err != nil {
		observability.Store().OnError(ctx, g.store.Name(), "delete", err)
		return err
	}
	return nil
}

func (g *Grid) check(c plate.Coordinate) error {
	if !g.dims.Contains(c) {
		return perrors.New(perrors.ErrCodeInvalidWell, "well %s outside %s plate", c, g.dims)
	}
	return nil
}

// Package cursor provides a consuming reader over a layout sequence.
//
// A [Cursor] hands out wells from the front of a [plate.Sequence], singly or
// in groups, optionally seeking to the first remaining well of a column. Every
// take is irreversible. Once the last well is taken the cursor is exhausted
// for good; a caller that needs another pass builds a new cursor.
//
// Cursors are not safe for concurrent use.
package cursor

import (
	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// Cursor consumes one sequence. The sequence itself is never modified; taken
// positions are tracked in a bitmap and pos marks the first untaken index.
type Cursor struct {
	seq       plate.Sequence
	taken     []bool
	pos       int
	remaining int
	columns   int
}

// New returns a cursor over seq. columns is the plate column count used by
// ColumnAfter and seek validation. The sequence is copied.
func New(seq plate.Sequence, columns int) *Cursor {
	own := make(plate.Sequence, len(seq))
	copy(own, seq)
	return &Cursor{
		seq:       own,
		taken:     make([]bool, len(own)),
		remaining: len(own),
		columns:   columns,
	}
}

// FromStrategy generates the sequence of s for dims and groupSize and wraps
// it in a new cursor.
func FromStrategy(s layout.Strategy, dims plate.Dimensions, groupSize int) (*Cursor, error) {
	seq, err := layout.Generate(s, dims, groupSize)
	if err != nil {
		return nil, err
	}
	return New(seq, dims.Columns), nil
}

// Len returns the length of the underlying sequence.
func (c *Cursor) Len() int { return len(c.seq) }

// Remaining returns the number of wells not yet taken.
func (c *Cursor) Remaining() int { return c.remaining }

// Exhausted reports whether every well has been taken.
func (c *Cursor) Exhausted() bool { return c.remaining == 0 }

// Columns returns the plate column count the cursor was built for.
func (c *Cursor) Columns() int { return c.columns }

// Peek returns the remaining wells in order without taking them.
func (c *Cursor) Peek() plate.Sequence {
	out := make(plate.Sequence, 0, c.remaining)
	for i := c.pos; i < len(c.seq); i++ {
		if !c.taken[i] {
			out = append(out, c.seq[i])
		}
	}
	return out
}

// Next takes the first remaining well.
func (c *Cursor) Next() (plate.Coordinate, error) {
	g, err := c.take(1, 0, false)
	if err != nil {
		return plate.Coordinate{}, err
	}
	return g[0], nil
}

// NextIn takes the first remaining well in column.
func (c *Cursor) NextIn(column int) (plate.Coordinate, error) {
	g, err := c.take(1, column, true)
	if err != nil {
		return plate.Coordinate{}, err
	}
	return g[0], nil
}

// NextGroup takes size consecutive remaining wells from the front.
//
// If fewer than size wells remain, NextGroup returns a SHORT_GROUP error and
// takes nothing; the caller decides whether to fall back to single draws.
func (c *Cursor) NextGroup(size int) (plate.Group, error) {
	return c.take(size, 0, false)
}

// NextGroupIn takes size consecutive remaining wells starting at the first
// remaining well in column. Wells of other columns that follow within the
// group are taken too, exactly as they appear in the sequence.
func (c *Cursor) NextGroupIn(size, column int) (plate.Group, error) {
	return c.take(size, column, true)
}

// ColumnAfter returns the column following column, wrapping to 0 after the
// last plate column.
func (c *Cursor) ColumnAfter(column int) int {
	next := column + 1
	if next >= c.columns {
		return 0
	}
	return next
}

// take removes size wells starting at the first remaining index in column
// when seeking, or at the front otherwise. Nothing is consumed on error.
func (c *Cursor) take(size, column int, seeking bool) (plate.Group, error) {
	if size < 1 {
		return nil, perrors.New(perrors.ErrCodeInvalidGroupSize, "group size must be at least 1, got %d", size)
	}
	if c.remaining == 0 {
		return nil, perrors.New(perrors.ErrCodeExhausted, "layout exhausted after %d wells", len(c.seq))
	}

	start := c.pos
	if seeking {
		var err error
		if start, err = c.seek(column); err != nil {
			return nil, err
		}
	}

	idx := make([]int, 0, size)
	for i := start; i < len(c.seq) && len(idx) < size; i++ {
		if !c.taken[i] {
			idx = append(idx, i)
		}
	}
	if len(idx) < size {
		return nil, perrors.New(perrors.ErrCodeShortGroup,
			"group of %d requested but only %d wells remain from %v", size, len(idx), c.seq[start])
	}

	g := make(plate.Group, size)
	for k, i := range idx {
		g[k] = c.seq[i]
		c.taken[i] = true
	}
	c.remaining -= size
	for c.pos < len(c.seq) && c.taken[c.pos] {
		c.pos++
	}
	return g, nil
}

// seek returns the index of the first remaining well in column.
func (c *Cursor) seek(column int) (int, error) {
	if column < 0 || (c.columns > 0 && column >= c.columns) {
		return 0, perrors.New(perrors.ErrCodeInvalidSeek, "column %d outside a %d-column plate", column, c.columns)
	}
	for i := c.pos; i < len(c.seq); i++ {
		if !c.taken[i] && c.seq[i].Column == column {
			return i, nil
		}
	}
	return 0, perrors.New(perrors.ErrCodeInvalidSeek, "no remaining well in column %d", column)
}

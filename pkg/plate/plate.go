package plate

import (
	"fmt"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/platekit/pkg/errors"
)

// Largest supported plate sides. A 3456-well plate is 48x72.
const (
	MaxRows    = 256
	MaxColumns = 256
)

// Standard plate formats.
var (
	Plate96  = Dimensions{Rows: 8, Columns: 12}
	Plate384 = Dimensions{Rows: 16, Columns: 24}
)

// Coordinate addresses one well by zero-based row and column.
type Coordinate struct {
	Row    int `json:"row" bson:"row"`
	Column int `json:"column" bson:"column"`
}

// At is shorthand for Coordinate{Row: row, Column: column}.
func At(row, column int) Coordinate { return Coordinate{Row: row, Column: column} }

// String returns the well name, e.g. "A1" for (0,0) and "H12" for (7,11).
func (c Coordinate) String() string {
	if c.Row < 0 || c.Column < 0 {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Column)
	}
	return RowLabel(c.Row) + strconv.Itoa(c.Column+1)
}

// RowLabel returns the letter label for a zero-based row: A..Z, AA, AB, ...
func RowLabel(row int) string {
	var b []byte
	for n := row; ; n = n/26 - 1 {
		b = append([]byte{byte('A' + n%26)}, b...)
		if n < 26 {
			break
		}
	}
	return string(b)
}

// ParseWell parses a well name such as "B7" or "aa3" into a Coordinate.
func ParseWell(name string) (Coordinate, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return Coordinate{}, perrors.New(perrors.ErrCodeInvalidWell, "invalid well name: %q", name)
	}

	row := 0
	for _, ch := range s[:i] {
		row = row*26 + int(ch-'A') + 1
	}
	col, err := strconv.Atoi(s[i:])
	if err != nil || col < 1 {
		return Coordinate{}, perrors.New(perrors.ErrCodeInvalidWell, "invalid well name: %q", name)
	}
	return Coordinate{Row: row - 1, Column: col - 1}, nil
}

// Dimensions is the size of a plate.
type Dimensions struct {
	Rows    int `json:"rows" toml:"rows"`
	Columns int `json:"columns" toml:"columns"`
}

// Validate reports an INVALID_DIMENSIONS error unless both sides are
// positive and within MaxRows and MaxColumns.
func (d Dimensions) Validate() error {
	if d.Rows <= 0 || d.Columns <= 0 {
		return perrors.New(perrors.ErrCodeInvalidDimensions, "plate dimensions must be positive, got %dx%d", d.Rows, d.Columns)
	}
	if d.Rows > MaxRows || d.Columns > MaxColumns {
		return perrors.New(perrors.ErrCodeInvalidDimensions,
			"plate dimensions %dx%d exceed the maximum %dx%d", d.Rows, d.Columns, MaxRows, MaxColumns)
	}
	return nil
}

// Contains reports whether c lies inside the plate.
func (d Dimensions) Contains(c Coordinate) bool {
	return c.Row >= 0 && c.Row < d.Rows && c.Column >= 0 && c.Column < d.Columns
}

// Cells returns the number of wells on the plate. It is only meaningful for
// dimensions that pass Validate.
func (d Dimensions) Cells() int { return d.Rows * d.Columns }

// String returns the dimensions as "RxC".
func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Rows, d.Columns) }

// Sequence is an ordered list of coordinates produced by a layout strategy.
type Sequence []Coordinate

// Validate checks that s has no duplicate coordinates and that every
// coordinate lies inside d.
func (s Sequence) Validate(d Dimensions) error {
	seen := make(map[Coordinate]int, len(s))
	for i, c := range s {
		if !d.Contains(c) {
			return perrors.New(perrors.ErrCodeInternal, "coordinate %v at index %d outside %s plate", c, i, d)
		}
		if j, dup := seen[c]; dup {
			return perrors.New(perrors.ErrCodeInternal, "coordinate %v repeated at index %d and %d", c, j, i)
		}
		seen[c] = i
	}
	return nil
}

// Wells returns the well names of s in order.
func (s Sequence) Wells() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.String()
	}
	return out
}

// Group is a fixed-size ordered batch of coordinates taken in one draw.
type Group []Coordinate

// Wells returns the well names of g in order.
func (g Group) Wells() []string { return Sequence(g).Wells() }

// Columns returns the distinct columns of g in first-seen order.
func (g Group) Columns() []int {
	var cols []int
	seen := make(map[int]bool)
	for _, c := range g {
		if !seen[c.Column] {
			seen[c.Column] = true
			cols = append(cols, c.Column)
		}
	}
	return cols
}

// Package plate defines the value types shared by the plate layout
// allocation engine: grid [Coordinate]s, [Dimensions], ordered
// [Sequence]s and [Group]s.
//
// # Overview
//
// A plate is a rectangular grid of wells addressed by zero-based row and
// column. Dimensions are always supplied by the caller so the same layout
// strategies run against 96-well, 384-well or custom plates.
//
// Coordinates are plain comparable values: two coordinates are equal when
// their rows and columns are equal, so they can be used directly as map keys.
//
// # Well Names
//
// For human-facing output a coordinate renders as a well name: a row letter
// followed by a one-based column number ("A1", "H12"). Rows past "Z" continue
// as "AA", "AB", ... as on 1536-well plates. [ParseWell] is the inverse.
//
// # Sequences
//
// Layout strategies produce a [Sequence]. Every sequence handed to a cursor
// must satisfy [Sequence.Validate]: no coordinate appears twice and every
// coordinate lies inside the plate.
package plate

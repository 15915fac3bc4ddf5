// Package layout implements the plate layout strategies: pure functions that
// map plate dimensions and a group size to an ordered, non-repeating
// [plate.Sequence] of wells.
//
// # Strategies
//
// Strategies form a closed enumeration ([Strategy]); each value maps to one
// generator:
//
//   - [Exhaustive]: every well, row-major. The "no special policy" fallback.
//   - [Sample]: replicate groups of groupSize vertically adjacent wells,
//     emitted column by column within each row band.
//   - [Primer]: one logical row per primer, each row emitted row-major.
//   - [SkipSample]: like Sample, but only every other band is used and the
//     replicate rows are spaced two apart, for reduced-density or sideways
//     plates.
//   - [SkipPrimer]: like Primer, but only every other row.
//   - [CDCSample]: the legacy fixed 8x12 pattern with rows A-C and E-G,
//     derived from Sample with group size 3.
//
// # Row Banding
//
// Sample and primer strategies share the row-banding helper [StartRows].
// Rows are partitioned into bands of height groupSize; when groupSize does
// not divide the row count evenly the band height grows by one so every row
// falls inside some band without a band starting off the plate. A band whose
// replicate wells would run past the last row is dropped as a whole rather
// than split.
//
// # Purity
//
// [Generate] has no hidden state: the same inputs always produce the same
// sequence, and every produced sequence satisfies [plate.Sequence.Validate].
package layout

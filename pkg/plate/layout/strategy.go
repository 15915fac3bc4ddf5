package layout

import (
	"strings"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
)

// Strategy identifies a layout policy.
type Strategy int

const (
	Exhaustive Strategy = iota
	Sample
	Primer
	SkipSample
	SkipPrimer
	CDCSample
)

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = Sample

var strategyNames = [...]string{
	Exhaustive: "exhaustive",
	Sample:     "sample",
	Primer:     "primer",
	SkipSample: "skip-sample",
	SkipPrimer: "skip-primer",
	CDCSample:  "cdc-sample",
}

// String returns the strategy name used in config files, flags and the API.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "unknown"
	}
	return strategyNames[s]
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s >= 0 && int(s) < len(strategyNames)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, perrors.New(perrors.ErrCodeInvalidStrategy, "unknown strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy returns the strategy with the given name. Matching ignores
// case, and underscores are accepted in place of dashes.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for i, sn := range strategyNames {
		if sn == n {
			return Strategy(i), nil
		}
	}
	return 0, perrors.New(perrors.ErrCodeInvalidStrategy, "unknown strategy %q (want one of %s)", name, strings.Join(Names(), ", "))
}

// Strategies returns every strategy in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategyNames))
	for i := range strategyNames {
		out[i] = Strategy(i)
	}
	return out
}

// Names returns the names of every strategy in declaration order.
func Names() []string {
	return append([]string(nil), strategyNames[:]...)
}

// Description returns a one-line summary of the strategy.
func (s Strategy) Description() string {
	switch s {
	case Exhaustive:
		return "every well, row-major"
	case Sample:
		return "vertical replicate groups, column by column within row bands"
	case Primer:
		return "one row per primer, row-major"
	case SkipSample:
		return "replicate groups on alternate bands with rows spaced two apart"
	case SkipPrimer:
		return "one primer on every other row"
	case CDCSample:
		return "legacy 8x12 pattern using rows A-C and E-G"
	}
	return ""
}

// generator produces a sequence for validated inputs.
type generator func(dims plate.Dimensions, groupSize int) (plate.Sequence, error)

var generators = map[Strategy]generator{
	Exhaustive: exhaustiveLayout,
	Sample:     sampleLayout,
	Primer:     primerLayout,
	SkipSample: skipSampleLayout,
	SkipPrimer: skipPrimerLayout,
	CDCSample:  cdcSampleLayout,
}

// Generate returns the well sequence of strategy s on a plate of the given
// dimensions. groupSize is the number of replicate wells per group; it must be
// at least 1 even for strategies that ignore it.
func Generate(s Strategy, dims plate.Dimensions, groupSize int) (plate.Sequence, error) {
	gen, ok := generators[s]
	if !ok {
		return nil, perrors.New(perrors.ErrCodeInvalidStrategy, "unknown strategy %d", int(s))
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if groupSize < 1 {
		return nil, perrors.New(perrors.ErrCodeInvalidGroupSize, "group size must be at least 1, got %d", groupSize)
	}
	return gen(dims, groupSize)
}

// MustGenerate is like Generate but panics on error. It is intended for
// package-level fixtures with constant inputs.
func MustGenerate(s Strategy, dims plate.Dimensions, groupSize int) plate.Sequence {
	seq, err := Generate(s, dims, groupSize)
	if err != nil {
		panic(err)
	}
	return seq
}

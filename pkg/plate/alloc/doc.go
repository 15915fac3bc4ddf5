// Package alloc implements the occupancy-aware allocator: it draws wells or
// groups from a layout [cursor.Cursor] and returns the first candidate that
// carries no annotation under a given key in the plate's annotation store.
//
// # Find, then Claim
//
// Finding a free slot ([Allocator.NextUnclaimed], [Allocator.NextUnclaimedGroup])
// never writes. Committing is a separate call ([Allocator.Claim]) so callers
// can show the proposed wells before anything is recorded:
//
//	a := alloc.New(grid, cur, alloc.WithLogger(logger))
//	g, err := a.NextUnclaimedGroup(ctx, "rt-qpcr", 3)
//	if errors.Is(err, errors.ErrCodeExhausted) {
//	    // plate is full under this layout
//	}
//	// ... render g for confirmation ...
//	err = a.Claim(ctx, g, "rt-qpcr", sampleID)
//
// # Re-entrancy
//
// Freeness is read from the store on every draw and never cached. Running the
// same allocation again against a plate that an interrupted run partially
// filled skips the wells that run already claimed, so repeated runs never
// hand out a well twice for the same key.
//
// # Errors
//
// Running off the end of the layout is reported as EXHAUSTED. Store failures
// are returned exactly as the store reported them and abort the search; they
// are never treated as "unclaimed". Invalid seeks and short groups surface as
// the cursor's INVALID_SEEK and SHORT_GROUP errors.
//
// An Allocator wraps a single cursor and is not safe for concurrent use.
package alloc

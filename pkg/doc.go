// Package pkg provides the core libraries for platekit, a plate layout
// allocation engine.
//
// # Overview
//
// Platekit decides which wells of a microtiter plate a sample (or a group of
// replicate samples) should occupy. A layout strategy turns plate dimensions
// into a fixed visiting order; a cursor walks that order; the allocator skips
// wells that already carry an annotation and claims the rest. The pkg
// directory is organized as follows:
//
//  1. [plate] - Value types (coordinates, dimensions, sequences, groups)
//  2. [plate/layout] - Layout strategies and the strategy registry
//  3. [plate/cursor] - Stateful iteration with column seek
//  4. [plate/alloc] - Occupancy-aware allocation and claiming
//  5. [annotation] - Annotation grids and their storage backends
//
// # Architecture
//
// The typical data flow through platekit:
//
//	Plate dimensions + strategy
//	         ↓
//	    [plate/layout] (fixed visiting order)
//	         ↓
//	    [plate/cursor] (next well / next group / seek)
//	         ↓
//	    [plate/alloc] (skip annotated wells, claim the rest)
//	         ↓
//	    [annotation] (memory, file, SQLite, Redis or MongoDB)
//
// # Quick Start
//
// Allocate three replicate wells on a 96-well plate:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/platekit/pkg/annotation"
//	    "github.com/matzehuels/platekit/pkg/plate"
//	    "github.com/matzehuels/platekit/pkg/plate/alloc"
//	    "github.com/matzehuels/platekit/pkg/plate/layout"
//	)
//
//	dims := plate.Dimensions{Rows: 8, Columns: 12}
//	grid := annotation.NewGrid(annotation.NewMemoryStore(), "P001", dims)
//	a, _ := alloc.NewForStrategy(grid, layout.CDCSample, 3)
//	group, _ := a.Allocate(ctx, "sample", 3, "S-42")
//
// # Supporting Packages
//
// [config] - TOML configuration: plate defaults, store backend, server address.
//
// [errors] - Structured error codes shared by the library, CLI and API.
//
// [observability] - Hook interfaces for allocation and store events.
//
// [api] - HTTP JSON API over the allocator.
//
// [render/platemap] - Graphviz rendering of a layout's fill order.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                        # All tests
//	go test ./pkg/plate/...                  # Allocation engine only
//	go test -run Example ./pkg/plate/...     # Examples only
//
// Redis and MongoDB store tests run when PLATEKIT_TEST_REDIS_ADDR or
// PLATEKIT_TEST_MONGO_URI is set.
//
// [plate]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/plate
// [plate/layout]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/plate/layout
// [plate/cursor]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/plate/cursor
// [plate/alloc]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/plate/alloc
// [annotation]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/annotation
// [config]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/observability
// [api]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/api
// [render/platemap]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/render/platemap
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/platekit/pkg/buildinfo
package pkg

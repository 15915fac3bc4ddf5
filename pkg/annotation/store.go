// Package annotation provides the per-well annotation stores that record
// which wells of a plate have been claimed under which key.
//
// # Architecture
//
// A [Store] maps (plate, key, well) to a string value. Backends:
//   - [MemoryStore]: in-process maps for tests and dry runs
//   - [FileStore]: one JSON document per plate, the CLI default
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: one Redis hash per plate and key
//   - [MongoStore]: one MongoDB document per annotated well
//
// [Open] selects a backend from configuration. [Grid] adapts a store to the
// plate-scoped interface the allocator consumes.
//
// # Errors
//
// Backends report driver and I/O failures as STORE_UNAVAILABLE errors. A
// missing annotation is not an error: Get returns ok == false.
//
// All backends are safe for concurrent use.
package annotation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Store is the interface for annotation storage backends.
type Store interface {
	// Name returns the backend name.
	Name() string

	// Get returns the value under key at c on plateID.
	// ok is false if the well carries no value under key.
	Get(ctx context.Context, plateID string, c plate.Coordinate, key string) (value string, ok bool, err error)

	// Set stores value under key at c, replacing any previous value.
	Set(ctx context.Context, plateID string, c plate.Coordinate, key, value string) error

	// SetMany stores value under key at every cell in one write.
	SetMany(ctx context.Context, plateID string, cells []plate.Coordinate, key, value string) error

	// List returns every annotated well of plateID under key.
	List(ctx context.Context, plateID, key string) (map[plate.Coordinate]string, error)

	// Delete removes every annotation under key from plateID.
	Delete(ctx context.Context, plateID, key string) error

	// Close releases backend resources.
	Close() error
}

// cellField encodes a coordinate as "row:column" for string-keyed backends.
func cellField(c plate.Coordinate) string {
	return strconv.Itoa(c.Row) + ":" + strconv.Itoa(c.Column)
}

// parseCellField is the inverse of cellField.
func parseCellField(s string) (plate.Coordinate, error) {
	r, c, ok := strings.Cut(s, ":")
	if !ok {
		return plate.Coordinate{}, fmt.Errorf("malformed cell field %q", s)
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return plate.Coordinate{}, fmt.Errorf("malformed cell field %q: %w", s, err)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return plate.Coordinate{}, fmt.Errorf("malformed cell field %q: %w", s, err)
	}
	return plate.At(row, col), nil
}

func validateScope(plateID, key string) error {
	if err := perrors.ValidatePlateID(plateID); err != nil {
		return err
	}
	return perrors.ValidateKey(key)
}

func unavailable(backend, op string, err error) error {
	return perrors.Wrap(perrors.ErrCodeStoreUnavailable, err, "%s %s", backend, op)
}

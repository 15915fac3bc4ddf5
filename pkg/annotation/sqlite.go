package annotation

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/platekit/pkg/plate"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS annotations (
	plate_id   TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	well_row   INTEGER NOT NULL,
	well_col   INTEGER NOT NULL,
	value      TEXT    NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (plate_id, key, well_row, well_col)
);
`

const sqliteUpsert = `
INSERT INTO annotations (plate_id, key, well_row, well_col, value)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (plate_id, key, well_row, well_col)
DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`

// SQLiteStore keeps annotations in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(BackendSQLite, "open", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, unavailable(BackendSQLite, "configure", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, unavailable(BackendSQLite, "apply schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Name() string { return BackendSQLite }

func (s *SQLiteStore) Get(ctx context.Context, plateID string, c plate.Coordinate, key string) (string, bool, error) {
	if err := validateScope(plateID, key); err != nil {
		return "", false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM annotations WHERE plate_id = ? AND key = ? AND well_row = ? AND well_col = ?`,
		plateID, key, c.Row, c.Column,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(BackendSQLite, "get", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, plateID string, c plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqliteUpsert, plateID, key, c.Row, c.Column, value); err != nil {
		return unavailable(BackendSQLite, "set", err)
	}
	return nil
}

// SetMany writes all cells in one transaction.
func (s *SQLiteStore) SetMany(ctx context.Context, plateID string, cells []plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(BackendSQLite, "begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return unavailable(BackendSQLite, "prepare", err)
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, plateID, key, c.Row, c.Column, value); err != nil {
			return unavailable(BackendSQLite, "set", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable(BackendSQLite, "commit", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, plateID, key string) (map[plate.Coordinate]string, error) {
	if err := validateScope(plateID, key); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT well_row, well_col, value FROM annotations WHERE plate_id = ? AND key = ?`,
		plateID, key,
	)
	if err != nil {
		return nil, unavailable(BackendSQLite, "list", err)
	}
	defer rows.Close()

	out := make(map[plate.Coordinate]string)
	for rows.Next() {
		var c plate.Coordinate
		var value string
		if err := rows.Scan(&c.Row, &c.Column, &value); err != nil {
			return nil, unavailable(BackendSQLite, "list", err)
		}
		out[c] = value
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(BackendSQLite, "list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, plateID, key string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE plate_id = ? AND key = ?`, plateID, key); err != nil {
		return unavailable(BackendSQLite, "delete", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

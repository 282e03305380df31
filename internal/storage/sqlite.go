package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/partsbin/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// metaSavedAt marks that the inventory was saved at least once, so an empty
// parts table can be told apart from a fresh database.
const metaSavedAt = "saved_at"

// SQLiteStore keeps the inventory in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: writes serialize anyway, and ":memory:" databases are
	// per-connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Driver implements Backend.
func (s *SQLiteStore) Driver() string { return DriverSQLite }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the saved parts in their saved order.
func (s *SQLiteStore) Load(ctx context.Context) ([]core.Record, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM inventory_meta WHERE key = ?`, metaSavedAt,
	).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read inventory meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, quantity, drawer, value, package, notes
		FROM parts
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var r core.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.Quantity,
			&r.Drawer, &r.Value, &r.Package, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}
	return records, nil
}

// Save replaces the stored parts in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM parts`); err != nil {
		return fmt.Errorf("clear parts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parts (position, id, name, category, quantity, drawer, value, package, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.Name, r.Category, r.Quantity,
			r.Drawer, r.Value, r.Package, r.Notes); err != nil {
			return fmt.Errorf("insert part %s: %w", r.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSavedAt, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("write inventory meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

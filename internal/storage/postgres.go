package storage

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/partsbin/internal/config"
	"github.com/JonMunkholm/partsbin/internal/core"
)

//go:embed schema_postgres.sql
var postgresSchema string

// partColumns is the COPY column order; it matches partRow.
var partColumns = []string{"position", "id", "name", "category", "quantity", "drawer", "value", "package", "notes"}

// PostgresStore keeps the inventory in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	dbName string
}

// OpenPostgres connects with the pool settings from cfg, verifies the
// connection and applies the schema.
func OpenPostgres(ctx context.Context, cfg config.StorageConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &PostgresStore{pool: pool, dbName: databaseName(cfg.DatabaseURL)}, nil
}

// databaseName extracts the database name for logging without credentials.
func databaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// Driver implements Backend.
func (s *PostgresStore) Driver() string { return DriverPostgres }

// Database returns the connected database name.
func (s *PostgresStore) Database() string { return s.dbName }

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Load returns the saved parts in their saved order.
func (s *PostgresStore) Load(ctx context.Context) ([]core.Record, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory_meta WHERE key = $1)`, metaSavedAt,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("read inventory meta: %w", err)
	}
	if !exists {
		return nil, core.ErrStateNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, category, quantity, drawer, value, package, notes
		FROM parts
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Record, error) {
		var r core.Record
		var qty int32
		err := row.Scan(&r.ID, &r.Name, &r.Category, &qty, &r.Drawer, &r.Value, &r.Package, &r.Notes)
		r.Quantity = int(qty)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan parts: %w", err)
	}
	if records == nil {
		records = []core.Record{}
	}
	return records, nil
}

// Save replaces the stored parts in one transaction using COPY.
func (s *PostgresStore) Save(ctx context.Context, records []core.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM parts`); err != nil {
		return fmt.Errorf("clear parts: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"parts"}, partColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return partRow(i, records[i]), nil
		}))
	if err != nil {
		return fmt.Errorf("copy parts: %w", err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy parts: wrote %d of %d rows", n, len(records))
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_meta (key, value) VALUES ($1, now())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, metaSavedAt,
	); err != nil {
		return fmt.Errorf("write inventory meta: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// partRow lays out one record in partColumns order.
func partRow(position int, r core.Record) []any {
	return []any{
		int32(position), r.ID, r.Name, r.Category, int32(r.Quantity),
		r.Drawer, r.Value, r.Package, r.Notes,
	}
}

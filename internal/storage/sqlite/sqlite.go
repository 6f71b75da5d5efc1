// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tripledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx, so loaders can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// dsn applies per-connection pragmas. A plain PRAGMA statement would only
// reach whichever pooled connection happened to run it.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *SQLiteStore) inTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// touchTrip bumps a trip's updated_at as part of a write. It fails with
// ErrNotFound when the trip does not exist and ErrArchived when it is
// archived, so the check and the write share one transaction.
func touchTrip(ctx context.Context, q querier, tripID string) error {
	res, err := q.ExecContext(ctx,
		"UPDATE trips SET updated_at = ? WHERE id = ? AND archived = 0",
		time.Now().Unix(), tripID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch trip: %w", err)
	}
	return expectWritable(ctx, q, res, tripID)
}

// expectWritable explains why an update of an unarchived trip matched no
// rows.
func expectWritable(ctx context.Context, q querier, res sql.Result, tripID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var archived bool
	err = q.QueryRowContext(ctx, "SELECT archived FROM trips WHERE id = ?", tripID).Scan(&archived)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: trip %s", storage.ErrNotFound, tripID)
	}
	if err != nil {
		return fmt.Errorf("failed to get trip: %w", err)
	}
	return fmt.Errorf("%w: %s", storage.ErrArchived, tripID)
}

// expectRow maps a statement that affected no rows onto ErrNotFound.
func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", storage.ErrNotFound, kind, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// generateTripName creates a trip name when the caller did not provide one.
func generateTripName(destination string, members []string) string {
	if destination != "" {
		return fmt.Sprintf("Trip to %s", destination)
	}
	if len(members) == 0 {
		return fmt.Sprintf("Trip - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(members) <= 3 {
		return fmt.Sprintf("Trip with %s", strings.Join(members, ", "))
	}
	return fmt.Sprintf("Trip with %s and %d others",
		strings.Join(members[:2], ", "),
		len(members)-2,
	)
}

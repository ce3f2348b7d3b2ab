// Package database is the sqlite-backed calendar store. Mutating flows run
// through DB.InTx so validation and writes share one transaction.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JayBeez180/booking-system/internal/booking"
)

// ErrNotFound marks a lookup that matched no row.
var ErrNotFound = errors.New("not found")

// querier is the subset of sql.DB and sql.Tx the queries run against.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements booking.Store over either a live connection or a
// transaction.
type Store struct {
	q querier
}

// DB owns the sqlite handle. Its embedded Store serves lock-free reads;
// InTx hands callers a transactional Store.
type DB struct {
	sql *sql.DB
	*Store
}

// NewDB opens (or creates) the database at path and runs migrations.
// Transactions are opened immediate so two writers cannot interleave a
// check-then-act against the same snapshot.
func NewDB(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{sql: db, Store: &Store{q: db}}, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.sql.Close()
}

// InTx runs fn against a transactional store view, committing only when fn
// returns nil.
func (db *DB) InTx(ctx context.Context, fn func(booking.Store) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			duration_minutes INTEGER NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT 1,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS availability_windows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day_of_week INTEGER NOT NULL,
			start_min INTEGER NOT NULL,
			end_min INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS blocked_times (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL DEFAULT '',
			start_min INTEGER NOT NULL DEFAULT 0,
			end_min INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			all_day BOOLEAN NOT NULL DEFAULT 0,
			recurring_weekly BOOLEAN NOT NULL DEFAULT 0,
			recurring_day_of_week INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference TEXT UNIQUE NOT NULL,
			service_id INTEGER NOT NULL,
			service_name TEXT NOT NULL DEFAULT '',
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			start_min INTEGER NOT NULL,
			end_min INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'confirmed',
			notes TEXT NOT NULL DEFAULT '',
			no_show_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (service_id) REFERENCES services(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_windows_day ON availability_windows(day_of_week, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_date ON blocked_times(date, recurring_weekly)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_recurring ON blocked_times(recurring_weekly, recurring_day_of_week)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date_status ON bookings(date, status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

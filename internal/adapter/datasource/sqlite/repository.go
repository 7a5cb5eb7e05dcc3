// Package sqlite persists the application entities in a single SQLite database.
// internal/adapter/datasource/sqlite/repository.go
package sqlite

import (
	"GestionBC/internal/core/port"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// compile-time interface checks
var (
	_ port.CatalogRepository       = (*Repository)(nil)
	_ port.BonDeCommandeRepository = (*Repository)(nil)
	_ port.ReportRepository        = (*Repository)(nil)
	_ port.SuiviRepository         = (*Repository)(nil)
	_ port.OtRepository            = (*Repository)(nil)
	_ port.NotificationRepository  = (*Repository)(nil)
	_ port.DashboardRepository     = (*Repository)(nil)
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Repository implements every repository port over one database handle.
type Repository struct {
	db *sqlx.DB

	// columns caches PRAGMA table_info per table; the schema does not change at runtime.
	columnsMu sync.RWMutex
	columns   map[string]map[string]string
}

// NewRepository wraps an open database.
func NewRepository(db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("sqlite repository: db must not be nil")
	}
	return &Repository{
		db:      sqlx.NewDb(db, DriverName),
		columns: make(map[string]map[string]string),
	}, nil
}

// DSN builds the connection string used in production.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)", path)
}

// HealthCheck pings the database.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn in a transaction committed on success and rolled back on error or panic.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			slog.Error("transaction panicked, rolled back", "panic", p)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("commit transaction: %w", commitErr)
		}
	}()
	return fn(tx)
}

// mapError translates driver errors into port sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, port.ErrNotFound)
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w", what, port.ErrConflict)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w: %v", what, port.ErrInvalidInput, err)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// expectAffected turns a zero-row update into ErrNotFound.
func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, port.ErrNotFound)
	}
	return nil
}

package visitors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotSeeded is returned when the visitors row is missing, which
// means migrations have not run against this database.
var ErrNotSeeded = errors.New("visitors: counter row missing (migrations not applied?)")

// Repository defines the interface for visitor count persistence.
// This abstraction allows different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// Get returns the current visitor count.
	Get(ctx context.Context) (int, error)

	// Add increments the count by delta (which may be negative for
	// corrections) and returns the new count. The count never goes
	// below zero.
	Add(ctx context.Context, delta int) (int, error)

	// Reset sets the count to zero and returns the new count.
	Reset(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
//
// The visitors table holds exactly one row (id = 1), seeded by the
// migration that creates it.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the current visitor count.
func (r *SQLiteRepository) Get(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count FROM visitors WHERE id = 1`).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotSeeded
		}
		return 0, fmt.Errorf("querying visitor count: %w", err)
	}
	return count, nil
}

// Add increments the count by delta and returns the new count,
// clamped at zero.
func (r *SQLiteRepository) Add(ctx context.Context, delta int) (int, error) {
	return r.set(ctx, `UPDATE visitors SET count = MAX(0, count + ?), updated_at = ? WHERE id = 1`, delta)
}

// Reset sets the count to zero.
func (r *SQLiteRepository) Reset(ctx context.Context) (int, error) {
	return r.set(ctx, `UPDATE visitors SET count = 0, updated_at = ? WHERE id = 1`, nil)
}

// set runs the given single-row update and reads back the new count
// inside one transaction.
func (r *SQLiteRepository) set(ctx context.Context, query string, delta any) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning visitor update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	if delta != nil {
		res, err = tx.ExecContext(ctx, query, delta, now)
	} else {
		res, err = tx.ExecContext(ctx, query, now)
	}
	if err != nil {
		return 0, fmt.Errorf("updating visitor count: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking visitor update: %w", err)
	}
	if affected == 0 {
		return 0, ErrNotSeeded
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count FROM visitors WHERE id = 1`).Scan(&count); err != nil {
		return 0, fmt.Errorf("reading back visitor count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing visitor update: %w", err)
	}
	return count, nil
}

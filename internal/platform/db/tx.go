package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVersionConflict is returned when a compare-and-swap update matched no row.
// Every write path that mutates stock or balance carries a version column and
// must fail rather than silently overwrite a concurrent edit.
var ErrVersionConflict = errors.New("platform/db: version conflict")

// WithTx executes a function within a transaction using the RepeatableRead isolation level.
// Stock adjustments, balance propagation and the primary record write of one user
// action all commit through a single call here, or not at all.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

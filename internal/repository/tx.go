package repository

import (
	"context"
	"fmt"

	"photo-social-backend/internal/db"

	"github.com/jackc/pgx/v5"
)

// withTx runs fn in a transaction, rolling back when fn fails
func withTx(ctx context.Context, q db.Querier, fn func(tx pgx.Tx) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

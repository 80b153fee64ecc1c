package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/storefront/internal/db"
)

const rollbackTimeout = 5 * time.Second

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx executes fn within a transaction if the repository was created with a pool,
// or uses the existing transaction if the repository was created with a transaction.
// The connection goes back to the pool on every path: commit, error or panic.
func withTx[T any](ctx context.Context, dbtx db.DBTX, fn func(q *db.Queries) (T, error)) (_ T, txErr error) {
	var zero T

	// Already in a transaction, the caller owns commit and rollback
	if tx, ok := dbtx.(pgx.Tx); ok {
		return fn(db.New(tx))
	}

	beginner, ok := dbtx.(txBeginner)
	if !ok {
		return zero, fmt.Errorf("dbtx is neither pgx.Tx nor a pool: %T", dbtx)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("Begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = rollback(ctx, tx)
			panic(p)
		}

		if txErr != nil {
			if rollbackErr := rollback(ctx, tx); rollbackErr != nil {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(db.New(tx))
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

// rollback survives a cancelled request context: the abort still has to
// reach the server so the connection is returned clean.
func rollback(ctx context.Context, tx pgx.Tx) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

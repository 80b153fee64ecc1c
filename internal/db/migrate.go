package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

// Migrate creates missing tables. It is idempotent.
func Migrate(ctx context.Context, conn DBTX) error {
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("conn.Exec[schema]: %w", err)
	}
	return nil
}

// Seed fills the catalog with demo categories and products when it is empty.
func Seed(ctx context.Context, conn DBTX) error {
	if _, err := conn.Exec(ctx, seedSQL); err != nil {
		return fmt.Errorf("conn.Exec[seed]: %w", err)
	}
	return nil
}

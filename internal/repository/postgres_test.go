package repository_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres runs a throwaway Postgres with the schema and the demo
// catalog (product ids 1..6) applied.
func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	if err := migrate(ctx, connStr); err != nil {
		return container, "", fmt.Errorf("migrate: %w", err)
	}

	return container, connStr, nil
}

func migrate(ctx context.Context, connStr string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return fmt.Errorf("pgx.Connect: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	if err := db.Migrate(ctx, conn); err != nil {
		return fmt.Errorf("db.Migrate: %w", err)
	}

	if err := db.Seed(ctx, conn); err != nil {
		return fmt.Errorf("db.Seed: %w", err)
	}

	return nil
}

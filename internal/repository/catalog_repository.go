package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

type catalogRepository struct {
	q *db.Queries
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{
		q: db.New(pool),
	}
}

func (r *catalogRepository) MissingProducts(ctx context.Context, productIDs []int64) ([]int64, error) {
	ids := lo.Uniq(productIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	existing, err := r.q.ExistingProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.ExistingProductIDs: %w", err)
	}

	return nilSliceIfEmpty(lo.Without(ids, existing...)), nil
}

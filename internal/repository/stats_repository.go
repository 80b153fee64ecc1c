package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
)

type statsRepository struct {
	dbtx db.DBTX
}

func NewStats(pool *pgxpool.Pool) port.StatsRepository {
	return &statsRepository{
		dbtx: pool,
	}
}

func (r *statsRepository) GetStats(ctx context.Context) (domain.Stats, error) {
	stats, err := withTx(ctx, r.dbtx, func(q *db.Queries) (domain.Stats, error) {
		totals, err := q.GetTotals(ctx)
		if err != nil {
			return domain.Stats{}, fmt.Errorf("q.GetTotals: %w", err)
		}

		dbOrders, err := q.ListOrders(ctx, db.ListOrdersParams{Limit: recentOrdersLimit})
		if err != nil {
			return domain.Stats{}, fmt.Errorf("q.ListOrders: %w", err)
		}

		recent := make([]domain.Order, 0, len(dbOrders))
		for _, dbOrder := range dbOrders {
			order, err := mapDBOrderToDomain(dbOrder, nil)
			if err != nil {
				return domain.Stats{}, fmt.Errorf("mapDBOrderToDomain: %w", err)
			}
			recent = append(recent, order)
		}

		dbProducts, err := q.TopProductsByStock(ctx, topProductsLimit)
		if err != nil {
			return domain.Stats{}, fmt.Errorf("q.TopProductsByStock: %w", err)
		}

		return domain.Stats{
			Revenue:      totals.Revenue,
			Orders:       totals.Orders,
			Products:     totals.Products,
			TotalStock:   totals.TotalStock,
			RecentOrders: recent,
			TopProducts: lo.Map(dbProducts, func(row db.TopProductsByStockRow, _ int) domain.Product {
				return domain.Product{
					ID:           row.ID,
					Name:         row.Name,
					Price:        row.Price,
					Stock:        row.Stock,
					CategoryName: row.CategoryName,
				}
			}),
		}, nil
	})
	if err != nil {
		return domain.Stats{}, fmt.Errorf("withTx: %w", err)
	}

	return stats, nil
}

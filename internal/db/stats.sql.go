package db

import (
	"context"

	"github.com/shopspring/decimal"
)

const getTotals = `-- name: GetTotals :one
SELECT
    (SELECT COALESCE(SUM(total), 0) FROM orders)::numeric(12, 2) AS revenue,
    (SELECT COUNT(*) FROM orders)                                AS orders,
    (SELECT COUNT(*) FROM products)                              AS products,
    (SELECT COALESCE(SUM(stock), 0) FROM products)::bigint       AS total_stock
`

type GetTotalsRow struct {
	Revenue    decimal.Decimal
	Orders     int64
	Products   int64
	TotalStock int64
}

func (q *Queries) GetTotals(ctx context.Context) (GetTotalsRow, error) {
	row := q.db.QueryRow(ctx, getTotals)
	var i GetTotalsRow
	err := row.Scan(
		&i.Revenue,
		&i.Orders,
		&i.Products,
		&i.TotalStock,
	)
	return i, err
}

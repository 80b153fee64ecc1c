package db

import (
	"context"

	"github.com/shopspring/decimal"
)

const existingProductIDs = `-- name: ExistingProductIDs :many
SELECT id
FROM products
WHERE id = ANY($1::bigint[])
`

func (q *Queries) ExistingProductIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := q.db.Query(ctx, existingProductIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const topProductsByStock = `-- name: TopProductsByStock :many
SELECT p.id, p.name, p.price, p.stock, COALESCE(c.name, '') AS category_name
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
ORDER BY p.stock DESC, p.id
LIMIT $1
`

type TopProductsByStockRow struct {
	ID           int64
	Name         string
	Price        decimal.Decimal
	Stock        int32
	CategoryName string
}

func (q *Queries) TopProductsByStock(ctx context.Context, limit int32) ([]TopProductsByStockRow, error) {
	rows, err := q.db.Query(ctx, topProductsByStock, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TopProductsByStockRow
	for rows.Next() {
		var i TopProductsByStockRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Price,
			&i.Stock,
			&i.CategoryName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, total, status, shipping_address, idempotency_key, created_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Total,
		&i.Status,
		&i.ShippingAddress,
		&i.IdempotencyKey,
		&i.CreatedAt,
	)
	return i, err
}

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (user_id, total, status, shipping_address, idempotency_key)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (idempotency_key) DO NOTHING
RETURNING ` + orderColumns

type InsertOrderParams struct {
	UserID          *int64
	Total           decimal.Decimal
	Status          string
	ShippingAddress string
	IdempotencyKey  *uuid.UUID
}

// InsertOrder returns pgx.ErrNoRows when an order with the same
// idempotency key already exists.
func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.UserID,
		arg.Total,
		arg.Status,
		arg.ShippingAddress,
		arg.IdempotencyKey,
	)
	return scanOrder(row)
}

const insertOrderItem = `-- name: InsertOrderItem :exec
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
`

type InsertOrderItemParams struct {
	OrderID   int64
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) error {
	_, err := q.db.Exec(ctx, insertOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.Price,
	)
	return err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const getOrderByIdempotencyKey = `-- name: GetOrderByIdempotencyKey :one
SELECT ` + orderColumns + `
FROM orders
WHERE idempotency_key = $1
`

func (q *Queries) GetOrderByIdempotencyKey(ctx context.Context, key uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByIdempotencyKey, key)
	return scanOrder(row)
}

const getOrderItems = `-- name: GetOrderItems :many
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, COALESCE(p.name, '') AS name
FROM order_items oi
LEFT JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.id
`

type GetOrderItemsRow struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
	Name      string
}

func (q *Queries) GetOrderItems(ctx context.Context, orderID int64) ([]GetOrderItemsRow, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GetOrderItemsRow
	for rows.Next() {
		var i GetOrderItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.Price,
			&i.Name,
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

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE ($1::text[] IS NULL OR status = ANY($1::text[]))
  AND ($2::timestamptz IS NULL OR created_at > $2::timestamptz)
  AND ($3::timestamptz IS NULL OR created_at < $3::timestamptz)
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5
`

type ListOrdersParams struct {
	Statuses      []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int32
	Offset        int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Statuses,
		arg.CreatedAfter,
		arg.CreatedBefore,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

const deleteOrder = `-- name: DeleteOrder :execresult
DELETE FROM orders
WHERE id = $1
`

// DeleteOrder relies on ON DELETE CASCADE to remove the order items.
func (q *Queries) DeleteOrder(ctx context.Context, id int64) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, deleteOrder, id)
}

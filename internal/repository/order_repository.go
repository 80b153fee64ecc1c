package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

const (
	pgForeignKeyViolation = "23503"
	productForeignKey     = "order_items_product_id_fkey"
)

type orderRepository struct {
	q    *db.Queries
	dbtx db.DBTX

	outboxTopic string
}

type OrderOption func(*orderRepository)

// WithOutbox makes InsertOrder write an order.created event for topic
// into the outbox, inside the order transaction.
func WithOutbox(topic string) OrderOption {
	return func(r *orderRepository) {
		r.outboxTopic = topic
	}
}

func NewOrder(pool *pgxpool.Pool, opts ...OrderOption) port.OrderRepository {
	return newOrderRepository(pool, opts...)
}

func NewOrderWithTx(tx pgx.Tx, opts ...OrderOption) port.OrderRepository {
	return newOrderRepository(tx, opts...)
}

func newOrderRepository(dbtx db.DBTX, opts ...OrderOption) *orderRepository {
	r := &orderRepository{
		q:    db.New(dbtx),
		dbtx: dbtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type insertResult struct {
	order   domain.Order
	created bool
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, bool, error) {
	if len(order.Items) == 0 {
		return domain.Order{}, false, domain.ErrEmptyOrder
	}

	res, err := withTx(ctx, r.dbtx, func(q *db.Queries) (insertResult, error) {
		dbOrder, err := q.InsertOrder(ctx, db.InsertOrderParams{
			UserID:          order.UserID,
			Total:           order.Total,
			Status:          string(domain.OrderStatusPending),
			ShippingAddress: order.ShippingAddress,
			IdempotencyKey:  order.IdempotencyKey,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) && order.IdempotencyKey != nil {
				existing, err := getOrderByIdempotencyKey(ctx, q, *order.IdempotencyKey)
				if err != nil {
					return insertResult{}, fmt.Errorf("getOrderByIdempotencyKey: %w", err)
				}
				return insertResult{order: existing}, nil
			}
			return insertResult{}, fmt.Errorf("q.InsertOrder: %w", err)
		}

		// one statement per item, in the order they were submitted
		items := make([]domain.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			arg := db.InsertOrderItemParams{
				OrderID:   dbOrder.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			if err := q.InsertOrderItem(ctx, arg); err != nil {
				return insertResult{}, fmt.Errorf("q.InsertOrderItem[%d]: %w", item.ProductID, mapInsertError(err))
			}

			item.OrderID = dbOrder.ID
			items = append(items, item)
		}

		created, err := mapDBOrderToDomain(dbOrder, nil)
		if err != nil {
			return insertResult{}, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		created.Items = items

		if r.outboxTopic != "" {
			if err := insertOrderCreatedEvent(ctx, q, r.outboxTopic, created); err != nil {
				return insertResult{}, fmt.Errorf("insertOrderCreatedEvent: %w", err)
			}
		}

		return insertResult{order: created, created: true}, nil
	})
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("withTx: %w", err)
	}

	return res.order, res.created, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := withTx(ctx, r.dbtx, func(q *db.Queries) (domain.Order, error) {
		return getOrder(ctx, q, orderID)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	dbOrders, err := r.q.ListOrders(ctx, mapDomainOrderFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapDBOrderToDomain(dbOrder, nil)
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// DeleteOrder removes the order; its items go with it through ON DELETE CASCADE.
func (r *orderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return fmt.Errorf("orderID is empty")
	}

	cmdTag, err := r.q.DeleteOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("q.DeleteOrder: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeleteOrder: %w", domain.ErrNotFound)
	}

	return nil
}

func getOrder(ctx context.Context, q *db.Queries, orderID int64) (domain.Order, error) {
	dbOrder, err := q.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("q.GetOrder: %w", domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	return withItems(ctx, q, dbOrder)
}

func getOrderByIdempotencyKey(ctx context.Context, q *db.Queries, key uuid.UUID) (domain.Order, error) {
	dbOrder, err := q.GetOrderByIdempotencyKey(ctx, key)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderByIdempotencyKey: %w", err)
	}

	return withItems(ctx, q, dbOrder)
}

func withItems(ctx context.Context, q *db.Queries, dbOrder db.Order) (domain.Order, error) {
	dbOrderItems, err := q.GetOrderItems(ctx, dbOrder.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	order, err := mapDBOrderToDomain(dbOrder, dbOrderItems)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return order, nil
}

func insertOrderCreatedEvent(ctx context.Context, q *db.Queries, topic string, order domain.Order) error {
	event := domain.NewOrderCreatedEvent(order)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := q.InsertOutbox(ctx, db.InsertOutboxParams{
		EventID: event.ID,
		Topic:   topic,
		Key:     strconv.FormatInt(order.ID, 10),
		Payload: payload,
	}); err != nil {
		return fmt.Errorf("q.InsertOutbox: %w", err)
	}

	return nil
}

// mapInsertError turns a product foreign key violation, i.e. a product
// deleted after the submission was validated, into domain.ErrUnknownProduct.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == productForeignKey {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProduct, pgErr.Detail)
	}
	return err
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.ListOrdersParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
		return string(s)
	})

	params := db.ListOrdersParams{
		Statuses: nilSliceIfEmpty(statuses),
		Limit:    int32(filter.EffectiveLimit()),
		Offset:   int32(filter.Offset),
	}

	if filter.CreatedAt != nil {
		params.CreatedAfter = filter.CreatedAt.After
		params.CreatedBefore = filter.CreatedAt.Before
	}

	return params
}

func mapDBOrderToDomain(dbOrder db.Order, dbOrderItems []db.GetOrderItemsRow) (domain.Order, error) {
	status, err := domain.ToOrderStatus(dbOrder.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("domain.ToOrderStatus[%s]: %w", dbOrder.Status, err)
	}

	var items []domain.OrderItem
	if dbOrderItems != nil {
		items = lo.Map(dbOrderItems, func(row db.GetOrderItemsRow, _ int) domain.OrderItem {
			return domain.OrderItem{
				ID:          row.ID,
				OrderID:     row.OrderID,
				ProductID:   row.ProductID,
				ProductName: row.Name,
				Quantity:    row.Quantity,
				Price:       row.Price,
			}
		})
	}

	return domain.Order{
		ID:              dbOrder.ID,
		UserID:          dbOrder.UserID,
		Total:           dbOrder.Total,
		Status:          status,
		ShippingAddress: dbOrder.ShippingAddress,
		IdempotencyKey:  dbOrder.IdempotencyKey,
		Items:           items,
		CreatedAt:       dbOrder.CreatedAt,
	}, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

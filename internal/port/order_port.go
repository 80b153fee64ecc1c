package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	// InsertOrder writes the order and its items atomically. created is
	// false when an order with the same idempotency key already existed,
	// in which case that order is returned and nothing is written.
	InsertOrder(ctx context.Context, order domain.Order) (_ domain.Order, created bool, _ error)

	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)

	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	DeleteOrder(ctx context.Context, orderID int64) error
}

type CatalogRepository interface {
	// MissingProducts returns the ids from productIDs that are not in the catalog.
	MissingProducts(ctx context.Context, productIDs []int64) ([]int64, error)
}

type StatsRepository interface {
	GetStats(ctx context.Context) (domain.Stats, error)
}

type OutboxRepository interface {
	// ProcessPending hands at most limit unsent records to fn as one batch
	// and marks all of them sent once fn returns nil.
	ProcessPending(ctx context.Context, limit int, fn func([]domain.OutboxRecord) error) (int, error)
}

// OrderCache is a read-through cache in front of OrderRepository.GetOrder.
type OrderCache interface {
	Get(ctx context.Context, orderID int64) (_ domain.Order, found bool, _ error)
	Set(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, orderID int64) error
}

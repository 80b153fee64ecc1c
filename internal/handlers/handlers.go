package handlers

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
	"go.uber.org/zap"
)

// RequestIDKey is the gin context key the request id middleware writes to.
const RequestIDKey = "request_id"

// OrderService is the part of service.OrderService the HTTP layer uses.
type OrderService interface {
	SubmitOrder(ctx context.Context, order domain.Order) (_ domain.Order, created bool, _ error)
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	GetStats(ctx context.Context) (domain.Stats, error)
}

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers of the storefront order service.
type Handlers struct {
	orders   OrderService
	currency domain.Currency
	db       Pinger
	logger   *zap.Logger
}

func NewHandlers(orders OrderService, currency domain.Currency, db Pinger, logger *zap.Logger) *Handlers {
	return &Handlers{
		orders:   orders,
		currency: currency,
		db:       db,
		logger:   logger,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService submits and reads orders. It holds no state of its own;
// the pool behind the repositories is the only shared resource.
type OrderService struct {
	orders  port.OrderRepository
	catalog port.CatalogRepository
	stats   port.StatsRepository
	cache   port.OrderCache

	currency  domain.Currency
	tolerance decimal.Decimal

	metrics *metrics.Metrics
	logger  *zap.Logger
}

type Option func(*OrderService)

func WithCache(cache port.OrderCache) Option {
	return func(s *OrderService) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// WithTotalTolerance accepts totals that differ from the items total by at most d.
func WithTotalTolerance(d decimal.Decimal) Option {
	return func(s *OrderService) {
		s.tolerance = d
	}
}

func NewOrderService(
	orders port.OrderRepository,
	catalog port.CatalogRepository,
	stats port.StatsRepository,
	currency domain.Currency,
	logger *zap.Logger,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		orders:    orders,
		catalog:   catalog,
		stats:     stats,
		currency:  currency,
		tolerance: decimal.Zero,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) Currency() domain.Currency {
	return s.currency
}

// SubmitOrder validates the order, then persists it with its items as one
// unit. created is false when the idempotency key matched an earlier order.
func (s *OrderService) SubmitOrder(ctx context.Context, order domain.Order) (_ domain.Order, created bool, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSubmit(submitResult(created, err), time.Since(start))
	}()

	if err := ValidateOrder(order, s.currency, s.tolerance); err != nil {
		return domain.Order{}, false, err
	}

	missing, err := s.catalog.MissingProducts(ctx, order.ProductIDs())
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("catalog.MissingProducts: %w", err)
	}
	if len(missing) > 0 {
		return domain.Order{}, false, &domain.ValidationError{
			Field:   "items",
			Message: fmt.Sprintf("unknown product ids %v", missing),
			Err:     domain.ErrUnknownProduct,
		}
	}

	result, created, err := s.orders.InsertOrder(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			return domain.Order{}, false, &domain.ValidationError{
				Field:   "items",
				Message: "a product was removed from the catalog, please review the cart",
				Err:     err,
			}
		}
		s.logger.Error("failed to insert order",
			zap.Int("items", len(order.Items)),
			zap.Error(err))
		return domain.Order{}, false, fmt.Errorf("orders.InsertOrder: %w", err)
	}

	if created {
		s.logger.Info("order created",
			zap.Int64("order_id", result.ID),
			zap.String("total", s.currency.Format(result.Total)),
			zap.Int("items", len(result.Items)))
	} else {
		s.logger.Info("order replayed by idempotency key",
			zap.Int64("order_id", result.ID),
			zap.Stringer("idempotency_key", result.IdempotencyKey))
	}

	return result, created, nil
}

// GetOrder returns the order with its items, or domain.ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	if s.cache != nil {
		order, found, err := s.cache.Get(ctx, orderID)
		switch {
		case err != nil:
			s.metrics.CacheResult(metrics.CacheError)
			s.logger.Warn("order cache get failed", zap.Int64("order_id", orderID), zap.Error(err))
		case found:
			s.metrics.CacheResult(metrics.CacheHit)
			return order, nil
		default:
			s.metrics.CacheResult(metrics.CacheMiss)
		}
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("order cache set failed", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	return order, nil
}

// DeleteOrder removes the order with its items and evicts it from the cache.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("orders.DeleteOrder: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, orderID); err != nil {
			s.logger.Warn("order cache delete failed", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	s.logger.Info("order deleted", zap.Int64("order_id", orderID))

	return nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, &domain.ValidationError{Field: "filter", Message: err.Error(), Err: err}
	}

	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrders: %w", err)
	}

	return orders, nil
}

func (s *OrderService) GetStats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.stats.GetStats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats.GetStats: %w", err)
	}

	return stats, nil
}

func submitResult(created bool, err error) string {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return metrics.SubmitInvalid
	case err != nil:
		return metrics.SubmitFailed
	case created:
		return metrics.SubmitCreated
	default:
		return metrics.SubmitReplayed
	}
}

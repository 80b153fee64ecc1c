package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	orderKeyPrefix  = "order:"
	defaultCacheTTL = 5 * time.Minute
)

// RedisOrderCache implements port.OrderCache using Redis.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ port.OrderCache = (*RedisOrderCache)(nil)

func NewRedisOrderCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisOrderCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedOrder struct {
	ID              int64             `json:"id"`
	UserID          *int64            `json:"user_id,omitempty"`
	Total           decimal.Decimal   `json:"total"`
	Status          string            `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	IdempotencyKey  *uuid.UUID        `json:"idempotency_key,omitempty"`
	Items           []cachedOrderItem `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
}

type cachedOrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"name"`
	Quantity    int32           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (c *RedisOrderCache) Get(ctx context.Context, orderID int64) (domain.Order, bool, error) {
	data, err := c.client.Get(ctx, orderKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", zap.Int64("order_id", orderID))
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("client.Get: %w", err)
	}

	var cached cachedOrder
	if err := json.Unmarshal(data, &cached); err != nil {
		return domain.Order{}, false, fmt.Errorf("json.Unmarshal: %w", err)
	}

	order, err := fromCached(cached)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("fromCached: %w", err)
	}

	c.logger.Debug("cache hit", zap.Int64("order_id", orderID))
	return order, true, nil
}

func (c *RedisOrderCache) Set(ctx context.Context, order domain.Order) error {
	data, err := json.Marshal(toCached(order))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.client.Set(ctx, orderKey(order.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (c *RedisOrderCache) Delete(ctx context.Context, orderID int64) error {
	if err := c.client.Del(ctx, orderKey(orderID)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}
	return nil
}

func orderKey(orderID int64) string {
	return orderKeyPrefix + strconv.FormatInt(orderID, 10)
}

func toCached(order domain.Order) cachedOrder {
	return cachedOrder{
		ID:              order.ID,
		UserID:          order.UserID,
		Total:           order.Total,
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		IdempotencyKey:  order.IdempotencyKey,
		Items: lo.Map(order.Items, func(item domain.OrderItem, _ int) cachedOrderItem {
			return cachedOrderItem{
				ID:          item.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Price:       item.Price,
			}
		}),
		CreatedAt: order.CreatedAt,
	}
}

func fromCached(cached cachedOrder) (domain.Order, error) {
	status, err := domain.ToOrderStatus(cached.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("domain.ToOrderStatus[%s]: %w", cached.Status, err)
	}

	var items []domain.OrderItem
	if len(cached.Items) > 0 {
		items = lo.Map(cached.Items, func(item cachedOrderItem, _ int) domain.OrderItem {
			return domain.OrderItem{
				ID:          item.ID,
				OrderID:     cached.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Price:       item.Price,
			}
		})
	}

	return domain.Order{
		ID:              cached.ID,
		UserID:          cached.UserID,
		Total:           cached.Total,
		Status:          status,
		ShippingAddress: cached.ShippingAddress,
		IdempotencyKey:  cached.IdempotencyKey,
		Items:           items,
		CreatedAt:       cached.CreatedAt,
	}, nil
}

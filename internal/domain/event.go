package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventTypeOrderCreated = "order.created"

// OrderCreatedEvent is written to the outbox in the same transaction as
// the order it describes.
type OrderCreatedEvent struct {
	ID        uuid.UUID          `json:"id"`
	Type      string             `json:"type"`
	OrderID   int64              `json:"order_id"`
	UserID    *int64             `json:"user_id,omitempty"`
	Total     decimal.Decimal    `json:"total"`
	Items     []OrderCreatedItem `json:"items"`
	Timestamp time.Time          `json:"timestamp"`
}

type OrderCreatedItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func NewOrderCreatedEvent(order Order) OrderCreatedEvent {
	items := make([]OrderCreatedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderCreatedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	return OrderCreatedEvent{
		ID:        uuid.New(),
		Type:      EventTypeOrderCreated,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Items:     items,
		Timestamp: order.CreatedAt,
	}
}

// OutboxRecord is a pending or sent event.
type OutboxRecord struct {
	ID        int64
	EventID   uuid.UUID
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}

package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64
	UserID          *int64
	Total           decimal.Decimal
	Status          string
	ShippingAddress string
	IdempotencyKey  *uuid.UUID
	CreatedAt       time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

type Outbox struct {
	ID        int64
	EventID   uuid.UUID
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}

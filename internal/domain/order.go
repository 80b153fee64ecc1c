package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64
	UserID          *int64
	Total           decimal.Decimal
	Status          OrderStatus
	ShippingAddress string
	IdempotencyKey  *uuid.UUID
	Items           []OrderItem

	CreatedAt time.Time
}

// OrderItem is a line of an order. Price is the unit price captured at
// submission time, independent of the live catalog price.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int32
	Price       decimal.Decimal
}

// Subtotal returns quantity × price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// ItemsTotal sums the subtotals of all items.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (o Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

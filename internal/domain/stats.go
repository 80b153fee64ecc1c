package domain

import "github.com/shopspring/decimal"

// Stats backs the admin dashboard.
type Stats struct {
	Revenue      decimal.Decimal
	Orders       int64
	Products     int64
	TotalStock   int64
	RecentOrders []Order
	TopProducts  []Product
}

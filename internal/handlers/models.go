package handlers

import (
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items"`
	Total           *decimal.Decimal         `json:"total"`
	ShippingAddress string                   `json:"shipping_address"`
}

type createOrderItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type orderResponse struct {
	ID              int64     `json:"id"`
	UserID          *int64    `json:"user_id"`
	Total           string    `json:"total"`
	Status          string    `json:"status"`
	ShippingAddress string    `json:"shipping_address"`
	CreatedAt       time.Time `json:"created_at"`
}

type orderWithItemsResponse struct {
	orderResponse
	Items []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
	Name      string `json:"name"`
}

type statsResponse struct {
	Stats        statsTotals          `json:"stats"`
	RecentOrders []orderResponse      `json:"recentOrders"`
	TopProducts  []topProductResponse `json:"topProducts"`
}

type statsTotals struct {
	Revenue    string `json:"revenue"`
	Orders     int64  `json:"orders"`
	Products   int64  `json:"products"`
	TotalStock int64  `json:"totalStock"`
}

type topProductResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Stock        int32  `json:"stock"`
	CategoryName string `json:"category_name"`
}

// outOfRangeAmount returns the field of the first amount that fails
// domain.AmountInBounds.
func (r createOrderRequest) outOfRangeAmount() (string, bool) {
	for i, item := range r.Items {
		if !domain.AmountInBounds(item.Price) {
			return fmt.Sprintf("items[%d].price", i), true
		}
	}
	if r.Total != nil && !domain.AmountInBounds(*r.Total) {
		return "total", true
	}
	return "", false
}

func (r createOrderRequest) toDomain() domain.Order {
	order := domain.Order{
		ShippingAddress: r.ShippingAddress,
		Items: lo.Map(r.Items, func(item createOrderItemRequest, _ int) domain.OrderItem {
			return domain.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
		}),
	}
	if r.Total != nil {
		order.Total = *r.Total
	}
	return order
}

func mapOrderToResponse(order domain.Order, cur domain.Currency) orderResponse {
	return orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Total:           cur.Format(order.Total),
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
	}
}

func mapOrderWithItemsToResponse(order domain.Order, cur domain.Currency) orderWithItemsResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     cur.Format(item.Price),
			Name:      item.ProductName,
		})
	}

	return orderWithItemsResponse{
		orderResponse: mapOrderToResponse(order, cur),
		Items:         items,
	}
}

func mapStatsToResponse(stats domain.Stats, cur domain.Currency) statsResponse {
	recent := make([]orderResponse, 0, len(stats.RecentOrders))
	for _, order := range stats.RecentOrders {
		recent = append(recent, mapOrderToResponse(order, cur))
	}

	top := make([]topProductResponse, 0, len(stats.TopProducts))
	for _, p := range stats.TopProducts {
		top = append(top, topProductResponse{
			ID:           p.ID,
			Name:         p.Name,
			Stock:        p.Stock,
			CategoryName: p.CategoryName,
		})
	}

	return statsResponse{
		Stats: statsTotals{
			Revenue:    cur.Format(stats.Revenue),
			Orders:     stats.Orders,
			Products:   stats.Products,
			TotalStock: stats.TotalStock,
		},
		RecentOrders: recent,
		TopProducts:  top,
	}
}

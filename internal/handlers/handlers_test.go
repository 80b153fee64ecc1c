package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/handlers"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const jwtSecret = "handlers-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) SubmitOrder(ctx context.Context, order domain.Order) (domain.Order, bool, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Bool(1), args.Error(2)
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *mockOrderService) GetStats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func newRouter(t *testing.T, svc handlers.OrderService, db handlers.Pinger) *gin.Engine {
	t.Helper()

	if db == nil {
		db = pingerFunc(func(context.Context) error { return nil })
	}

	h := handlers.NewHandlers(svc, domain.MustParseCurrency("USD"), db, zap.NewNop())

	r := gin.New()
	r.Use(auth.Authenticate(jwtSecret))
	r.GET("/ready", h.Ready)

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.DELETE("/orders/:id", h.DeleteOrder)
	api.GET("/stats", h.GetStats)

	return r
}

func do(r *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var createdAt = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func storedOrder() domain.Order {
	return domain.Order{
		ID:              7,
		Total:           decimal.RequireFromString("599.98"),
		Status:          domain.OrderStatusPending,
		ShippingAddress: "X",
		CreatedAt:       createdAt,
		Items: []domain.OrderItem{
			{
				ID:          11,
				OrderID:     7,
				ProductID:   1,
				ProductName: "Laptop",
				Quantity:    2,
				Price:       decimal.RequireFromString("299.99"),
			},
		},
	}
}

const createBody = `{"items":[{"product_id":1,"quantity":2,"price":299.99}],"total":599.98,"shipping_address":"X"}`

func TestCreateOrder_Created(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	svc.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
		return len(o.Items) == 1 &&
			o.Items[0].ProductID == 1 &&
			o.Items[0].Quantity == 2 &&
			o.Items[0].Price.Equal(decimal.RequireFromString("299.99")) &&
			o.Total.Equal(decimal.RequireFromString("599.98")) &&
			o.ShippingAddress == "X" &&
			o.UserID == nil &&
			o.IdempotencyKey == nil
	})).Return(storedOrder(), true, nil)

	w := do(newRouter(t, svc, nil), http.MethodPost, "/api/orders", createBody, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"id": 7,
		"user_id": null,
		"total": "599.98",
		"status": "pending",
		"shipping_address": "X",
		"created_at": "2025-03-14T10:00:00Z"
	}`, w.Body.String())
}

func TestCreateOrder_IdempotentReplay(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	key := uuid.New()
	stored := storedOrder()
	stored.IdempotencyKey = &key

	svc.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
		return o.IdempotencyKey != nil && *o.IdempotencyKey == key
	})).Return(stored, false, nil)

	w := do(newRouter(t, svc, nil), http.MethodPost, "/api/orders", createBody,
		map[string]string{handlers.IdempotencyKeyHeader: key.String()})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
}

func TestCreateOrder_AuthenticatedUser(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	token, err := auth.Sign(jwtSecret, auth.Claims{ID: 5, Role: "customer"})
	require.NoError(t, err)

	stored := storedOrder()
	stored.UserID = lo.ToPtr(int64(5))

	svc.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
		return o.UserID != nil && *o.UserID == 5
	})).Return(stored, true, nil)

	w := do(newRouter(t, svc, nil), http.MethodPost, "/api/orders", createBody,
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":5`)
}

func TestCreateOrder_BadRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		headers   map[string]string
		wantError string
	}{
		{
			name:      "malformed json",
			body:      `{"items":`,
			wantError: "invalid request body",
		},
		{
			name:      "missing total",
			body:      `{"items":[{"product_id":1,"quantity":1,"price":"1.00"}]}`,
			wantError: "total: total is required",
		},
		{
			name:      "price with a huge negative exponent",
			body:      `{"items":[{"product_id":1,"quantity":1,"price":"1e-2000000000"}],"total":"1.00"}`,
			wantError: `{"error":"items[0].price: is out of range","field":"items[0].price"}`,
		},
		{
			name:      "total with a huge positive exponent",
			body:      `{"items":[{"product_id":1,"quantity":1,"price":"1.00"}],"total":1e999999999}`,
			wantError: `{"error":"total: is out of range","field":"total"}`,
		},
		{
			name:      "idempotency key is not a uuid",
			body:      createBody,
			headers:   map[string]string{handlers.IdempotencyKeyHeader: "abc"},
			wantError: "Idempotency-Key: must be a UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)
			defer svc.AssertExpectations(t)

			w := do(newRouter(t, svc, nil), http.MethodPost, "/api/orders", tt.body, tt.headers)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantError)
		})
	}
}

func TestCreateOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name: "empty items",
			err: &domain.ValidationError{
				Field:   "items",
				Message: "at least one item is required",
				Err:     domain.ErrEmptyOrder,
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"items: at least one item is required","field":"items"}`,
		},
		{
			name:       "storage failure",
			err:        errors.New("orders.InsertOrder: withTx: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"request timed out, please retry"}`,
		},
		{
			name:       "client went away",
			err:        fmt.Errorf("orders.InsertOrder: withTx: %w", context.Canceled),
			wantStatus: 499,
			wantBody:   `{"error":"request cancelled"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)
			defer svc.AssertExpectations(t)

			svc.On("SubmitOrder", mock.Anything, mock.Anything).Return(domain.Order{}, false, tt.err)

			w := do(newRouter(t, svc, nil), http.MethodPost, "/api/orders", createBody, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestCreateOrder_ClientGoneIsNotAnError(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	svc.On("SubmitOrder", mock.Anything, mock.Anything).Return(domain.Order{}, false, context.Canceled)

	core, logs := observer.New(zap.InfoLevel)
	h := handlers.NewHandlers(svc, domain.MustParseCurrency("USD"), pingerFunc(func(context.Context) error { return nil }), zap.New(core))

	r := gin.New()
	r.POST("/api/orders", h.CreateOrder)

	w := do(r, http.MethodPost, "/api/orders", createBody, nil)
	assert.Equal(t, 499, w.Code)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestGetOrder(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	svc.On("GetOrder", mock.Anything, int64(7)).Return(storedOrder(), nil)

	w := do(newRouter(t, svc, nil), http.MethodGet, "/api/orders/7", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id": 7,
		"user_id": null,
		"total": "599.98",
		"status": "pending",
		"shipping_address": "X",
		"created_at": "2025-03-14T10:00:00Z",
		"items": [
			{"id": 11, "order_id": 7, "product_id": 1, "quantity": 2, "price": "299.99", "name": "Laptop"}
		]
	}`, w.Body.String())
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	svc.On("GetOrder", mock.Anything, int64(999999)).
		Return(domain.Order{}, fmt.Errorf("orders.GetOrder: %w", domain.ErrNotFound))

	w := do(newRouter(t, svc, nil), http.MethodGet, "/api/orders/999999", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"order not found"}`, w.Body.String())
}

func TestGetOrder_InvalidID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			svc := new(mockOrderService)
			defer svc.AssertExpectations(t)

			w := do(newRouter(t, svc, nil), http.MethodGet, "/api/orders/"+id, "", nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDeleteOrder(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantCall   bool
		wantStatus int
	}{
		{
			name:       "deleted",
			target:     "/api/orders/7",
			wantCall:   true,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "not found",
			target:     "/api/orders/7",
			err:        fmt.Errorf("orders.DeleteOrder: %w", domain.ErrNotFound),
			wantCall:   true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			target:     "/api/orders/abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)
			defer svc.AssertExpectations(t)

			if tt.wantCall {
				svc.On("DeleteOrder", mock.Anything, int64(7)).Return(tt.err)
			}

			w := do(newRouter(t, svc, nil), http.MethodDelete, tt.target, "", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListOrders(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	want := domain.OrderFilter{
		Statuses:  []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusCompleted},
		CreatedAt: &domain.TimeRange{After: &after},
		Limit:     5,
		Offset:    10,
	}

	order := storedOrder()
	order.Items = nil
	svc.On("ListOrders", mock.Anything, want).Return([]domain.Order{order}, nil)

	w := do(newRouter(t, svc, nil), http.MethodGet,
		"/api/orders?status=pending,completed&created_after=2025-01-01T00:00:00Z&limit=5&offset=10", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"id": 7,
		"user_id": null,
		"total": "599.98",
		"status": "pending",
		"shipping_address": "X",
		"created_at": "2025-03-14T10:00:00Z"
	}]`, w.Body.String())
}

func TestListOrders_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "unknown status", query: "status=shipped", field: "status"},
		{name: "bad time", query: "created_before=yesterday", field: "created_before"},
		{name: "bad limit", query: "limit=ten", field: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)
			defer svc.AssertExpectations(t)

			w := do(newRouter(t, svc, nil), http.MethodGet, "/api/orders?"+tt.query, "", nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"field":"`+tt.field+`"`)
		})
	}
}

func TestGetStats(t *testing.T) {
	svc := new(mockOrderService)
	defer svc.AssertExpectations(t)

	order := storedOrder()
	order.Items = nil
	svc.On("GetStats", mock.Anything).Return(domain.Stats{
		Revenue:      decimal.RequireFromString("1234.5"),
		Orders:       3,
		Products:     12,
		TotalStock:   340,
		RecentOrders: []domain.Order{order},
		TopProducts: []domain.Product{
			{ID: 2, Name: "Headphones", Stock: 100, CategoryName: "Electronics"},
		},
	}, nil)

	w := do(newRouter(t, svc, nil), http.MethodGet, "/api/stats", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"stats": {"revenue": "1234.50", "orders": 3, "products": 12, "totalStock": 340},
		"recentOrders": [{
			"id": 7,
			"user_id": null,
			"total": "599.98",
			"status": "pending",
			"shipping_address": "X",
			"created_at": "2025-03-14T10:00:00Z"
		}],
		"topProducts": [{"id": 2, "name": "Headphones", "stock": 100, "category_name": "Electronics"}]
	}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(newRouter(t, new(mockOrderService), nil), http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"storefront-orders"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "database reachable", wantStatus: http.StatusOK},
		{name: "database down", pingErr: errors.New("dial tcp: connection refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := pingerFunc(func(context.Context) error { return tt.pingErr })

			w := do(newRouter(t, new(mockOrderService), db), http.MethodGet, "/ready", "", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

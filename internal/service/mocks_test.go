package service_test

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, bool, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Bool(1), args.Error(2)
}

func (m *mockOrderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) MissingProducts(ctx context.Context, productIDs []int64) ([]int64, error) {
	args := m.Called(ctx, productIDs)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) GetStats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

type mockOrderCache struct {
	mock.Mock
}

func (m *mockOrderCache) Get(ctx context.Context, orderID int64) (domain.Order, bool, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.Order), args.Bool(1), args.Error(2)
}

func (m *mockOrderCache) Set(ctx context.Context, order domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderCache) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

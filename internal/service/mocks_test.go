package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
	"github.com/infinirdc/Opulence/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.LevelError,
		Format: "text",
		Output: "stderr",
	})
}

func testMetrics() *metrics.Metrics {
	return metrics.New("test")
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateConsumingStock(ctx context.Context, order *models.Order, consumption []models.StockConsumption) error {
	args := m.Called(ctx, order, consumption)
	return args.Error(0)
}

func (m *mockOrderRepo) GetAll(ctx context.Context) ([]*models.Order, error) {
	args := m.Called(ctx)
	if orders := args.Get(0); orders != nil {
		return orders.([]*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, id, from, to)
	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMenuRepo struct {
	mock.Mock
}

func (m *mockMenuRepo) GetAll(ctx context.Context) ([]*models.Dish, error) {
	args := m.Called(ctx)
	if dishes := args.Get(0); dishes != nil {
		return dishes.([]*models.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMenuRepo) GetAvailable(ctx context.Context) ([]*models.Dish, error) {
	args := m.Called(ctx)
	if dishes := args.Get(0); dishes != nil {
		return dishes.([]*models.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMenuRepo) GetByID(ctx context.Context, id string) (*models.Dish, error) {
	args := m.Called(ctx, id)
	if dish := args.Get(0); dish != nil {
		return dish.(*models.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMenuRepo) Create(ctx context.Context, dish *models.Dish) error {
	args := m.Called(ctx, dish)
	return args.Error(0)
}

func (m *mockMenuRepo) Update(ctx context.Context, id string, dish *models.Dish) error {
	args := m.Called(ctx, id, dish)
	return args.Error(0)
}

func (m *mockMenuRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

func (m *mockMenuRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockInventoryRepo struct {
	mock.Mock
}

func (m *mockInventoryRepo) GetAll(ctx context.Context) ([]*models.Ingredient, error) {
	args := m.Called(ctx)
	if items := args.Get(0); items != nil {
		return items.([]*models.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventoryRepo) GetByID(ctx context.Context, id string) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	if item := args.Get(0); item != nil {
		return item.(*models.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventoryRepo) Add(ctx context.Context, item *models.Ingredient) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockInventoryRepo) Update(ctx context.Context, id string, item *models.Ingredient) error {
	args := m.Called(ctx, id, item)
	return args.Error(0)
}

func (m *mockInventoryRepo) AdjustStock(ctx context.Context, id string, delta float64) (float64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockInventoryRepo) GetLowStock(ctx context.Context) ([]*models.Ingredient, error) {
	args := m.Called(ctx)
	if items := args.Get(0); items != nil {
		return items.([]*models.Ingredient), args.Error(1)
	}
	return nil, args.Error(1)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/infinirdc/Opulence/models"
)

func newTestDashboardService(inventoryRepo *mockInventoryRepo, menuRepo *mockMenuRepo, orderRepo *mockOrderRepo) *DashboardService {
	return NewDashboardService(inventoryRepo, menuRepo, orderRepo, testLogger())
}

func TestGetDashboardAggregates(t *testing.T) {
	inventoryRepo := new(mockInventoryRepo)
	menuRepo := new(mockMenuRepo)
	orderRepo := new(mockOrderRepo)
	svc := newTestDashboardService(inventoryRepo, menuRepo, orderRepo)

	inventoryRepo.On("GetAll", mock.Anything).Return([]*models.Ingredient{
		{ID: "i1", Name: "Flour", Stock: 2, AlertThreshold: 10},
		{ID: "i2", Name: "Sugar", Stock: 50, AlertThreshold: 10},
	}, nil)
	menuRepo.On("GetAll", mock.Anything).Return([]*models.Dish{
		{ID: "d1", Name: "Cake"},
	}, nil)
	orderRepo.On("GetAll", mock.Anything).Return([]*models.Order{
		{
			ID: "o1", Status: models.StatusDelivered, Total: 20,
			Items: []models.OrderItem{{DishID: "d1", DishName: "Cake", Quantity: 2, PriceAtTime: 10}},
		},
		{
			ID: "o2", Status: models.StatusReceived, Total: 10,
			Items: []models.OrderItem{{DishID: "d1", DishName: "Cake", Quantity: 1, PriceAtTime: 10}},
		},
		{
			ID: "o3", Status: models.StatusCancelled, Total: 30,
			Items: []models.OrderItem{{DishID: "d1", DishName: "Cake", Quantity: 3, PriceAtTime: 10}},
		},
	}, nil)

	dashboard, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Len(t, dashboard.Ingredients, 2)
	require.Len(t, dashboard.LowStock, 1)
	assert.Equal(t, "Flour", dashboard.LowStock[0].Name)
	assert.Len(t, dashboard.Dishes, 1)
	assert.Equal(t, 3, dashboard.OrderCount)

	// Cancelled orders count for neither revenue nor popularity.
	assert.InDelta(t, 30, dashboard.TotalRevenue, 0.001)
	require.Len(t, dashboard.PopularDishes, 1)
	assert.Equal(t, "Cake", dashboard.PopularDishes[0].DishName)
	assert.Equal(t, 3, dashboard.PopularDishes[0].OrderCount)
	assert.InDelta(t, 30, dashboard.PopularDishes[0].Revenue, 0.001)
}

func TestGetDashboardRanksPopularDishes(t *testing.T) {
	inventoryRepo := new(mockInventoryRepo)
	menuRepo := new(mockMenuRepo)
	orderRepo := new(mockOrderRepo)
	svc := newTestDashboardService(inventoryRepo, menuRepo, orderRepo)

	inventoryRepo.On("GetAll", mock.Anything).Return([]*models.Ingredient{}, nil)
	menuRepo.On("GetAll", mock.Anything).Return([]*models.Dish{}, nil)
	orderRepo.On("GetAll", mock.Anything).Return([]*models.Order{
		{
			ID: "o1", Status: models.StatusDelivered, Total: 45,
			Items: []models.OrderItem{
				{DishID: "d1", DishName: "Soup", Quantity: 1, PriceAtTime: 5},
				{DishID: "d2", DishName: "Steak", Quantity: 2, PriceAtTime: 20},
			},
		},
		{
			ID: "o2", Status: models.StatusReady, Total: 40,
			Items: []models.OrderItem{
				{DishID: "d2", DishName: "Steak", Quantity: 2, PriceAtTime: 20},
			},
		},
	}, nil)

	dashboard, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	require.Len(t, dashboard.PopularDishes, 2)
	assert.Equal(t, "Steak", dashboard.PopularDishes[0].DishName)
	assert.Equal(t, 4, dashboard.PopularDishes[0].OrderCount)
	assert.Equal(t, "Soup", dashboard.PopularDishes[1].DishName)
}

func TestGetDashboardDegradesPerSection(t *testing.T) {
	inventoryRepo := new(mockInventoryRepo)
	menuRepo := new(mockMenuRepo)
	orderRepo := new(mockOrderRepo)
	svc := newTestDashboardService(inventoryRepo, menuRepo, orderRepo)

	inventoryRepo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused"))
	menuRepo.On("GetAll", mock.Anything).Return([]*models.Dish{{ID: "d1", Name: "Cake"}}, nil)
	orderRepo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused"))

	dashboard, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Empty(t, dashboard.Ingredients)
	assert.Empty(t, dashboard.LowStock)
	assert.Empty(t, dashboard.Orders)
	assert.Zero(t, dashboard.TotalRevenue)
	assert.Len(t, dashboard.Dishes, 1)
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/infinirdc/Opulence/models"
)

func newTestOrderService(orderRepo *mockOrderRepo, menuRepo *mockMenuRepo, strict bool) *OrderService {
	return NewOrderService(
		orderRepo,
		menuRepo,
		OrderServiceConfig{StrictStatusFlow: strict},
		testMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		testLogger(),
	)
}

func testDish(id, name string, price float64, ingredients ...models.DishIngredient) *models.Dish {
	return &models.Dish{
		ID:          id,
		Name:        name,
		Price:       price,
		Available:   true,
		Ingredients: ingredients,
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		req  PlaceOrderRequest
	}{
		{
			name: "missing customer name",
			req: PlaceOrderRequest{
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 1}},
			},
		},
		{
			name: "blank customer name",
			req: PlaceOrderRequest{
				CustomerName:  "   ",
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 1}},
			},
		},
		{
			name: "missing customer phone",
			req: PlaceOrderRequest{
				CustomerName: "Ada",
				Items:        []PlaceOrderItem{{DishID: "d1", Quantity: 1}},
			},
		},
		{
			name: "empty items",
			req: PlaceOrderRequest{
				CustomerName:  "Ada",
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{},
			},
		},
		{
			name: "zero quantity",
			req: PlaceOrderRequest{
				CustomerName:  "Ada",
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 0}},
			},
		},
		{
			name: "negative quantity",
			req: PlaceOrderRequest{
				CustomerName:  "Ada",
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{{DishID: "d1", Quantity: -2}},
			},
		},
		{
			name: "missing dish ID",
			req: PlaceOrderRequest{
				CustomerName:  "Ada",
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{{Quantity: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mockOrderRepo)
			menuRepo := new(mockMenuRepo)
			svc := newTestOrderService(orderRepo, menuRepo, true)

			order, err := svc.PlaceOrder(context.Background(), tt.req)

			require.Error(t, err)
			assert.Nil(t, order)
			var validationErr *models.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			orderRepo.AssertNotCalled(t, "CreateConsumingStock", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPlaceOrderMissingDishRejectsWholeOrder(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	menuRepo.On("GetByID", mock.Anything, "d1").Return(testDish("d1", "Ratatouille", 12.50), nil)
	menuRepo.On("GetByID", mock.Anything, "ghost").
		Return(nil, &models.NotFoundError{Resource: "dish", ID: "ghost"})

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "555-0100",
		Items: []PlaceOrderItem{
			{DishID: "d1", Quantity: 1},
			{DishID: "ghost", Quantity: 1},
		},
	})

	require.Error(t, err)
	assert.Nil(t, order)
	var notFoundErr *models.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "ghost", notFoundErr.ID)
	orderRepo.AssertNotCalled(t, "CreateConsumingStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderUnavailableDishRejected(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	hidden := testDish("d1", "Secret Special", 20)
	hidden.Available = false
	menuRepo.On("GetByID", mock.Anything, "d1").Return(hidden, nil)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "555-0100",
		Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 1}},
	})

	require.Error(t, err)
	assert.Nil(t, order)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	orderRepo.AssertNotCalled(t, "CreateConsumingStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderComputesTotalAndConsumption(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	// Both dishes share the tomato ingredient, so the order must aggregate
	// demand into a single decrement.
	menuRepo.On("GetByID", mock.Anything, "d1").Return(testDish("d1", "Bruschetta", 8.00,
		models.DishIngredient{IngredientID: "tomato", Quantity: 2},
		models.DishIngredient{IngredientID: "bread", Quantity: 1},
	), nil)
	menuRepo.On("GetByID", mock.Anything, "d2").Return(testDish("d2", "Tomato Soup", 6.50,
		models.DishIngredient{IngredientID: "tomato", Quantity: 3},
	), nil)

	var captured []models.StockConsumption
	orderRepo.On("CreateConsumingStock", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).([]models.StockConsumption)
		}).
		Return(nil)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "555-0100",
		Items: []PlaceOrderItem{
			{DishID: "d1", Quantity: 1},
			{DishID: "d2", Quantity: 1},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusReceived, order.Status)
	assert.InDelta(t, 14.50, order.Total, 0.001)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Bruschetta", order.Items[0].DishName)
	assert.InDelta(t, 8.00, order.Items[0].PriceAtTime, 0.001)

	require.Len(t, captured, 2)
	byIngredient := map[string]float64{}
	for _, c := range captured {
		byIngredient[c.IngredientID] = c.Quantity
	}
	assert.InDelta(t, 5, byIngredient["tomato"], 0.001)
	assert.InDelta(t, 1, byIngredient["bread"], 0.001)
}

func TestPlaceOrderQuantityMultipliesConsumption(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	menuRepo.On("GetByID", mock.Anything, "d1").Return(testDish("d1", "Omelette", 5.00,
		models.DishIngredient{IngredientID: "egg", Quantity: 3},
	), nil)

	var captured []models.StockConsumption
	orderRepo.On("CreateConsumingStock", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).([]models.StockConsumption)
		}).
		Return(nil)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "555-0100",
		Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 4}},
	})

	require.NoError(t, err)
	assert.InDelta(t, 20.00, order.Total, 0.001)
	require.Len(t, captured, 1)
	assert.InDelta(t, 12, captured[0].Quantity, 0.001)
}

func TestPlaceOrderInsufficientStockPropagates(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	menuRepo.On("GetByID", mock.Anything, "d1").Return(testDish("d1", "Steak", 30.00,
		models.DishIngredient{IngredientID: "beef", Quantity: 1},
	), nil)
	orderRepo.On("CreateConsumingStock", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.InsufficientStockError{
			IngredientID: "beef", IngredientName: "beef", Required: 1, Available: 0,
		})

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:  "Ada",
		CustomerPhone: "555-0100",
		Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 1}},
	})

	require.Error(t, err)
	assert.Nil(t, order)
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "beef", stockErr.IngredientID)
}

// guardedLedger is an in-memory stand-in for the transactional repository:
// each placement decrements all required ingredients under one lock, exactly
// like the database serializes conditional decrements on the row.
type guardedLedger struct {
	mu     sync.Mutex
	stock  map[string]float64
	orders []*models.Order
}

func (l *guardedLedger) CreateConsumingStock(ctx context.Context, order *models.Order, consumption []models.StockConsumption) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range consumption {
		if l.stock[c.IngredientID] < c.Quantity {
			return &models.InsufficientStockError{
				IngredientID: c.IngredientID,
				Required:     c.Quantity,
				Available:    l.stock[c.IngredientID],
			}
		}
	}
	for _, c := range consumption {
		l.stock[c.IngredientID] -= c.Quantity
	}
	l.orders = append(l.orders, order)
	return nil
}

func (l *guardedLedger) GetAll(ctx context.Context) ([]*models.Order, error) { return l.orders, nil }
func (l *guardedLedger) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return nil, &models.NotFoundError{Resource: "order", ID: id}
}
func (l *guardedLedger) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	return nil, &models.NotFoundError{Resource: "order", ID: id}
}

func TestPlaceOrderConcurrentNeverOversells(t *testing.T) {
	menuRepo := new(mockMenuRepo)
	menuRepo.On("GetByID", mock.Anything, "d1").Return(testDish("d1", "Paella", 15.00,
		models.DishIngredient{IngredientID: "rice", Quantity: 2},
	), nil)

	// 10 units of rice, each order needs 2: at most 5 of the 20 concurrent
	// orders can succeed.
	ledger := &guardedLedger{stock: map[string]float64{"rice": 10}}
	svc := NewOrderService(
		ledger,
		menuRepo,
		OrderServiceConfig{StrictStatusFlow: true},
		testMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		testLogger(),
	)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), PlaceOrderRequest{
				CustomerName:  "Ada",
				CustomerPhone: "555-0100",
				Items:         []PlaceOrderItem{{DishID: "d1", Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var stockErr *models.InsufficientStockError
			assert.ErrorAs(t, err, &stockErr)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.GreaterOrEqual(t, ledger.stock["rice"], 0.0)
	assert.Len(t, ledger.orders, succeeded)
}

func TestUpdateOrderStatusStrictFlow(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{"forward step", models.StatusReceived, models.StatusInPreparation, true},
		{"forward skip", models.StatusReceived, models.StatusReady, true},
		{"backwards", models.StatusReady, models.StatusInPreparation, false},
		{"same status", models.StatusReady, models.StatusReady, false},
		{"cancel from received", models.StatusReceived, models.StatusCancelled, true},
		{"cancel from ready", models.StatusReady, models.StatusCancelled, true},
		{"delivered is frozen", models.StatusDelivered, models.StatusReceived, false},
		{"cancelled is frozen", models.StatusCancelled, models.StatusReceived, false},
		{"no cancel after delivery", models.StatusDelivered, models.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mockOrderRepo)
			menuRepo := new(mockMenuRepo)
			svc := newTestOrderService(orderRepo, menuRepo, true)

			current := &models.Order{ID: "o1", Status: tt.from}
			orderRepo.On("GetByID", mock.Anything, "o1").Return(current, nil)

			if tt.allowed {
				updated := &models.Order{ID: "o1", Status: tt.to}
				orderRepo.On("UpdateStatus", mock.Anything, "o1", tt.from, tt.to).Return(updated, nil)
			}

			order, err := svc.UpdateOrderStatus(context.Background(), "o1", tt.to)

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, order.Status)
			} else {
				require.Error(t, err)
				var validationErr *models.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUpdateOrderStatusPermissiveFlow(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, false)

	current := &models.Order{ID: "o1", Status: models.StatusReady}
	orderRepo.On("GetByID", mock.Anything, "o1").Return(current, nil)
	updated := &models.Order{ID: "o1", Status: models.StatusInPreparation}
	orderRepo.On("UpdateStatus", mock.Anything, "o1", models.StatusReady, models.StatusInPreparation).
		Return(updated, nil)

	order, err := svc.UpdateOrderStatus(context.Background(), "o1", models.StatusInPreparation)

	require.NoError(t, err)
	assert.Equal(t, models.StatusInPreparation, order.Status)
}

func TestUpdateOrderStatusPermissiveStillFreezesTerminal(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, false)

	current := &models.Order{ID: "o1", Status: models.StatusDelivered}
	orderRepo.On("GetByID", mock.Anything, "o1").Return(current, nil)

	_, err := svc.UpdateOrderStatus(context.Background(), "o1", models.StatusReceived)

	require.Error(t, err)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateOrderStatusInvalidStatus(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	_, err := svc.UpdateOrderStatus(context.Background(), "o1", "teleported")

	require.Error(t, err)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	orderRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	menuRepo := new(mockMenuRepo)
	svc := newTestOrderService(orderRepo, menuRepo, true)

	orderRepo.On("GetByID", mock.Anything, "ghost").
		Return(nil, &models.NotFoundError{Resource: "order", ID: "ghost"})

	_, err := svc.UpdateOrderStatus(context.Background(), "ghost", models.StatusReady)

	require.Error(t, err)
	var notFoundErr *models.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

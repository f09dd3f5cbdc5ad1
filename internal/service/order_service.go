package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/infinirdc/Opulence/internal/repositories"
	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
	"github.com/infinirdc/Opulence/pkg/metrics"
)

// PlaceOrderRequest is the finalized cart submitted at checkout. The total is
// never part of the request; it is computed from the catalog.
type PlaceOrderRequest struct {
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []PlaceOrderItem `json:"items"`
}

type PlaceOrderItem struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

// OrderServiceInterface drives order intake and the fulfillment workflow.
type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}

// OrderServiceConfig holds the product decisions that are configuration
// rather than code.
type OrderServiceConfig struct {
	// StrictStatusFlow requires fulfillment transitions to move forward
	// (received -> in_preparation -> ready -> delivered). When false, any
	// overwrite of a non-terminal order is accepted.
	StrictStatusFlow bool
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	menuRepo  repositories.MenuRepositoryInterface
	config    OrderServiceConfig
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *logger.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	menuRepo repositories.MenuRepositoryInterface,
	config OrderServiceConfig,
	m *metrics.Metrics,
	tracer trace.Tracer,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		config:    config,
		metrics:   m,
		tracer:    tracer,
		logger:    log.WithComponent("order_service"),
	}
}

// PlaceOrder validates the cart, resolves every dish against the catalog,
// computes the total and the aggregate ingredient consumption, and applies
// everything against the stock ledger in one atomic unit. On any rejection no
// stock is mutated and no order record exists.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "place_order")
	defer span.End()

	s.logger.Info("Placing order", "customer", req.CustomerName, "items", len(req.Items))

	if err := s.validatePlaceOrder(req); err != nil {
		s.logger.Warn("Order rejected: invalid request", "error", err)
		s.recordRejection(span, err)
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Status:        models.StatusReceived,
		Items:         make([]models.OrderItem, 0, len(req.Items)),
	}

	// Aggregate consumption per ingredient across all line items. The same
	// ingredient required by several dishes sums its demand, so a single
	// guarded decrement covers the whole order.
	consumptionIndex := make(map[string]int)
	consumption := []models.StockConsumption{}

	for _, item := range req.Items {
		dish, err := s.menuRepo.GetByID(ctx, item.DishID)
		if err != nil {
			// A missing dish rejects the whole order: fail closed rather
			// than silently skipping the line.
			s.logger.Warn("Order rejected: dish lookup failed", "dish_id", item.DishID, "error", err)
			s.recordRejection(span, err)
			return nil, err
		}
		if !dish.Available {
			err := models.NewValidationError("dish %s is not available", dish.Name)
			s.logger.Warn("Order rejected: dish unavailable", "dish_id", dish.ID)
			s.recordRejection(span, err)
			return nil, err
		}

		order.Total += dish.Price * float64(item.Quantity)
		order.Items = append(order.Items, models.OrderItem{
			DishID:      dish.ID,
			DishName:    dish.Name,
			Quantity:    item.Quantity,
			PriceAtTime: dish.Price,
		})

		for _, ingredient := range dish.Ingredients {
			required := ingredient.Quantity * float64(item.Quantity)
			if required == 0 {
				continue
			}
			if idx, ok := consumptionIndex[ingredient.IngredientID]; ok {
				consumption[idx].Quantity += required
			} else {
				consumptionIndex[ingredient.IngredientID] = len(consumption)
				consumption = append(consumption, models.StockConsumption{
					IngredientID: ingredient.IngredientID,
					Quantity:     required,
				})
			}
		}
	}

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.Float64("order_total", order.Total),
		attribute.Int("ingredient_count", len(consumption)),
	)

	if err := s.orderRepo.CreateConsumingStock(ctx, order, consumption); err != nil {
		s.logger.Warn("Order rejected: stock consumption failed", "order_id", order.ID, "error", err)
		s.recordRejection(span, err)
		return nil, err
	}

	s.metrics.OrderPlaced()
	s.logger.Info("Order placed", "order_id", order.ID, "total", order.Total)
	return order, nil
}

// GetAllOrders retrieves all orders, newest first
func (s *OrderService) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	s.logger.Info("Fetching all orders from repository")

	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch orders from repository", "error", err)
		return nil, err
	}

	s.logger.Info("Fetched orders", "count", len(orders))
	return orders, nil
}

// GetOrderByID retrieves a specific order by ID
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if id == "" {
		return nil, models.NewValidationError("order ID is required")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("Order not found", "order_id", id, "error", err)
		return nil, err
	}

	return order, nil
}

// UpdateOrderStatus advances an order through the fulfillment workflow.
// Cancellation is accepted from any non-terminal status under both policies;
// terminal orders are frozen.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "update_order_status")
	defer span.End()

	s.logger.Info("Updating order status", "order_id", id, "status", status)

	if id == "" {
		return nil, models.NewValidationError("order ID is required")
	}
	if !status.Valid() {
		return nil, models.NewValidationError("invalid status: %s", status)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(order.Status, status); err != nil {
		s.logger.Warn("Status transition rejected",
			"order_id", id, "from", order.Status, "to", status, "error", err)
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, status)
	if err != nil {
		s.logger.Error("Failed to update order status", "order_id", id, "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order_id", id),
		attribute.String("from_status", string(order.Status)),
		attribute.String("to_status", string(status)),
	)

	s.logger.Info("Order status updated", "order_id", id, "from", order.Status, "to", status)
	return updated, nil
}

// checkTransition applies the configured transition policy.
func (s *OrderService) checkTransition(from, to models.OrderStatus) error {
	if from == to {
		return models.NewValidationError("order is already in status %s", to)
	}
	if from.Terminal() {
		return models.NewValidationError("order in status %s cannot change status", from)
	}
	if to == models.StatusCancelled {
		return nil
	}
	if s.config.StrictStatusFlow && to.Rank() <= from.Rank() {
		return models.NewValidationError("cannot move order backwards from %s to %s", from, to)
	}
	return nil
}

func (s *OrderService) validatePlaceOrder(req PlaceOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return models.NewValidationError("customer name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return models.NewValidationError("customer phone is required")
	}
	if len(req.Items) == 0 {
		return models.NewValidationError("order must have at least one item")
	}
	for i, item := range req.Items {
		if item.DishID == "" {
			return models.NewValidationError("item %d: dish ID is required", i+1)
		}
		if item.Quantity < 1 {
			return models.NewValidationError("item %d: quantity must be at least 1", i+1)
		}
	}
	return nil
}

// recordRejection classifies the rejection for metrics and tracing.
func (s *OrderService) recordRejection(span trace.Span, err error) {
	span.RecordError(err)
	s.metrics.OrderRejected(rejectionReason(err))
}

func rejectionReason(err error) string {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var stockErr *models.InsufficientStockError
	var unavailableErr *models.UnavailableError

	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &unavailableErr):
		return "unavailable"
	default:
		return "internal"
	}
}

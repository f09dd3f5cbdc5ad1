package service

import (
	"context"
	"strings"

	"github.com/infinirdc/Opulence/internal/repositories"
	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
	"github.com/infinirdc/Opulence/pkg/metrics"
)

// UpsertIngredientRequest is the administrative payload for creating or
// replacing an ingredient.
type UpsertIngredientRequest struct {
	Name           string      `json:"name"`
	Unit           models.Unit `json:"unit"`
	Stock          float64     `json:"stock"`
	AlertThreshold *float64    `json:"alert_threshold"`
}

// AdjustStockRequest applies a signed delta to an ingredient's stock.
type AdjustStockRequest struct {
	Delta float64 `json:"delta"`
}

type InventoryServiceInterface interface {
	GetAllIngredients(ctx context.Context) ([]*models.Ingredient, error)
	GetIngredient(ctx context.Context, id string) (*models.Ingredient, error)
	AddIngredient(ctx context.Context, req UpsertIngredientRequest) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id string, req UpsertIngredientRequest) (*models.Ingredient, error)
	AdjustStock(ctx context.Context, id string, delta float64) (float64, error)
	GetLowStock(ctx context.Context) ([]*models.Ingredient, error)
}

type InventoryService struct {
	inventoryRepo repositories.InventoryRepositoryInterface
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewInventoryService(inventoryRepo repositories.InventoryRepositoryInterface, m *metrics.Metrics, log *logger.Logger) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		metrics:       m,
		logger:        log.WithComponent("inventory_service"),
	}
}

// GetAllIngredients retrieves all ingredients
func (s *InventoryService) GetAllIngredients(ctx context.Context) ([]*models.Ingredient, error) {
	s.logger.Info("Fetching all ingredients from repository")

	items, err := s.inventoryRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch ingredients", "error", err)
		return nil, err
	}

	return items, nil
}

// GetIngredient retrieves a single ingredient by ID
func (s *InventoryService) GetIngredient(ctx context.Context, id string) (*models.Ingredient, error) {
	if id == "" {
		return nil, models.NewValidationError("ingredient ID is required")
	}
	return s.inventoryRepo.GetByID(ctx, id)
}

// AddIngredient creates a new ingredient
func (s *InventoryService) AddIngredient(ctx context.Context, req UpsertIngredientRequest) (*models.Ingredient, error) {
	s.logger.Info("Adding ingredient", "name", req.Name, "unit", req.Unit)

	item, err := s.buildIngredient(req)
	if err != nil {
		s.logger.Warn("Add failed: invalid data", "error", err)
		return nil, err
	}

	if err := s.inventoryRepo.Add(ctx, item); err != nil {
		s.logger.Error("Failed to add ingredient", "error", err, "name", req.Name)
		return nil, err
	}

	return item, nil
}

// UpdateIngredient replaces an ingredient's administrative fields
func (s *InventoryService) UpdateIngredient(ctx context.Context, id string, req UpsertIngredientRequest) (*models.Ingredient, error) {
	s.logger.Info("Updating ingredient", "ingredient_id", id)

	if id == "" {
		return nil, models.NewValidationError("ingredient ID is required")
	}

	item, err := s.buildIngredient(req)
	if err != nil {
		s.logger.Warn("Update failed: invalid data", "ingredient_id", id, "error", err)
		return nil, err
	}

	if err := s.inventoryRepo.Update(ctx, id, item); err != nil {
		s.logger.Error("Failed to update ingredient", "error", err, "ingredient_id", id)
		return nil, err
	}

	return item, nil
}

// AdjustStock applies a signed delta against the stock ledger. A positive
// delta is a restock; a negative delta is a guarded decrement that fails if
// it would drive the stock below zero.
func (s *InventoryService) AdjustStock(ctx context.Context, id string, delta float64) (float64, error) {
	s.logger.Info("Adjusting stock", "ingredient_id", id, "delta", delta)

	if id == "" {
		return 0, models.NewValidationError("ingredient ID is required")
	}
	if delta == 0 {
		return 0, models.NewValidationError("delta must be non-zero")
	}

	newStock, err := s.inventoryRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		s.logger.Warn("Stock adjustment failed", "ingredient_id", id, "delta", delta, "error", err)
		return 0, err
	}

	s.metrics.StockAdjusted()
	s.logger.Info("Stock adjusted", "ingredient_id", id, "delta", delta, "stock", newStock)
	return newStock, nil
}

// GetLowStock retrieves ingredients at or below their alert threshold
func (s *InventoryService) GetLowStock(ctx context.Context) ([]*models.Ingredient, error) {
	s.logger.Info("Fetching low-stock ingredients")
	return s.inventoryRepo.GetLowStock(ctx)
}

func (s *InventoryService) buildIngredient(req UpsertIngredientRequest) (*models.Ingredient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("ingredient name is required")
	}
	if !req.Unit.Valid() {
		return nil, models.NewValidationError("invalid unit: %s", req.Unit)
	}
	if req.Stock < 0 {
		return nil, models.NewValidationError("stock cannot be negative")
	}

	threshold := float64(models.DefaultAlertThreshold)
	if req.AlertThreshold != nil {
		if *req.AlertThreshold < 0 {
			return nil, models.NewValidationError("alert threshold cannot be negative")
		}
		threshold = *req.AlertThreshold
	}

	return &models.Ingredient{
		Name:           name,
		Unit:           req.Unit,
		Stock:          req.Stock,
		AlertThreshold: threshold,
	}, nil
}

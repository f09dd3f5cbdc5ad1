package service

import (
	"context"
	"strings"

	"github.com/infinirdc/Opulence/internal/repositories"
	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
)

// UpsertDishRequest is the administrative payload for creating or replacing a
// dish together with its ingredient requirements.
type UpsertDishRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Price       float64                 `json:"price"`
	ImageURL    string                  `json:"image_url"`
	Available   *bool                   `json:"available"`
	Ingredients []models.DishIngredient `json:"ingredients"`
}

type MenuServiceInterface interface {
	GetMenu(ctx context.Context) ([]*models.Dish, error)
	GetAllDishes(ctx context.Context) ([]*models.Dish, error)
	GetDish(ctx context.Context, id string) (*models.Dish, error)
	CreateDish(ctx context.Context, req UpsertDishRequest) (*models.Dish, error)
	UpdateDish(ctx context.Context, id string, req UpsertDishRequest) (*models.Dish, error)
	SetDishAvailability(ctx context.Context, id string, available bool) error
	DeleteDish(ctx context.Context, id string) error
}

type MenuService struct {
	menuRepo repositories.MenuRepositoryInterface
	logger   *logger.Logger
}

func NewMenuService(menuRepo repositories.MenuRepositoryInterface, log *logger.Logger) *MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		logger:   log.WithComponent("menu_service"),
	}
}

// GetMenu retrieves the customer-facing menu: available dishes only.
func (s *MenuService) GetMenu(ctx context.Context) ([]*models.Dish, error) {
	s.logger.Info("Fetching menu from repository")

	dishes, err := s.menuRepo.GetAvailable(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch menu", "error", err)
		return nil, err
	}

	return dishes, nil
}

// GetAllDishes retrieves every dish, hidden ones included, for administration
func (s *MenuService) GetAllDishes(ctx context.Context) ([]*models.Dish, error) {
	s.logger.Info("Fetching all dishes from repository")
	return s.menuRepo.GetAll(ctx)
}

// GetDish retrieves a single dish by ID
func (s *MenuService) GetDish(ctx context.Context, id string) (*models.Dish, error) {
	if id == "" {
		return nil, models.NewValidationError("dish ID is required")
	}
	return s.menuRepo.GetByID(ctx, id)
}

// CreateDish adds a new dish to the catalog
func (s *MenuService) CreateDish(ctx context.Context, req UpsertDishRequest) (*models.Dish, error) {
	s.logger.Info("Creating dish", "name", req.Name)

	dish, err := s.buildDish(req)
	if err != nil {
		s.logger.Warn("Create failed: invalid data", "error", err)
		return nil, err
	}

	if err := s.menuRepo.Create(ctx, dish); err != nil {
		s.logger.Error("Failed to create dish", "error", err, "name", req.Name)
		return nil, err
	}

	return dish, nil
}

// UpdateDish replaces a dish and its ingredient requirements
func (s *MenuService) UpdateDish(ctx context.Context, id string, req UpsertDishRequest) (*models.Dish, error) {
	s.logger.Info("Updating dish", "dish_id", id)

	if id == "" {
		return nil, models.NewValidationError("dish ID is required")
	}

	dish, err := s.buildDish(req)
	if err != nil {
		s.logger.Warn("Update failed: invalid data", "dish_id", id, "error", err)
		return nil, err
	}

	if err := s.menuRepo.Update(ctx, id, dish); err != nil {
		s.logger.Error("Failed to update dish", "error", err, "dish_id", id)
		return nil, err
	}

	return dish, nil
}

// SetDishAvailability shows or hides a dish on the public menu
func (s *MenuService) SetDishAvailability(ctx context.Context, id string, available bool) error {
	s.logger.Info("Setting dish availability", "dish_id", id, "available", available)

	if id == "" {
		return models.NewValidationError("dish ID is required")
	}
	return s.menuRepo.SetAvailability(ctx, id, available)
}

// DeleteDish removes a dish from the catalog
func (s *MenuService) DeleteDish(ctx context.Context, id string) error {
	s.logger.Info("Deleting dish", "dish_id", id)

	if id == "" {
		return models.NewValidationError("dish ID is required")
	}
	return s.menuRepo.Delete(ctx, id)
}

func (s *MenuService) buildDish(req UpsertDishRequest) (*models.Dish, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("dish name is required")
	}
	if req.Price < 0 {
		return nil, models.NewValidationError("dish price cannot be negative")
	}

	seen := make(map[string]bool, len(req.Ingredients))
	for _, ingredient := range req.Ingredients {
		if ingredient.IngredientID == "" {
			return nil, models.NewValidationError("ingredient ID is required for every dish ingredient")
		}
		if ingredient.Quantity <= 0 {
			return nil, models.NewValidationError("ingredient %s: quantity must be positive", ingredient.IngredientID)
		}
		if seen[ingredient.IngredientID] {
			return nil, models.NewValidationError("ingredient %s is listed more than once", ingredient.IngredientID)
		}
		seen[ingredient.IngredientID] = true
	}

	// New dishes default to available unless the flag is sent explicitly.
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	ingredients := req.Ingredients
	if ingredients == nil {
		ingredients = []models.DishIngredient{}
	}

	return &models.Dish{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Available:   available,
		Ingredients: ingredients,
	}, nil
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/database"
	"github.com/infinirdc/Opulence/pkg/logger"
)

// MenuRepositoryInterface is the recipe catalog: dishes resolved together
// with their ingredient requirements.
type MenuRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*models.Dish, error)
	GetAvailable(ctx context.Context) ([]*models.Dish, error)
	GetByID(ctx context.Context, id string) (*models.Dish, error)
	Create(ctx context.Context, dish *models.Dish) error
	Update(ctx context.Context, id string, dish *models.Dish) error
	SetAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
}

type MenuRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewMenuRepository(log *logger.Logger, db *database.DB) *MenuRepository {
	return &MenuRepository{
		logger: log.WithComponent("menu_repository"),
		db:     db,
	}
}

const dishSelect = `
        SELECT d.id, d.name, d.description, d.price, d.image_url, d.available,
               d.created_at, d.updated_at,
               COALESCE(
                   json_agg(
                       json_build_object(
                           'ingredient_id', di.ingredient_id,
                           'quantity', di.quantity
                       )
                   ) FILTER (WHERE di.ingredient_id IS NOT NULL), '[]'::json
               ) as ingredients
        FROM dishes d
        LEFT JOIN dish_ingredients di ON d.id = di.dish_id
`

const dishGroupBy = `
        GROUP BY d.id, d.name, d.description, d.price, d.image_url, d.available,
                 d.created_at, d.updated_at
`

// GetAll retrieves all dishes with their ingredient requirements
func (r *MenuRepository) GetAll(ctx context.Context) ([]*models.Dish, error) {
	r.logger.Debug("Retrieving all dishes from database")

	dishes, err := r.queryDishes(ctx, dishSelect+dishGroupBy+" ORDER BY d.name")
	if err != nil {
		return nil, err
	}

	r.logger.Info("Retrieved all dishes", "count", len(dishes))
	return dishes, nil
}

// GetAvailable retrieves dishes with the availability flag set. This is the
// public menu.
func (r *MenuRepository) GetAvailable(ctx context.Context) ([]*models.Dish, error) {
	r.logger.Debug("Retrieving available dishes from database")

	query := dishSelect + " WHERE d.available = TRUE " + dishGroupBy + " ORDER BY d.name"
	dishes, err := r.queryDishes(ctx, query)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Retrieved available dishes", "count", len(dishes))
	return dishes, nil
}

// GetByID retrieves a dish by ID with its full ingredient list
func (r *MenuRepository) GetByID(ctx context.Context, id string) (*models.Dish, error) {
	r.logger.Debug("Retrieving dish from database", "dish_id", id)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := dishSelect + " WHERE d.id = $1 " + dishGroupBy

	dish := &models.Dish{}
	var ingredientsJSON string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dish.ID, &dish.Name, &dish.Description, &dish.Price, &dish.ImageURL,
		&dish.Available, &dish.CreatedAt, &dish.UpdatedAt, &ingredientsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Dish not found", "dish_id", id)
			return nil, &models.NotFoundError{Resource: "dish", ID: id}
		}
		r.logger.Error("Failed to retrieve dish", "error", err, "dish_id", id)
		return nil, wrapStoreError("get dish", err)
	}

	if err := parseIngredients(ingredientsJSON, &dish.Ingredients); err != nil {
		r.logger.Error("Failed to parse ingredients", "error", err, "dish_id", dish.ID)
		return nil, fmt.Errorf("failed to parse ingredients for dish %s: %v", dish.ID, err)
	}

	return dish, nil
}

// Create inserts a dish and its ingredient requirements in one transaction
func (r *MenuRepository) Create(ctx context.Context, dish *models.Dish) error {
	r.logger.Debug("Adding new dish", "name", dish.Name)

	if dish.ID == "" {
		dish.ID = uuid.New().String()
	}

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO dishes (id, name, description, price, image_url, available)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowContext(ctx, query,
			dish.ID, dish.Name, dish.Description, dish.Price, dish.ImageURL, dish.Available).
			Scan(&dish.CreatedAt, &dish.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				r.logger.Warn("Attempted to add duplicate dish", "name", dish.Name)
				return models.NewValidationError("dish with name %s already exists", dish.Name)
			}
			return wrapStoreError("add dish", err)
		}

		return r.insertIngredients(ctx, tx, dish.ID, dish.Ingredients)
	})
	if err != nil {
		r.logger.Error("Failed to add dish", "error", err, "name", dish.Name)
		return err
	}

	r.logger.Info("Added new dish", "dish_id", dish.ID, "name", dish.Name)
	return nil
}

// Update replaces a dish and its ingredient requirements in one transaction
func (r *MenuRepository) Update(ctx context.Context, id string, dish *models.Dish) error {
	r.logger.Debug("Updating dish in database", "dish_id", id)

	dish.ID = id

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE dishes
			SET name = $1, description = $2, price = $3, image_url = $4, available = $5, updated_at = NOW()
			WHERE id = $6
		`

		result, err := tx.ExecContext(ctx, query,
			dish.Name, dish.Description, dish.Price, dish.ImageURL, dish.Available, id)
		if err != nil {
			if isUniqueViolation(err) {
				return models.NewValidationError("dish with name %s already exists", dish.Name)
			}
			return wrapStoreError("update dish", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}
		if rowsAffected == 0 {
			return &models.NotFoundError{Resource: "dish", ID: id}
		}

		if err := r.deleteIngredients(ctx, tx, id); err != nil {
			return err
		}
		return r.insertIngredients(ctx, tx, id, dish.Ingredients)
	})
	if err != nil {
		r.logger.Error("Failed to update dish", "error", err, "dish_id", id)
		return err
	}

	r.logger.Info("Updated dish", "dish_id", id, "name", dish.Name)
	return nil
}

// SetAvailability flips the availability flag without touching the recipe
func (r *MenuRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	r.logger.Debug("Setting dish availability", "dish_id", id, "available", available)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		UPDATE dishes
		SET available = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, available, id)
	if err != nil {
		r.logger.Error("Failed to set dish availability", "error", err, "dish_id", id)
		return wrapStoreError("set dish availability", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return &models.NotFoundError{Resource: "dish", ID: id}
	}

	r.logger.Info("Set dish availability", "dish_id", id, "available", available)
	return nil
}

// Delete removes a dish and its ingredient requirements
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting dish from database", "dish_id", id)

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.deleteIngredients(ctx, tx, id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM dishes WHERE id = $1`, id)
		if err != nil {
			return wrapStoreError("delete dish", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}
		if rowsAffected == 0 {
			return &models.NotFoundError{Resource: "dish", ID: id}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete dish", "error", err, "dish_id", id)
		return err
	}

	r.logger.Info("Deleted dish", "dish_id", id)
	return nil
}

func (r *MenuRepository) queryDishes(ctx context.Context, query string, args ...interface{}) ([]*models.Dish, error) {
	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query dishes", "error", err)
		return nil, wrapStoreError("list dishes", err)
	}
	defer rows.Close()

	dishes := []*models.Dish{}
	for rows.Next() {
		dish := &models.Dish{}
		var ingredientsJSON string

		err := rows.Scan(
			&dish.ID, &dish.Name, &dish.Description, &dish.Price, &dish.ImageURL,
			&dish.Available, &dish.CreatedAt, &dish.UpdatedAt, &ingredientsJSON,
		)
		if err != nil {
			r.logger.Error("Failed to scan dish", "error", err)
			return nil, fmt.Errorf("failed to scan dish: %v", err)
		}

		if err := parseIngredients(ingredientsJSON, &dish.Ingredients); err != nil {
			r.logger.Error("Failed to parse ingredients", "error", err, "dish_id", dish.ID)
			return nil, fmt.Errorf("failed to parse ingredients for dish %s: %v", dish.ID, err)
		}

		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating dish rows", "error", err)
		return nil, fmt.Errorf("error iterating dish rows: %v", err)
	}

	return dishes, nil
}

func (r *MenuRepository) insertIngredients(ctx context.Context, tx *sql.Tx, dishID string, ingredients []models.DishIngredient) error {
	if len(ingredients) == 0 {
		return nil
	}

	query := `
		INSERT INTO dish_ingredients (dish_id, ingredient_id, quantity)
		VALUES ($1, $2, $3)
	`

	for _, ingredient := range ingredients {
		_, err := tx.ExecContext(ctx, query, dishID, ingredient.IngredientID, ingredient.Quantity)
		if err != nil {
			if isForeignKeyViolation(err) {
				return &models.NotFoundError{Resource: "ingredient", ID: ingredient.IngredientID}
			}
			return fmt.Errorf("failed to insert ingredient %s: %v", ingredient.IngredientID, err)
		}
	}

	return nil
}

func (r *MenuRepository) deleteIngredients(ctx context.Context, tx *sql.Tx, dishID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM dish_ingredients WHERE dish_id = $1`, dishID)
	if err != nil {
		return fmt.Errorf("failed to delete dish ingredients: %v", err)
	}
	return nil
}

func parseIngredients(ingredientsJSON string, ingredients *[]models.DishIngredient) error {
	if ingredientsJSON == "" || ingredientsJSON == "[]" {
		*ingredients = []models.DishIngredient{}
		return nil
	}

	parsed := []models.DishIngredient{}
	if err := json.Unmarshal([]byte(ingredientsJSON), &parsed); err != nil {
		return fmt.Errorf("invalid JSON format for ingredients: %v", err)
	}

	*ingredients = parsed
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/database"
	"github.com/infinirdc/Opulence/pkg/logger"
)

// InventoryRepositoryInterface is the stock ledger: per-ingredient quantities
// with a guarded, store-side atomic adjust operation.
type InventoryRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*models.Ingredient, error)
	GetByID(ctx context.Context, id string) (*models.Ingredient, error)
	Add(ctx context.Context, item *models.Ingredient) error
	Update(ctx context.Context, id string, item *models.Ingredient) error
	AdjustStock(ctx context.Context, id string, delta float64) (float64, error)
	GetLowStock(ctx context.Context) ([]*models.Ingredient, error)
}

type InventoryRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewInventoryRepository(log *logger.Logger, db *database.DB) *InventoryRepository {
	return &InventoryRepository{
		logger: log.WithComponent("inventory_repository"),
		db:     db,
	}
}

const ingredientColumns = "id, name, unit, stock, alert_threshold, created_at, updated_at"

// GetAll retrieves all ingredients ordered by name
func (r *InventoryRepository) GetAll(ctx context.Context) ([]*models.Ingredient, error) {
	r.logger.Debug("Retrieving all ingredients from database")

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query ingredients", "error", err)
		return nil, wrapStoreError("list ingredients", err)
	}
	defer rows.Close()

	items, err := scanIngredients(rows)
	if err != nil {
		r.logger.Error("Failed to scan ingredients", "error", err)
		return nil, err
	}

	r.logger.Info("Retrieved all ingredients", "count", len(items))
	return items, nil
}

// GetByID retrieves a single ingredient by ID
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*models.Ingredient, error) {
	r.logger.Debug("Retrieving ingredient from database", "ingredient_id", id)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients
		WHERE id = $1
	`

	item := &models.Ingredient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Unit,
		&item.Stock,
		&item.AlertThreshold,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Ingredient not found", "ingredient_id", id)
			return nil, &models.NotFoundError{Resource: "ingredient", ID: id}
		}
		r.logger.Error("Failed to retrieve ingredient", "error", err, "ingredient_id", id)
		return nil, wrapStoreError("get ingredient", err)
	}

	return item, nil
}

// Add inserts a new ingredient; the ID is generated app-side.
func (r *InventoryRepository) Add(ctx context.Context, item *models.Ingredient) error {
	r.logger.Debug("Adding new ingredient to database", "name", item.Name)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO ingredients (id, name, unit, stock, alert_threshold)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, item.ID, item.Name, item.Unit, item.Stock, item.AlertThreshold).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Attempted to add duplicate ingredient", "name", item.Name)
			return models.NewValidationError("ingredient with name %s already exists", item.Name)
		}
		r.logger.Error("Failed to add ingredient", "error", err, "name", item.Name)
		return wrapStoreError("add ingredient", err)
	}

	r.logger.Info("Added new ingredient", "ingredient_id", item.ID, "name", item.Name)
	return nil
}

// Update replaces the administrative fields of an ingredient, stock included
// (administrative set, not a guarded decrement).
func (r *InventoryRepository) Update(ctx context.Context, id string, item *models.Ingredient) error {
	r.logger.Debug("Updating ingredient in database", "ingredient_id", id)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	item.ID = id

	query := `
		UPDATE ingredients
		SET name = $1, unit = $2, stock = $3, alert_threshold = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query, item.Name, item.Unit, item.Stock, item.AlertThreshold, id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewValidationError("ingredient with name %s already exists", item.Name)
		}
		r.logger.Error("Failed to update ingredient", "error", err, "ingredient_id", id)
		return wrapStoreError("update ingredient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "ingredient_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update non-existent ingredient", "ingredient_id", id)
		return &models.NotFoundError{Resource: "ingredient", ID: id}
	}

	r.logger.Info("Updated ingredient", "ingredient_id", id, "name", item.Name)
	return nil
}

// AdjustStock applies a delta to the stored stock in a single conditional
// update evaluated by the database, so concurrent adjustments cannot drive
// stock below zero. A positive delta is a restock with no upper bound.
func (r *InventoryRepository) AdjustStock(ctx context.Context, id string, delta float64) (float64, error) {
	r.logger.Debug("Adjusting ingredient stock", "ingredient_id", id, "delta", delta)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		UPDATE ingredients
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING stock
	`

	var newStock float64
	err := r.db.QueryRowContext(ctx, query, delta, id).Scan(&newStock)
	if err == nil {
		r.logger.Info("Adjusted ingredient stock", "ingredient_id", id, "delta", delta, "stock", newStock)
		return newStock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("Failed to adjust ingredient stock", "error", err, "ingredient_id", id)
		return 0, wrapStoreError("adjust stock", err)
	}

	// No row updated: either the ingredient is missing or the guard failed.
	item, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return 0, getErr
	}

	r.logger.Warn("Stock adjustment would go below zero",
		"ingredient_id", id, "delta", delta, "stock", item.Stock)
	return 0, &models.InsufficientStockError{
		IngredientID:   id,
		IngredientName: item.Name,
		Required:       -delta,
		Available:      item.Stock,
	}
}

// GetLowStock retrieves ingredients at or below their alert threshold
func (r *InventoryRepository) GetLowStock(ctx context.Context) ([]*models.Ingredient, error) {
	r.logger.Debug("Retrieving low-stock ingredients from database")

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients
		WHERE stock <= alert_threshold
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query low-stock ingredients", "error", err)
		return nil, wrapStoreError("list low-stock ingredients", err)
	}
	defer rows.Close()

	items, err := scanIngredients(rows)
	if err != nil {
		r.logger.Error("Failed to scan low-stock ingredients", "error", err)
		return nil, err
	}

	return items, nil
}

func scanIngredients(rows *sql.Rows) ([]*models.Ingredient, error) {
	items := []*models.Ingredient{}
	for rows.Next() {
		item := &models.Ingredient{}
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Unit,
			&item.Stock,
			&item.AlertThreshold,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %v", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredient rows: %v", err)
	}
	return items, nil
}

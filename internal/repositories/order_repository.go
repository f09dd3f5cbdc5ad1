package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/database"
	"github.com/infinirdc/Opulence/pkg/logger"
)

// OrderRepositoryInterface is the order ledger. CreateConsumingStock is the
// single entry point for order placement: the stock decrements and the order
// insert commit or roll back as one unit.
type OrderRepositoryInterface interface {
	CreateConsumingStock(ctx context.Context, order *models.Order, consumption []models.StockConsumption) error
	GetAll(ctx context.Context) ([]*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error)
}

type OrderRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewOrderRepository(log *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		logger: log.WithComponent("order_repository"),
		db:     db,
	}
}

// CreateConsumingStock decrements every required ingredient and records the
// order inside one transaction. Each decrement is a conditional update
// evaluated by the database ("subtract if the result stays >= 0"), so two
// concurrent orders racing for the same ingredient serialize on the row and
// at most one commits when stock only covers one of them. Any failed
// decrement aborts the transaction: no stock changes and no order row exists.
func (r *OrderRepository) CreateConsumingStock(ctx context.Context, order *models.Order, consumption []models.StockConsumption) error {
	r.logger.Debug("Creating order with stock consumption",
		"order_id", order.ID, "ingredients", len(consumption))

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		decrement := `
			UPDATE ingredients
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`

		for _, c := range consumption {
			result, err := tx.ExecContext(ctx, decrement, c.Quantity, c.IngredientID)
			if err != nil {
				return wrapStoreError("consume stock", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %v", err)
			}
			if rowsAffected == 0 {
				return r.classifyFailedDecrement(ctx, tx, c)
			}
		}

		insertOrder := `
			INSERT INTO orders (id, customer_name, customer_phone, status, total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowContext(ctx, insertOrder,
			order.ID, order.CustomerName, order.CustomerPhone, order.Status, order.Total).
			Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return wrapStoreError("create order", err)
		}

		insertItem := `
			INSERT INTO order_items (order_id, dish_id, dish_name, quantity, price_at_time)
			VALUES ($1, $2, $3, $4, $5)
		`

		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx, insertItem,
				order.ID, item.DishID, item.DishName, item.Quantity, item.PriceAtTime)
			if err != nil {
				return wrapStoreError("create order items", err)
			}
		}

		return nil
	})
	if err != nil {
		r.logger.Warn("Order creation rolled back", "order_id", order.ID, "error", err)
		return err
	}

	r.logger.Info("Created order", "order_id", order.ID, "customer", order.CustomerName, "total", order.Total)
	return nil
}

// classifyFailedDecrement turns a zero-row decrement into the precise
// rejection: missing ingredient or insufficient stock with the shortfall.
func (r *OrderRepository) classifyFailedDecrement(ctx context.Context, tx *sql.Tx, c models.StockConsumption) error {
	var name string
	var stock float64
	err := tx.QueryRowContext(ctx,
		`SELECT name, stock FROM ingredients WHERE id = $1`, c.IngredientID).
		Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.NotFoundError{Resource: "ingredient", ID: c.IngredientID}
		}
		return wrapStoreError("inspect stock", err)
	}

	return &models.InsufficientStockError{
		IngredientID:   c.IngredientID,
		IngredientName: name,
		Required:       c.Quantity,
		Available:      stock,
	}
}

const orderSelect = `
        SELECT o.id, o.customer_name, o.customer_phone, o.status, o.total,
               o.created_at, o.updated_at,
               COALESCE(
                   json_agg(
                       json_build_object(
                           'dish_id', oi.dish_id,
                           'dish_name', oi.dish_name,
                           'quantity', oi.quantity,
                           'price_at_time', oi.price_at_time
                       ) ORDER BY oi.id
                   ) FILTER (WHERE oi.dish_id IS NOT NULL), '[]'::json
               ) as items
        FROM orders o
        LEFT JOIN order_items oi ON o.id = oi.order_id
`

const orderGroupBy = `
        GROUP BY o.id, o.customer_name, o.customer_phone, o.status, o.total,
                 o.created_at, o.updated_at
`

// GetAll retrieves all orders, newest first
func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	r.logger.Debug("Retrieving all orders from database")

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := orderSelect + orderGroupBy + " ORDER BY o.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, wrapStoreError("list orders", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			r.logger.Error("Failed to scan order", "error", err)
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating order rows", "error", err)
		return nil, fmt.Errorf("error iterating order rows: %v", err)
	}

	r.logger.Info("Retrieved all orders", "count", len(orders))
	return orders, nil
}

// GetByID retrieves a single order with its line items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.logger.Debug("Retrieving order from database", "order_id", id)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := orderSelect + " WHERE o.id = $1 " + orderGroupBy

	order, err := scanOrder(func(dest ...interface{}) error {
		return r.db.QueryRowContext(ctx, query, id).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Order not found", "order_id", id)
			return nil, &models.NotFoundError{Resource: "order", ID: id}
		}
		r.logger.Error("Failed to retrieve order", "error", err, "order_id", id)
		return nil, wrapStoreError("get order", err)
	}

	return order, nil
}

// UpdateStatus moves an order from one status to another. The current status
// is part of the predicate so two concurrent transitions cannot both apply.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	r.logger.Debug("Updating order status", "order_id", id, "from", from, "to", to)

	ctx, cancel := r.db.OpContext(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "order_id", id)
		return nil, wrapStoreError("update order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		// Either the order is gone or someone else transitioned it first.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		r.logger.Warn("Order status changed concurrently", "order_id", id, "expected", from)
		return nil, models.NewValidationError("order %s is no longer in status %s", id, from)
	}

	r.logger.Info("Updated order status", "order_id", id, "from", from, "to", to)
	return r.GetByID(ctx, id)
}

func scanOrder(scan func(dest ...interface{}) error) (*models.Order, error) {
	order := &models.Order{}
	var itemsJSON string

	err := scan(
		&order.ID, &order.CustomerName, &order.CustomerPhone, &order.Status,
		&order.Total, &order.CreatedAt, &order.UpdatedAt, &itemsJSON,
	)
	if err != nil {
		return nil, err
	}

	if itemsJSON == "" || itemsJSON == "[]" {
		order.Items = []models.OrderItem{}
		return order, nil
	}
	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return nil, fmt.Errorf("invalid JSON format for order items: %v", err)
	}

	return order, nil
}

package models

import "time"

// Dish is a menu entry together with the ingredients it consumes when
// ordered. A dish with no ingredient requirements is valid and has no stock
// impact.
type Dish struct {
	ID          string           `json:"dish_id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description" db:"description"`
	Price       float64          `json:"price" db:"price"`
	ImageURL    string           `json:"image_url" db:"image_url"`
	Available   bool             `json:"available" db:"available"`
	Ingredients []DishIngredient `json:"ingredients"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// DishIngredient is one row of a dish's recipe: the referenced ingredient and
// the quantity consumed per unit of the dish ordered.
type DishIngredient struct {
	IngredientID string  `json:"ingredient_id" db:"ingredient_id"`
	Quantity     float64 `json:"quantity" db:"quantity"`
}

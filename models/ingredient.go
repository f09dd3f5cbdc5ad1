package models

import "time"

// Unit is the unit of measure an ingredient's stock is tracked in.
type Unit string

const (
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
	UnitMillilit Unit = "ml"
	UnitLiter    Unit = "l"
	UnitPiece    Unit = "piece"
	UnitUnit     Unit = "unit"
)

// ValidUnits lists every accepted unit of measure.
var ValidUnits = []Unit{UnitGram, UnitKilogram, UnitMillilit, UnitLiter, UnitPiece, UnitUnit}

// Valid reports whether the unit is one of the accepted units of measure.
func (u Unit) Valid() bool {
	for _, v := range ValidUnits {
		if u == v {
			return true
		}
	}
	return false
}

// DefaultAlertThreshold is applied when an ingredient is created without one.
const DefaultAlertThreshold = 10

// Ingredient is a stocked ingredient. Stock is only mutated through guarded
// decrements (order consumption) or administrative set/adjust operations and
// never goes below zero.
type Ingredient struct {
	ID             string    `json:"ingredient_id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Unit           Unit      `json:"unit" db:"unit"`
	Stock          float64   `json:"stock" db:"stock"`
	AlertThreshold float64   `json:"alert_threshold" db:"alert_threshold"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the ingredient is at or below its alert threshold.
func (i *Ingredient) LowStock() bool {
	return i.Stock <= i.AlertThreshold
}

// StockConsumption is the aggregate quantity of one ingredient required by a
// single order across all of its line items.
type StockConsumption struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

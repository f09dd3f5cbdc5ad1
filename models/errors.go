package models

import "fmt"

// ValidationError reports missing or malformed input. It is raised before any
// side effect occurs.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a referenced record does not exist. For order
// placement a missing dish or ingredient rejects the whole order.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

// InsufficientStockError reports that an ingredient cannot satisfy the
// aggregate demand of an order. No stock is left mutated when it is returned.
type InsufficientStockError struct {
	IngredientID   string
	IngredientName string
	Required       float64
	Available      float64
}

func (e *InsufficientStockError) Error() string {
	name := e.IngredientName
	if name == "" {
		name = e.IngredientID
	}
	return fmt.Sprintf("insufficient stock for ingredient %s: need %.2f, have %.2f", name, e.Required, e.Available)
}

// UnavailableError reports that the backing store is unreachable or timed
// out. It is surfaced as a transient failure and never crashes the request
// handling process.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

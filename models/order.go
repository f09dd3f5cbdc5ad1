package models

import "time"

// OrderStatus is one step of the fulfillment workflow.
type OrderStatus string

const (
	StatusReceived      OrderStatus = "received"
	StatusInPreparation OrderStatus = "in_preparation"
	StatusReady         OrderStatus = "ready"
	StatusDelivered     OrderStatus = "delivered"
	StatusCancelled     OrderStatus = "cancelled"
)

// statusRank orders the forward progression. Cancelled sits outside the
// progression; it is reachable from any non-terminal status.
var statusRank = map[OrderStatus]int{
	StatusReceived:      1,
	StatusInPreparation: 2,
	StatusReady:         3,
	StatusDelivered:     4,
}

// Valid reports whether the status is a known fulfillment status.
func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is allowed out of the status.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Rank returns the position of the status in the forward progression.
// Cancelled has no rank.
func (s OrderStatus) Rank() int {
	return statusRank[s]
}

// Order is a placed customer order. The total is computed from dish prices at
// placement time and is never accepted from the client.
type Order struct {
	ID            string      `json:"order_id" db:"id"`
	CustomerName  string      `json:"customer_name" db:"customer_name"`
	CustomerPhone string      `json:"customer_phone" db:"customer_phone"`
	Items         []OrderItem `json:"items"`
	Status        OrderStatus `json:"status" db:"status"`
	Total         float64     `json:"total" db:"total"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of an order. Dish name and price are captured at
// placement time so later menu edits do not rewrite order history.
type OrderItem struct {
	DishID      string  `json:"dish_id" db:"dish_id"`
	DishName    string  `json:"dish_name" db:"dish_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	PriceAtTime float64 `json:"price_at_time" db:"price_at_time"`
}

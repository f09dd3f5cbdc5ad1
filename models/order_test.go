package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, status := range []OrderStatus{
		StatusReceived, StatusInPreparation, StatusReady, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, status.Valid(), "expected %s to be valid", status)
	}

	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("pending").Valid())
	assert.False(t, OrderStatus("RECEIVED").Valid())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())

	assert.False(t, StatusReceived.Terminal())
	assert.False(t, StatusInPreparation.Terminal())
	assert.False(t, StatusReady.Terminal())
}

func TestOrderStatusRank(t *testing.T) {
	assert.Less(t, StatusReceived.Rank(), StatusInPreparation.Rank())
	assert.Less(t, StatusInPreparation.Rank(), StatusReady.Rank())
	assert.Less(t, StatusReady.Rank(), StatusDelivered.Rank())

	// Cancelled sits outside the forward progression.
	assert.Zero(t, StatusCancelled.Rank())
}

func TestIngredientLowStock(t *testing.T) {
	assert.True(t, (&Ingredient{Stock: 5, AlertThreshold: 10}).LowStock())
	assert.True(t, (&Ingredient{Stock: 10, AlertThreshold: 10}).LowStock())
	assert.False(t, (&Ingredient{Stock: 11, AlertThreshold: 10}).LowStock())
}

func TestUnitValid(t *testing.T) {
	for _, unit := range ValidUnits {
		assert.True(t, unit.Valid())
	}
	assert.False(t, Unit("handful").Valid())
	assert.False(t, Unit("").Valid())
}

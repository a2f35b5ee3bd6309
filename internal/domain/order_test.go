package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, OrderStatusReturned.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusQuotation.Terminal())
	assert.False(t, OrderStatusPickedUp.Terminal())
}

func TestOrderStatus_Cancellable(t *testing.T) {
	assert.True(t, OrderStatusQuotation.Cancellable())
	assert.True(t, OrderStatusRentalOrder.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.False(t, OrderStatusPickedUp.Cancellable())
	assert.False(t, OrderStatusReturned.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
}

func TestRentalOrder_EarliestEndDate(t *testing.T) {
	later := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	order := &RentalOrder{Items: []OrderItem{
		{EndDate: later},
		{EndDate: earlier},
	}}
	assert.Equal(t, earlier, order.EarliestEndDate())

	empty := &RentalOrder{}
	assert.True(t, empty.EarliestEndDate().IsZero())
}

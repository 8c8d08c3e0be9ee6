package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("shipped")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusShipped, st)

	_, ok = ParseOrderStatus("SHIPPED")
	assert.False(t, ok)
}

func TestAddress_Formatted(t *testing.T) {
	a := Address{Line1: "1-2-3 Chuo", City: "Sapporo", Region: "Hokkaido", PostalCode: "060-0001"}
	assert.Equal(t, "1-2-3 Chuo, Sapporo, Hokkaido, 060-0001", a.Formatted())

	a.Line2 = "Room 101"
	assert.Equal(t, "1-2-3 Chuo, Room 101, Sapporo, Hokkaido, 060-0001", a.Formatted())
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusReceived, StatusAccepted, true},
		{StatusReceived, StatusRejected, true},
		{StatusReceived, StatusCompleted, false}, // must be accepted first
		{StatusReceived, StatusReceived, false},  // re-applying current status
		{StatusAccepted, StatusCompleted, true},
		{StatusAccepted, StatusRejected, true},
		{StatusAccepted, StatusReceived, false}, // no going back
		{StatusAccepted, StatusAccepted, false},
		{StatusRejected, StatusAccepted, false}, // terminal
		{StatusRejected, StatusCompleted, false},
		{StatusCompleted, StatusRejected, false}, // terminal
		{StatusCompleted, StatusReceived, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusPartitions(t *testing.T) {
	assert.True(t, StatusReceived.Active())
	assert.True(t, StatusAccepted.Active())
	assert.False(t, StatusRejected.Active())
	assert.False(t, StatusCompleted.Active())

	assert.False(t, StatusReceived.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("accepted")
	assert.True(t, ok)
	assert.Equal(t, StatusAccepted, s)

	for _, raw := range []string{"", "ACCEPTED", "shipped", "done"} {
		_, ok := ParseOrderStatus(raw)
		assert.False(t, ok, "raw %q", raw)
	}
}

func TestCartDisplayTotal(t *testing.T) {
	c := Cart{
		RestaurantID: 7,
		Lines: []CartLine{
			{ItemID: 1, Name: "Margherita", Quantity: 2, CachedPrice: 8.5},
			{ItemID: 2, Name: "Cola", Quantity: 3, CachedPrice: 2.0},
		},
	}
	assert.InDelta(t, 23.0, c.DisplayTotal(), 1e-9)
	assert.False(t, c.Empty())
	assert.True(t, (&Cart{}).Empty())
}

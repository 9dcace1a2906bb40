package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransition(t *testing.T) {
	testCases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{"pending to fulfilled", OrderStatusPending, OrderStatusFulfilled, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"proof missing to fulfilled", OrderStatusReadyProofMissing, OrderStatusFulfilled, true},
		{"fulfilled is terminal", OrderStatusFulfilled, OrderStatusPending, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusFulfilled, false},
		{"proof missing cannot cancel", OrderStatusReadyProofMissing, OrderStatusCancelled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	require.True(t, OrderStatusPending.Valid())
	require.True(t, OrderStatusReadyProofMissing.Valid())
	require.False(t, OrderStatus("pendente").Valid())
}

func TestTicketReady(t *testing.T) {
	o := &Order{}
	require.False(t, o.TicketReady())
	o.Ticket = "data:image/png;base64,AAAA"
	require.True(t, o.TicketReady())
}

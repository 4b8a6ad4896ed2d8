package models

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCanceled, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCanceled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCanceled, true},

		// Pas de saut d'étape
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusDelivered, false},

		// Pas de retour en arrière
		{StatusConfirmed, StatusPending, false},
		{StatusShipped, StatusConfirmed, false},

		// Les états terminaux sont clos, y compris pour l'annulation
		{StatusDelivered, StatusCanceled, false},
		{StatusCanceled, StatusConfirmed, false},
		{StatusDelivered, StatusDelivered, false},

		// Redemander le statut courant est refusé
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestIsValidStatus(t *testing.T) {
	for status := range StatusLabels {
		assert.True(t, IsValidStatus(status))
	}
	assert.False(t, IsValidStatus("paid"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("Pending"))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusDelivered))
	assert.True(t, IsTerminalStatus(StatusCanceled))
	assert.False(t, IsTerminalStatus(StatusPending))
	assert.False(t, IsTerminalStatus(StatusConfirmed))
	assert.False(t, IsTerminalStatus(StatusShipped))
}

func TestOrderTotalPrice(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{ProductID: gocql.TimeUUID(), Name: "Roses rouges", Quantity: 3, Price: 12.50},
			{ProductID: gocql.TimeUUID(), Name: "Tulipes", Quantity: 2, Price: 8.00},
		},
	}
	assert.InDelta(t, 53.50, order.TotalPrice(), 0.001)

	assert.Zero(t, Order{}.TotalPrice())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "En attente", Order{Status: StatusPending}.StatusLabel())
	assert.Equal(t, "Livrée", Order{Status: StatusDelivered}.StatusLabel())
}

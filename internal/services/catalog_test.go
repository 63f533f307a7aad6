package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteTableRequiresFreeTable(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Tea", 5000, false, 0)

	orders := NewOrderService(deps)
	_, err := orders.AddItem(table.ID, product.ID, 1, Waiter{})
	require.NoError(t, err)

	catalog := NewCatalogService(deps)
	assert.ErrorIs(t, catalog.DeleteTable(table.ID), ErrTableOccupied)

	// Settled tables can go
	require.NoError(t, orders.CancelOrder(table.ID, "test"))
	require.NoError(t, catalog.DeleteTable(table.ID))
	assert.NotNil(t, reloadTable(t, table.ID).DeletedAt)
}

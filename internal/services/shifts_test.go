package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tezpos/tezpos/internal/models"
)

func TestOpenShiftOnlyOneAtATime(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewShiftService(deps)

	shift, err := svc.OpenShift("Dilnoza", 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), shift.Number)
	assert.Equal(t, models.ShiftOpen, shift.Status)
	assert.Equal(t, 100000.0, shift.StartCash)

	_, err = svc.OpenShift("Dilnoza", 0)
	assert.ErrorIs(t, err, ErrShiftAlreadyOpen)
}

func TestShiftNumbersIncrease(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewShiftService(deps)

	first, err := svc.OpenShift("Dilnoza", 0)
	require.NoError(t, err)
	_, err = svc.CloseShift(0, 0)
	require.NoError(t, err)

	second, err := svc.OpenShift("Dilnoza", 0)
	require.NoError(t, err)
	assert.Equal(t, first.Number+1, second.Number)
}

func TestCloseShiftRequiresSettledTables(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewShiftService(deps)
	_, err := svc.OpenShift("Dilnoza", 0)
	require.NoError(t, err)

	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Tea", 5000, false, 0)
	_, err = NewOrderService(deps).AddItem(table.ID, product.ID, 1, Waiter{})
	require.NoError(t, err)

	_, err = svc.CloseShift(0, 0)
	assert.ErrorIs(t, err, ErrActiveTablesExist)
}

func TestCloseShiftReconciliation(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewShiftService(deps)
	shift, err := svc.OpenShift("Dilnoza", 100000)
	require.NoError(t, err)

	orders := NewOrderService(deps)
	table := makeTable(t, "T1", 4)
	plov := makeProduct(t, "Plov", 35000, false, 0)

	// Cash sale: 250 000
	_, err = orders.AddBulkItems(table.ID, []BulkItem{
		{ProductID: plov.ID, Name: "Plov", Price: 250000, Quantity: 1},
	}, Waiter{})
	require.NoError(t, err)
	_, err = orders.Checkout(CheckoutInput{TableID: table.ID, Payment: models.Single(models.PaymentCash, 250000)})
	require.NoError(t, err)

	// Card sale: 80 000
	_, err = orders.AddBulkItems(table.ID, []BulkItem{
		{ProductID: plov.ID, Name: "Plov", Price: 80000, Quantity: 1},
	}, Waiter{})
	require.NoError(t, err)
	_, err = orders.Checkout(CheckoutInput{TableID: table.ID, Payment: models.Single(models.PaymentCard, 80000)})
	require.NoError(t, err)

	closed, err := svc.CloseShift(340000, 80000)
	require.NoError(t, err)

	assert.Equal(t, models.ShiftClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, 330000.0, closed.TotalSales)
	assert.Equal(t, 250000.0, closed.TotalCash)
	assert.Equal(t, 80000.0, closed.TotalCard)
	assert.Equal(t, 350000.0, closed.ExpectedCash)
	assert.Equal(t, -10000.0, closed.DiffCash)
	assert.Equal(t, 0.0, closed.DiffCard)

	// Only sales of this shift were counted
	var salesCount int64
	require.NoError(t, testDB.Model(&models.Sale{}).
		Where("shift_id = ?", shift.ID).Count(&salesCount).Error)
	assert.Equal(t, int64(2), salesCount)

	_, err = svc.CurrentShift()
	assert.ErrorIs(t, err, ErrShiftNotOpen)
}

func TestShiftReportAggregatesPerProduct(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewShiftService(deps)
	shift, err := svc.OpenShift("Dilnoza", 0)
	require.NoError(t, err)

	orders := NewOrderService(deps)
	table := makeTable(t, "T1", 4)
	plov := makeProduct(t, "Plov", 35000, false, 0)
	tea := makeProduct(t, "Tea", 5000, false, 0)

	for i := 0; i < 2; i++ {
		_, err = orders.AddBulkItems(table.ID, []BulkItem{
			{ProductID: plov.ID, Name: "Plov", Price: 35000, Quantity: 1},
			{ProductID: tea.ID, Name: "Tea", Price: 5000, Quantity: 2},
		}, Waiter{})
		require.NoError(t, err)
		_, err = orders.Checkout(CheckoutInput{TableID: table.ID, Payment: models.Single(models.PaymentCash, 45000)})
		require.NoError(t, err)
	}

	report, err := svc.Report(shift.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Sales)
	require.Len(t, report.Products, 2)

	// Ordered by revenue, plov first
	assert.Equal(t, "Plov", report.Products[0].Name)
	assert.Equal(t, 2, report.Products[0].Quantity)
	assert.Equal(t, 70000.0, report.Products[0].Total)
	assert.Equal(t, "Tea", report.Products[1].Name)
	assert.Equal(t, 4, report.Products[1].Quantity)
	assert.Equal(t, 20000.0, report.Products[1].Total)

	_, err = svc.Report("missing")
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/sync"
)

func TestAddItemRequiresOpenShift(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Plov", 35000, false, 0)

	_, err := NewOrderService(deps).AddItem(table.ID, product.ID, 1, Waiter{})
	assert.ErrorIs(t, err, ErrShiftNotOpen)
}

func TestAddItemOccupiesTableAndAllocatesCheckNumber(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Plov", 35000, false, 0)

	svc := NewOrderService(deps)
	item, err := svc.AddItem(table.ID, product.ID, 2, Waiter{Name: "Aziz", Guests: 3})
	require.NoError(t, err)
	assert.Equal(t, "Plov", item.Name)
	assert.Equal(t, 35000.0, item.Price)

	got := reloadTable(t, table.ID)
	assert.Equal(t, models.TableOccupied, got.Status)
	assert.NotNil(t, got.StartTime)
	assert.Positive(t, got.CheckNumber)
	assert.Equal(t, "Aziz", got.WaiterName)
	assert.Equal(t, 3, got.Guests)
	assert.Equal(t, 70000.0, got.TotalAmount)

	first := got.CheckNumber

	// More items on the same occupancy keep the check number
	_, err = svc.AddItem(table.ID, product.ID, 1, Waiter{Name: "Aziz"})
	require.NoError(t, err)
	assert.Equal(t, first, reloadTable(t, table.ID).CheckNumber)
	assert.Equal(t, 105000.0, reloadTable(t, table.ID).TotalAmount)
}

func TestAddBulkItemsKeepsTotalInvariant(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	tea := makeProduct(t, "Tea", 5000, false, 0)
	kebab := makeProduct(t, "Kebab", 28000, false, 0)

	svc := NewOrderService(deps)
	_, err := svc.AddBulkItems(table.ID, []BulkItem{
		{ProductID: tea.ID, Name: "Tea", Price: 5000, Quantity: 2},
		{ProductID: kebab.ID, Name: "Kebab", Price: 28000, Quantity: 3},
	}, Waiter{Name: "Lola"})
	require.NoError(t, err)

	items, err := svc.Items(table.ID)
	require.NoError(t, err)
	var sum float64
	for _, item := range items {
		sum += item.Subtotal()
	}
	assert.Equal(t, sum, reloadTable(t, table.ID).TotalAmount)
	assert.Equal(t, 94000.0, sum)
}

func TestAddItemRepairsStaleDestination(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Mojito", 20000, false, 0)
	require.NoError(t, testDB.Model(product).Update("destination", "bar").Error)

	svc := NewOrderService(deps)
	items, err := svc.AddBulkItems(table.ID, []BulkItem{
		{ProductID: product.ID, Name: "Mojito", Price: 20000, Quantity: 1, Destination: "kitchen"},
	}, Waiter{})
	require.NoError(t, err)
	assert.Equal(t, "bar", items[0].Destination)
}

func TestReturnItemPartialAndAudit(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Lagman", 30000, false, 0)

	svc := NewOrderService(deps)
	item, err := svc.AddItem(table.ID, product.ID, 3, Waiter{})
	require.NoError(t, err)

	require.NoError(t, svc.ReturnItem(item.ID, 1, "cold", "Manager"))

	items, err := svc.Items(table.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 60000.0, reloadTable(t, table.ID).TotalAmount)

	var audits []models.ReturnedItem
	require.NoError(t, testDB.Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, 1, audits[0].Quantity)
	assert.Equal(t, "cold", audits[0].Reason)
	assert.Equal(t, "Manager", audits[0].Actor)
}

func TestReturnItemCannotExceedQuantity(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Lagman", 30000, false, 0)

	svc := NewOrderService(deps)
	item, err := svc.AddItem(table.ID, product.ID, 2, Waiter{})
	require.NoError(t, err)

	err = svc.ReturnItem(item.ID, 3, "", "")
	assert.ErrorIs(t, err, ErrQuantityExceedsAvailable)
	assert.Equal(t, 60000.0, reloadTable(t, table.ID).TotalAmount)
}

func TestRemoveLastItemFreesTable(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Tea", 5000, false, 0)

	svc := NewOrderService(deps)
	item, err := svc.AddItem(table.ID, product.ID, 1, Waiter{Name: "Aziz", Guests: 2})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(item.ID, "changed mind", "Aziz"))

	got := reloadTable(t, table.ID)
	assert.Equal(t, models.TableFree, got.Status)
	assert.Zero(t, got.TotalAmount)
	assert.Zero(t, got.CheckNumber)
	assert.Zero(t, got.Guests)
	assert.Empty(t, got.WaiterName)
	assert.Nil(t, got.StartTime)
}

func TestMoveTableToFreeTarget(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	source := makeTable(t, "T1", 4)
	target := makeTable(t, "T2", 6)
	product := makeProduct(t, "Plov", 35000, false, 0)

	svc := NewOrderService(deps)
	_, err := svc.AddItem(source.ID, product.ID, 2, Waiter{Name: "Aziz", Guests: 2})
	require.NoError(t, err)
	check := reloadTable(t, source.ID).CheckNumber

	require.NoError(t, svc.MoveTable(source.ID, target.ID))

	gotSource := reloadTable(t, source.ID)
	gotTarget := reloadTable(t, target.ID)
	assert.Equal(t, models.TableFree, gotSource.Status)
	assert.Zero(t, gotSource.TotalAmount)
	assert.Equal(t, models.TableOccupied, gotTarget.Status)
	assert.Equal(t, 70000.0, gotTarget.TotalAmount)
	assert.Equal(t, check, gotTarget.CheckNumber)
	assert.Equal(t, "Aziz", gotTarget.WaiterName)

	items, err := svc.Items(target.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMoveTableMergesIntoOccupiedTarget(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	source := makeTable(t, "T1", 4)
	target := makeTable(t, "T2", 6)
	product := makeProduct(t, "Plov", 35000, false, 0)

	svc := NewOrderService(deps)
	_, err := svc.AddItem(source.ID, product.ID, 1, Waiter{Name: "Aziz"})
	require.NoError(t, err)
	_, err = svc.AddItem(target.ID, product.ID, 2, Waiter{Name: "Lola", Guests: 4})
	require.NoError(t, err)
	targetCheck := reloadTable(t, target.ID).CheckNumber

	require.NoError(t, svc.MoveTable(source.ID, target.ID))

	gotTarget := reloadTable(t, target.ID)
	// Merge keeps the target's identity and absorbs the source's items
	assert.Equal(t, 105000.0, gotTarget.TotalAmount)
	assert.Equal(t, targetCheck, gotTarget.CheckNumber)
	assert.Equal(t, "Lola", gotTarget.WaiterName)
	assert.Equal(t, 4, gotTarget.Guests)

	items, err := svc.Items(target.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, models.TableFree, reloadTable(t, source.ID).Status)
}

func TestMoveTableGuards(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	free := makeTable(t, "T1", 4)
	other := makeTable(t, "T2", 4)

	svc := NewOrderService(deps)
	assert.ErrorIs(t, svc.MoveTable(free.ID, free.ID), ErrSameTableMove)
	assert.ErrorIs(t, svc.MoveTable(free.ID, other.ID), ErrTableAlreadyFree)
}

func TestCheckoutSettlesEverythingAtomically(t *testing.T) {
	reset(t)
	deps := testDeps()
	shift := openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	plov := makeProduct(t, "Plov", 35000, true, 20)
	tea := makeProduct(t, "Tea", 5000, false, 0)

	svc := NewOrderService(deps)
	_, err := svc.AddBulkItems(table.ID, []BulkItem{
		{ProductID: plov.ID, Name: "Plov", Price: 35000, Quantity: 2},
		{ProductID: tea.ID, Name: "Tea", Price: 5000, Quantity: 2},
	}, Waiter{Name: "Aziz", Guests: 2})
	require.NoError(t, err)
	check := reloadTable(t, table.ID).CheckNumber

	sale, err := svc.Checkout(CheckoutInput{
		TableID: table.ID,
		Payment: models.Single(models.PaymentCash, 80000),
	})
	require.NoError(t, err)

	assert.Equal(t, shift.ID, sale.ShiftID)
	assert.Equal(t, check, sale.CheckNumber)
	assert.Equal(t, 80000.0, sale.TotalAmount)
	assert.Equal(t, models.PaymentCash, sale.PaymentMethod)

	// One sale item per distinct product
	var saleItems []models.SaleItem
	require.NoError(t, testDB.Where("sale_id = ?", sale.ID).Find(&saleItems).Error)
	assert.Len(t, saleItems, 2)

	// Tracked product stock decremented with a movement row
	assert.Equal(t, 18.0, reloadProduct(t, plov.ID).Stock)
	var movements []models.StockMovement
	require.NoError(t, testDB.Where("product_id = ?", plov.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementSale, movements[0].Type)
	assert.Equal(t, -2.0, movements[0].Quantity)
	assert.Equal(t, 18.0, movements[0].CurrentStock)

	// Untracked product untouched
	var teaMovements int64
	require.NoError(t, testDB.Model(&models.StockMovement{}).
		Where("product_id = ?", tea.ID).Count(&teaMovements).Error)
	assert.Zero(t, teaMovements)

	// Table reset, order cleared, sale queued for sync
	got := reloadTable(t, table.ID)
	assert.Equal(t, models.TableFree, got.Status)
	assert.Zero(t, got.TotalAmount)
	items, err := svc.Items(table.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(1), outboxCount(t, sync.EntitySale))
}

func TestCheckoutKeepsPriceSnapshotsApart(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	plov := makeProduct(t, "Plov", 35000, true, 20)

	// The price changes mid-service; the second line keeps its own snapshot
	svc := NewOrderService(deps)
	_, err := svc.AddBulkItems(table.ID, []BulkItem{
		{ProductID: plov.ID, Name: "Plov", Price: 35000, Quantity: 1},
	}, Waiter{})
	require.NoError(t, err)
	_, err = svc.AddBulkItems(table.ID, []BulkItem{
		{ProductID: plov.ID, Name: "Plov", Price: 40000, Quantity: 1},
	}, Waiter{})
	require.NoError(t, err)

	sale, err := svc.Checkout(CheckoutInput{
		TableID: table.ID,
		Payment: models.Single(models.PaymentCash, 75000),
	})
	require.NoError(t, err)
	assert.Equal(t, 75000.0, sale.TotalAmount)

	var saleItems []models.SaleItem
	require.NoError(t, testDB.Where("sale_id = ?", sale.ID).
		Order("price ASC").Find(&saleItems).Error)
	require.Len(t, saleItems, 2)
	assert.Equal(t, 35000.0, saleItems[0].Total)
	assert.Equal(t, 40000.0, saleItems[1].Total)

	var itemTotal float64
	for _, item := range saleItems {
		itemTotal += item.Total
	}
	assert.Equal(t, sale.TotalAmount, itemTotal)

	// Both snapshots still decrement stock for the same product
	assert.Equal(t, 18.0, reloadProduct(t, plov.ID).Stock)
}

func TestCheckoutSplitWithDebtAndCashback(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Plov", 35000, false, 0)
	customer := makeCustomer(t, "Karim", 5)

	svc := NewOrderService(deps)
	_, err := svc.AddItem(table.ID, product.ID, 2, Waiter{})
	require.NoError(t, err)

	sale, err := svc.Checkout(CheckoutInput{
		TableID: table.ID,
		Payment: models.Split([]models.PaymentLeg{
			{Method: models.PaymentCash, Amount: 40000},
			{Method: models.PaymentDebt, Amount: 30000},
		}),
		CustomerID: &customer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "split", sale.PaymentMethod)

	var got models.Customer
	require.NoError(t, testDB.First(&got, "id = ?", customer.ID).Error)
	assert.Equal(t, 30000.0, got.Debt)
	assert.Equal(t, 3500.0, got.Cashback) // 5% of 70000

	var debts []models.CustomerDebt
	require.NoError(t, testDB.Where("customer_id = ?", customer.ID).Find(&debts).Error)
	require.Len(t, debts, 1)
	assert.Equal(t, models.DebtDue, debts[0].Status)
	require.NotNil(t, debts[0].SaleID)
	assert.Equal(t, sale.ID, *debts[0].SaleID)

	var history []models.DebtHistory
	require.NoError(t, testDB.Where("customer_id = ?", customer.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, 30000.0, history[0].Amount)
	assert.Equal(t, 30000.0, history[0].Balance)
}

func TestCheckoutDebtWithoutCustomerFails(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	product := makeProduct(t, "Plov", 35000, false, 0)

	svc := NewOrderService(deps)
	_, err := svc.AddItem(table.ID, product.ID, 1, Waiter{})
	require.NoError(t, err)

	_, err = svc.Checkout(CheckoutInput{
		TableID: table.ID,
		Payment: models.Split([]models.PaymentLeg{
			{Method: models.PaymentDebt, Amount: 35000},
		}),
	})
	assert.ErrorIs(t, err, ErrCustomerRequired)

	// Nothing settled
	assert.Equal(t, models.TableOccupied, reloadTable(t, table.ID).Status)
}

func TestCheckoutIsAtomicOnMidTransactionFailure(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	plov := makeProduct(t, "Plov", 35000, true, 20)

	svc := NewOrderService(deps)
	_, err := svc.AddBulkItems(table.ID, []BulkItem{
		{ProductID: plov.ID, Name: "Plov", Price: 35000, Quantity: 2},
		// References a product that does not exist; the failure hits
		// after the sale and the first sale item were written.
		{ProductID: "missing-product", Name: "Ghost", Price: 1000, Quantity: 1},
	}, Waiter{})
	require.NoError(t, err)
	require.NoError(t, testDB.Truncate("outbox"))

	_, err = svc.Checkout(CheckoutInput{
		TableID: table.ID,
		Payment: models.Single(models.PaymentCash, 71000),
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// Zero side effects: no sale, no sale items, no movements, no stock
	// change, table still occupied with its items, empty outbox.
	var sales, saleItems, movements int64
	require.NoError(t, testDB.Model(&models.Sale{}).Count(&sales).Error)
	require.NoError(t, testDB.Model(&models.SaleItem{}).Count(&saleItems).Error)
	require.NoError(t, testDB.Model(&models.StockMovement{}).Count(&movements).Error)
	assert.Zero(t, sales)
	assert.Zero(t, saleItems)
	assert.Zero(t, movements)
	assert.Equal(t, 20.0, reloadProduct(t, plov.ID).Stock)
	assert.Equal(t, models.TableOccupied, reloadTable(t, table.ID).Status)
	items, err := svc.Items(table.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(0), outboxCount(t, sync.EntitySale))
}

func TestCancelOrderArchivesAndFreesWithoutStockImpact(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "T1", 4)
	plov := makeProduct(t, "Plov", 35000, true, 20)

	svc := NewOrderService(deps)
	_, err := svc.AddItem(table.ID, plov.ID, 2, Waiter{})
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(table.ID, "guest left"))

	got := reloadTable(t, table.ID)
	assert.Equal(t, models.TableFree, got.Status)
	assert.Equal(t, 20.0, reloadProduct(t, plov.ID).Stock)

	var archives []models.CancelledOrder
	require.NoError(t, testDB.Find(&archives).Error)
	require.Len(t, archives, 1)
	assert.Equal(t, "guest left", archives[0].Reason)
	assert.Equal(t, 70000.0, archives[0].Total)

	assert.ErrorIs(t, svc.CancelOrder(table.ID, "again"), ErrTableAlreadyFree)
}

func TestLegacyTableIDResolvesByName(t *testing.T) {
	reset(t)
	deps := testDeps()
	openTestShift(t, deps)
	table := makeTable(t, "12", 4)
	product := makeProduct(t, "Tea", 5000, false, 0)

	svc := NewOrderService(deps)
	// A stale terminal submits "table-12" instead of the current id
	_, err := svc.AddItem("table-12", product.ID, 1, Waiter{})
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, reloadTable(t, table.ID).Status)
}

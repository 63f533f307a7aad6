package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tezpos/tezpos/internal/models"
)

func TestReconcileSingleMethodSales(t *testing.T) {
	sales := []models.Sale{
		{TotalAmount: 250000, Payment: models.Single(models.PaymentCash, 250000)},
		{TotalAmount: 80000, Payment: models.Single(models.PaymentCard, 80000)},
	}

	totals := Reconcile(100000, sales, 340000, 80000)

	assert.Equal(t, 330000.0, totals.TotalSales)
	assert.Equal(t, 250000.0, totals.TotalCash)
	assert.Equal(t, 80000.0, totals.TotalCard)
	assert.Equal(t, 350000.0, totals.ExpectedCash)
	assert.Equal(t, -10000.0, totals.DiffCash)
	assert.Equal(t, 0.0, totals.DiffCard)
}

func TestReconcileSplitLegsPerMethod(t *testing.T) {
	// A split sale must contribute each leg to its own method, never the
	// sale total to a single bucket.
	sales := []models.Sale{
		{TotalAmount: 120000, Payment: models.Split([]models.PaymentLeg{
			{Method: models.PaymentCash, Amount: 70000},
			{Method: models.PaymentCard, Amount: 30000},
			{Method: models.PaymentDebt, Amount: 20000},
		})},
		{TotalAmount: 50000, Payment: models.Single(models.PaymentTransfer, 50000)},
	}

	totals := Reconcile(0, sales, 70000, 30000)

	assert.Equal(t, 170000.0, totals.TotalSales)
	assert.Equal(t, 70000.0, totals.TotalCash)
	assert.Equal(t, 30000.0, totals.TotalCard)
	assert.Equal(t, 50000.0, totals.TotalTransfer)
	assert.Equal(t, 20000.0, totals.TotalDebt)
	assert.Equal(t, 70000.0, totals.ExpectedCash)
	assert.Equal(t, 0.0, totals.DiffCash)
	assert.Equal(t, 0.0, totals.DiffCard)
}

func TestReconcileNoSales(t *testing.T) {
	totals := Reconcile(50000, nil, 50000, 0)

	assert.Equal(t, 0.0, totals.TotalSales)
	assert.Equal(t, 50000.0, totals.ExpectedCash)
	assert.Equal(t, 0.0, totals.DiffCash)
}

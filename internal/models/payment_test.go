package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentBreakdownSingle(t *testing.T) {
	p := Single(PaymentCash, 150000)

	assert.False(t, p.IsSplit())
	assert.Equal(t, 150000.0, p.Total())
	assert.Equal(t, map[string]float64{PaymentCash: 150000}, p.PerMethod())
	assert.Equal(t, 0.0, p.DebtAmount())
	assert.Nil(t, p.DebtDueDate())
}

func TestPaymentBreakdownSplit(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Split([]PaymentLeg{
		{Method: PaymentCash, Amount: 100000},
		{Method: PaymentCard, Amount: 50000},
		{Method: PaymentDebt, Amount: 30000, DueDate: &due},
	})

	assert.True(t, p.IsSplit())
	assert.Equal(t, 180000.0, p.Total())

	perMethod := p.PerMethod()
	assert.Equal(t, 100000.0, perMethod[PaymentCash])
	assert.Equal(t, 50000.0, perMethod[PaymentCard])
	assert.Equal(t, 30000.0, perMethod[PaymentDebt])

	assert.Equal(t, 30000.0, p.DebtAmount())
	require.NotNil(t, p.DebtDueDate())
	assert.Equal(t, due, *p.DebtDueDate())
}

func TestPaymentBreakdownSplitSameMethodLegs(t *testing.T) {
	p := Split([]PaymentLeg{
		{Method: PaymentCash, Amount: 20000},
		{Method: PaymentCash, Amount: 15000},
	})

	assert.Equal(t, 35000.0, p.PerMethod()[PaymentCash])
}

func TestPaymentBreakdownEarliestDueDate(t *testing.T) {
	early := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	p := Split([]PaymentLeg{
		{Method: PaymentDebt, Amount: 10000, DueDate: &late},
		{Method: PaymentDebt, Amount: 5000, DueDate: &early},
	})

	require.NotNil(t, p.DebtDueDate())
	assert.Equal(t, early, *p.DebtDueDate())
}

func TestPaymentBreakdownValueScanRoundTrip(t *testing.T) {
	original := Split([]PaymentLeg{
		{Method: PaymentCard, Amount: 75000},
		{Method: PaymentDebt, Amount: 25000},
	})

	value, err := original.Value()
	require.NoError(t, err)

	var decoded PaymentBreakdown
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestPaymentBreakdownScanNil(t *testing.T) {
	p := Single(PaymentCash, 100)
	require.NoError(t, p.Scan(nil))
	assert.Equal(t, PaymentBreakdown{}, p)
}

func TestPaymentBreakdownJSONMatchesStorageShape(t *testing.T) {
	p := Single(PaymentCard, 42000)

	fromJSON, err := json.Marshal(p)
	require.NoError(t, err)
	fromValue, err := p.Value()
	require.NoError(t, err)
	assert.JSONEq(t, string(fromValue.([]byte)), string(fromJSON))

	var decoded PaymentBreakdown
	require.NoError(t, json.Unmarshal(fromJSON, &decoded))
	assert.Equal(t, p, decoded)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tezpos/tezpos/internal/models"
)

func TestStaffAuthenticateByPIN(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewStaffService(deps)

	waiter, err := svc.Create(StaffInput{Name: "Aziz", Role: "waiter", PIN: "1234"})
	require.NoError(t, err)
	_, err = svc.Create(StaffInput{Name: "Dilnoza", Role: "cashier", PIN: "5678"})
	require.NoError(t, err)

	got, err := svc.Authenticate("1234")
	require.NoError(t, err)
	assert.Equal(t, waiter.ID, got.ID)
	assert.Equal(t, models.RoleWaiter, got.Role)

	_, err = svc.Authenticate("0000")
	assert.ErrorIs(t, err, ErrInvalidPIN)
}

func TestStaffPINNeverStoredInClear(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewStaffService(deps)

	created, err := svc.Create(StaffInput{Name: "Aziz", Role: "waiter", PIN: "1234"})
	require.NoError(t, err)

	var raw models.Staff
	require.NoError(t, testDB.First(&raw, "id = ?", created.ID).Error)
	assert.NotEmpty(t, raw.PinHash)
	assert.NotContains(t, raw.PinHash, "1234")
}

func TestDeletedStaffCannotAuthenticate(t *testing.T) {
	reset(t)
	deps := testDeps()
	svc := NewStaffService(deps)

	created, err := svc.Create(StaffInput{Name: "Aziz", Role: "waiter", PIN: "1234"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(created.ID))

	_, err = svc.Authenticate("1234")
	assert.ErrorIs(t, err, ErrInvalidPIN)
}

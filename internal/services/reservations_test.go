package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tezpos/tezpos/internal/models"
)

func reservationAt(offset time.Duration) time.Time {
	return time.Now().UTC().Add(offset).Truncate(time.Minute)
}

func TestCreateReservationOnRequestedTable(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)

	svc := NewReservationService(deps)
	reservation, err := svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         reservationAt(3 * time.Hour),
		Guests:       2,
	})
	require.NoError(t, err)
	require.NotNil(t, reservation.TableID)
	assert.Equal(t, table.ID, *reservation.TableID)
	assert.Equal(t, models.ReservationActive, reservation.Status)
}

func TestCreateReservationRejectsPastTime(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)

	svc := NewReservationService(deps)
	_, err := svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         reservationAt(-time.Hour),
		Guests:       2,
	})
	assert.ErrorIs(t, err, ErrReservationInPast)

	// Inside the grace window is accepted
	_, err = svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         time.Now().UTC().Add(-2 * time.Minute),
		Guests:       2,
	})
	assert.NoError(t, err)
}

func TestOverlappingWindowsConflict(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)
	base := reservationAt(4 * time.Hour)

	svc := NewReservationService(deps)
	_, err := svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         base,
		Guests:       2,
	})
	require.NoError(t, err)

	// One hour later overlaps the two-hour window
	_, err = svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Olim",
		Time:         base.Add(time.Hour),
		Guests:       2,
	})
	assert.ErrorIs(t, err, ErrTableConflict)

	// Exactly one window later is back-to-back and allowed
	_, err = svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Olim",
		Time:         base.Add(2 * time.Hour),
		Guests:       2,
	})
	assert.NoError(t, err)
}

func TestBestFitAssignsSmallestSufficientTable(t *testing.T) {
	reset(t)
	deps := testDeps()
	makeTable(t, "Small", 2)
	medium := makeTable(t, "Medium", 4)
	makeTable(t, "Large", 8)

	svc := NewReservationService(deps)
	reservation, err := svc.Create(ReservationInput{
		CustomerName: "Karim",
		Time:         reservationAt(3 * time.Hour),
		Guests:       4,
	})
	require.NoError(t, err)
	require.NotNil(t, reservation.TableID)
	assert.Equal(t, medium.ID, *reservation.TableID)
}

func TestNoFittingTableAcceptsUnassigned(t *testing.T) {
	reset(t)
	deps := testDeps()
	makeTable(t, "Small", 2)

	svc := NewReservationService(deps)
	reservation, err := svc.Create(ReservationInput{
		CustomerName: "Karim",
		Time:         reservationAt(3 * time.Hour),
		Guests:       10,
	})
	require.NoError(t, err)
	assert.Nil(t, reservation.TableID)
}

func TestUpdateKeepsOwnTableDespiteOwnWindow(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)
	base := reservationAt(5 * time.Hour)

	svc := NewReservationService(deps)
	reservation, err := svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         base,
		Guests:       2,
	})
	require.NoError(t, err)

	// Shifting by 30 minutes overlaps its own old window; the exclusion
	// makes the reservation keep its table.
	updated, err := svc.Update(reservation.ID, ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         base.Add(30 * time.Minute),
		Guests:       3,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TableID)
	assert.Equal(t, table.ID, *updated.TableID)
	assert.Equal(t, 3, updated.Guests)
}

func TestStatusTransitionsFreeTheWindow(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)
	base := reservationAt(4 * time.Hour)

	svc := NewReservationService(deps)
	reservation, err := svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         base,
		Guests:       2,
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(reservation.ID, models.ReservationCancelled)
	require.NoError(t, err)

	// A cancelled reservation no longer blocks the table
	_, err = svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Olim",
		Time:         base.Add(time.Hour),
		Guests:       2,
	})
	assert.NoError(t, err)
}

func TestDeleteTombstonesReservation(t *testing.T) {
	reset(t)
	deps := testDeps()
	table := makeTable(t, "T1", 4)

	svc := NewReservationService(deps)
	reservation, err := svc.Create(ReservationInput{
		TableID:      &table.ID,
		CustomerName: "Karim",
		Time:         reservationAt(3 * time.Hour),
		Guests:       2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(reservation.ID))

	list, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	// Row stays for sync, with a tombstone
	var raw models.Reservation
	require.NoError(t, testDB.First(&raw, "id = ?", reservation.ID).Error)
	assert.NotNil(t, raw.DeletedAt)

	assert.ErrorIs(t, svc.Delete(reservation.ID), ErrReservationNotFound)
}

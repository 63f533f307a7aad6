package services

import "errors"

// Precondition violations. Surfaced synchronously to the caller, never
// retried automatically, never leave partial writes behind.
var (
	ErrShiftNotOpen             = errors.New("no open shift")
	ErrShiftAlreadyOpen         = errors.New("a shift is already open")
	ErrActiveTablesExist        = errors.New("tables must be settled before closing the shift")
	ErrTableAlreadyFree         = errors.New("table is already free")
	ErrTableOccupied            = errors.New("table has an open order")
	ErrSameTableMove            = errors.New("source and target table are the same")
	ErrQuantityExceedsAvailable = errors.New("quantity exceeds available amount")
	ErrSupplyCompleted          = errors.New("supply is already completed")
	ErrSupplyEmpty              = errors.New("supply has no items")
	ErrInvalidMovementType      = errors.New("invalid stock movement type")
	ErrTableConflict            = errors.New("table is reserved for that time")
	ErrReservationInPast        = errors.New("reservation time is in the past")
	ErrCustomerRequired         = errors.New("debt payment requires a customer")
	ErrInvalidAmount            = errors.New("amount must be positive")
)

// Not-found errors. Callers may attempt a legacy-id recovery lookup before
// failing permanently.
var (
	ErrTableNotFound       = errors.New("table not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderItemNotFound   = errors.New("order item not found")
	ErrSupplyNotFound      = errors.New("supply not found")
	ErrSupplyItemNotFound  = errors.New("supply item not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrShiftNotFound       = errors.New("shift not found")
	ErrStaffNotFound       = errors.New("staff member not found")
)

// NotFound reports whether err belongs to the not-found class
func NotFound(err error) bool {
	switch {
	case errors.Is(err, ErrTableNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrOrderItemNotFound),
		errors.Is(err, ErrSupplyNotFound),
		errors.Is(err, ErrSupplyItemNotFound),
		errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrReservationNotFound),
		errors.Is(err, ErrShiftNotFound),
		errors.Is(err, ErrStaffNotFound):
		return true
	}
	return false
}

// Precondition reports whether err belongs to the precondition class
func Precondition(err error) bool {
	switch {
	case errors.Is(err, ErrShiftNotOpen),
		errors.Is(err, ErrShiftAlreadyOpen),
		errors.Is(err, ErrActiveTablesExist),
		errors.Is(err, ErrTableAlreadyFree),
		errors.Is(err, ErrTableOccupied),
		errors.Is(err, ErrSameTableMove),
		errors.Is(err, ErrQuantityExceedsAvailable),
		errors.Is(err, ErrSupplyCompleted),
		errors.Is(err, ErrSupplyEmpty),
		errors.Is(err, ErrInvalidMovementType),
		errors.Is(err, ErrTableConflict),
		errors.Is(err, ErrReservationInPast),
		errors.Is(err, ErrCustomerRequired),
		errors.Is(err, ErrInvalidAmount):
		return true
	}
	return false
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the acting user lacks ownership of
	// the rental or the role an operation requires.
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// ErrInvalidRate is returned when a vehicle's daily rate is zero or
	// negative at pricing time.
	ErrInvalidRate = errors.New("daily rate must be positive")

	// ErrVehicleUnavailable is returned when a rental is requested for a
	// vehicle that is not in the available status.
	ErrVehicleUnavailable = errors.New("this vehicle is not available for rental")

	// ErrVehicleHasRentals is returned when deleting a vehicle that is
	// still referenced by a non-terminal rental.
	ErrVehicleHasRentals = errors.New("cannot delete vehicle with active rentals")

	// ErrSerialNumberTaken is returned when a vehicle write collides
	// with the unique serial number of another vehicle.
	ErrSerialNumberTaken = errors.New("a vehicle with this serial number already exists")
)

// NotFoundError reports an absent vehicle, rental or user.
type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidTransitionError reports a status edge that is not in the
// allowed set, carrying the allowed set for client-side guidance.
type InvalidTransitionError struct {
	Current   RentalStatus
	Requested RentalStatus
	Allowed   []RentalStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %q to %q", e.Current, e.Requested)
}

// ConflictError reports an overlap detected at booking or approval
// time, carrying the contested vehicle and interval.
type ConflictError struct {
	VehicleID int32
	Period    DateRange
	Reason    string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("vehicle %d is already booked for %s to %s",
		e.VehicleID, e.Period.Start, e.Period.End)
}

// InvalidIntervalError reports a malformed or reversed date interval.
type InvalidIntervalError struct {
	Start string
	End   string
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid rental interval: start %q, end %q", e.Start, e.End)
}

// TransactionError wraps a store-level atomic-commit failure. All
// writes of the failed unit have been rolled back; the operation is
// safe to retry.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending       RentalStatus = "pending"
	RentalStatusApproved      RentalStatus = "approved"
	RentalStatusDenied        RentalStatus = "denied"
	RentalStatusCancelled     RentalStatus = "cancelled"
	RentalStatusPendingPickup RentalStatus = "pending_pickup"
	RentalStatusRented        RentalStatus = "rented"
	RentalStatusPendingReturn RentalStatus = "pending_return"
	RentalStatusReturned      RentalStatus = "returned"
)

// RentalStatuses lists every valid status, in lifecycle order.
func RentalStatuses() []RentalStatus {
	return []RentalStatus{
		RentalStatusPending,
		RentalStatusApproved,
		RentalStatusDenied,
		RentalStatusCancelled,
		RentalStatusPendingPickup,
		RentalStatusRented,
		RentalStatusPendingReturn,
		RentalStatusReturned,
	}
}

func (s RentalStatus) Valid() bool {
	for _, known := range RentalStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the set of statuses a rental in status s
// may move to. Terminal statuses return an empty set.
func AllowedTransitions(s RentalStatus) []RentalStatus {
	switch s {
	case RentalStatusPending:
		return []RentalStatus{RentalStatusApproved, RentalStatusDenied, RentalStatusCancelled}
	case RentalStatusApproved:
		return []RentalStatus{RentalStatusPendingPickup, RentalStatusDenied, RentalStatusCancelled}
	case RentalStatusPendingPickup:
		return []RentalStatus{RentalStatusRented, RentalStatusCancelled}
	case RentalStatusRented:
		return []RentalStatus{RentalStatusPendingReturn, RentalStatusReturned}
	case RentalStatusPendingReturn:
		return []RentalStatus{RentalStatusReturned}
	default:
		return nil
	}
}

// CanTransitionTo reports whether the edge s -> target is in the
// transition table.
func (s RentalStatus) CanTransitionTo(target RentalStatus) bool {
	for _, allowed := range AllowedTransitions(s) {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusDenied, RentalStatusCancelled, RentalStatusReturned:
		return true
	}
	return false
}

// IsBlocking reports whether a rental in status s reserves the vehicle
// against competing bookings. Pending rentals never block: competitive
// booking is allowed until one request is approved.
func (s RentalStatus) IsBlocking() bool {
	switch s {
	case RentalStatusApproved, RentalStatusPendingPickup, RentalStatusRented, RentalStatusPendingReturn:
		return true
	}
	return false
}

// Label returns the human-readable display name for s. This is a pure
// display mapping; the wire format is always the lowercase status.
func (s RentalStatus) Label() string {
	switch s {
	case RentalStatusPending:
		return "Pending Approval"
	case RentalStatusApproved:
		return "Approved"
	case RentalStatusDenied:
		return "Denied"
	case RentalStatusCancelled:
		return "Cancelled"
	case RentalStatusPendingPickup:
		return "Pending Pickup"
	case RentalStatusRented:
		return "Currently Rented"
	case RentalStatusPendingReturn:
		return "Pending Return"
	case RentalStatusReturned:
		return "Returned"
	default:
		return string(s)
	}
}

type Rental struct {
	ID              int32        `json:"id"`
	UserID          int32        `json:"user_id"`
	VehicleID       int32        `json:"vehicle_id"`
	Status          RentalStatus `json:"status"`
	StartDate       Date         `json:"-"`
	EndDate         Date         `json:"-"`
	TotalPriceCents int32        `json:"total_price_cents"`
	Notes           string       `json:"notes"`
	CreatedOn       time.Time    `json:"created_on"`
	UpdatedOn       time.Time    `json:"updated_on"`
}

// Period returns the rental's inclusive calendar-date interval.
func (r *Rental) Period() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// IsActive reports whether the rental still counts against the vehicle
// (any non-terminal status).
func (r *Rental) IsActive() bool {
	return !r.Status.IsTerminal()
}

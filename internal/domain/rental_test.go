package domain_test

import (
	"testing"

	"atv-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRentalStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    domain.RentalStatus
		to      domain.RentalStatus
		allowed bool
	}{
		{domain.RentalStatusPending, domain.RentalStatusApproved, true},
		{domain.RentalStatusPending, domain.RentalStatusDenied, true},
		{domain.RentalStatusPending, domain.RentalStatusCancelled, true},
		{domain.RentalStatusPending, domain.RentalStatusRented, false},
		{domain.RentalStatusPending, domain.RentalStatusReturned, false},
		{domain.RentalStatusPending, domain.RentalStatusPendingPickup, false},

		{domain.RentalStatusApproved, domain.RentalStatusPendingPickup, true},
		{domain.RentalStatusApproved, domain.RentalStatusDenied, true},
		{domain.RentalStatusApproved, domain.RentalStatusCancelled, true},
		{domain.RentalStatusApproved, domain.RentalStatusRented, false},
		{domain.RentalStatusApproved, domain.RentalStatusPending, false},

		{domain.RentalStatusPendingPickup, domain.RentalStatusRented, true},
		{domain.RentalStatusPendingPickup, domain.RentalStatusCancelled, true},
		{domain.RentalStatusPendingPickup, domain.RentalStatusDenied, false},
		{domain.RentalStatusPendingPickup, domain.RentalStatusApproved, false},

		{domain.RentalStatusRented, domain.RentalStatusPendingReturn, true},
		{domain.RentalStatusRented, domain.RentalStatusReturned, true},
		{domain.RentalStatusRented, domain.RentalStatusCancelled, false},

		{domain.RentalStatusPendingReturn, domain.RentalStatusReturned, true},
		{domain.RentalStatusPendingReturn, domain.RentalStatusRented, false},

		{domain.RentalStatusDenied, domain.RentalStatusPending, false},
		{domain.RentalStatusDenied, domain.RentalStatusApproved, false},
		{domain.RentalStatusCancelled, domain.RentalStatusPending, false},
		{domain.RentalStatusReturned, domain.RentalStatusRented, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestRentalStatus_SelfTransitionsNeverAllowed(t *testing.T) {
	for _, s := range domain.RentalStatuses() {
		assert.False(t, s.CanTransitionTo(s), "%s -> %s should not be allowed", s, s)
	}
}

func TestRentalStatus_IsTerminal(t *testing.T) {
	terminal := map[domain.RentalStatus]bool{
		domain.RentalStatusDenied:    true,
		domain.RentalStatusCancelled: true,
		domain.RentalStatusReturned:  true,
	}
	for _, s := range domain.RentalStatuses() {
		assert.Equal(t, terminal[s], s.IsTerminal(), "status %s", s)
		if s.IsTerminal() {
			assert.Empty(t, domain.AllowedTransitions(s), "terminal status %s must have no outgoing edges", s)
		} else {
			assert.NotEmpty(t, domain.AllowedTransitions(s), "non-terminal status %s must have outgoing edges", s)
		}
	}
}

func TestRentalStatus_IsBlocking(t *testing.T) {
	blocking := map[domain.RentalStatus]bool{
		domain.RentalStatusApproved:      true,
		domain.RentalStatusPendingPickup: true,
		domain.RentalStatusRented:        true,
		domain.RentalStatusPendingReturn: true,
	}
	for _, s := range domain.RentalStatuses() {
		assert.Equal(t, blocking[s], s.IsBlocking(), "status %s", s)
	}

	// Competitive booking: a pending request must never reserve the
	// vehicle against other customers.
	assert.False(t, domain.RentalStatusPending.IsBlocking())
}

func TestRentalStatus_Valid(t *testing.T) {
	for _, s := range domain.RentalStatuses() {
		assert.True(t, s.Valid())
	}
	assert.False(t, domain.RentalStatus("active").Valid())
	assert.False(t, domain.RentalStatus("PENDING").Valid())
	assert.False(t, domain.RentalStatus("").Valid())
}

func TestRentalStatus_Label(t *testing.T) {
	assert.Equal(t, "Pending Approval", domain.RentalStatusPending.Label())
	assert.Equal(t, "Currently Rented", domain.RentalStatusRented.Label())
	assert.Equal(t, "Pending Return", domain.RentalStatusPendingReturn.Label())
}

func TestRental_IsActive(t *testing.T) {
	rt := &domain.Rental{Status: domain.RentalStatusPending}
	assert.True(t, rt.IsActive())

	rt.Status = domain.RentalStatusReturned
	assert.False(t, rt.IsActive())
}

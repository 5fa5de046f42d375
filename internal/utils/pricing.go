package utils

import (
	"atv-rental-backend/internal/domain"
)

// RentalDays returns the chargeable day count for an inclusive
// calendar-date interval. Dec 13 to Dec 14 is 2 days (Dec 13 AND
// Dec 14); a same-day rental is 1 day. The minimum is always 1.
func RentalDays(start, end domain.Date) (int, error) {
	period, err := domain.NewDateRange(start, end)
	if err != nil {
		return 0, err
	}
	return period.Days(), nil
}

// CalculateRentalCost computes the total price in cents for renting a
// vehicle from start to end at the given daily rate. Dates must
// already be normalized calendar dates; the day count is inclusive of
// both ends.
func CalculateRentalCost(start, end domain.Date, dailyRateCents int32) (int32, error) {
	if dailyRateCents <= 0 {
		return 0, domain.ErrInvalidRate
	}

	days, err := RentalDays(start, end)
	if err != nil {
		return 0, err
	}

	return int32(days) * dailyRateCents, nil
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time-of-day and no timezone. All
// overlap checks and price calculations work on Date values so that a
// rental for Dec 13 means Dec 13 regardless of server timezone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date. ISO
// timestamps (2025-12-13T00:00:00Z) are accepted by truncating to the
// date part, matching what booking clients actually send.
func ParseDate(dateStr string) (Date, error) {
	if len(dateStr) > 10 {
		dateStr = dateStr[:10]
	}

	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	d := Date{Year: year, Month: month, Day: day}
	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("day %d is out of range for %04d-%02d", day, year, month)
	}

	return d, nil
}

// DateOf strips the time-of-day component from t, reading the calendar
// date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// DaysInMonth returns the number of days in a given month.
func DaysInMonth(year, month int) int {
	if month == 2 {
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns the date at UTC midnight, for persistence and date
// arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) After(o Date) bool {
	return d.Time().After(o.Time())
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// DateRange is an inclusive calendar-date interval. Start == End is a
// valid one-day range.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange validates end >= start.
func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, &InvalidIntervalError{Start: start.String(), End: end.String()}
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps reports whether two inclusive intervals share at least one
// day: s1 <= e2 && e1 >= s2.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Days returns the inclusive day count of the range. Dec 13 to Dec 14
// is 2 days; a same-day range is 1 day.
func (r DateRange) Days() int {
	days := int(r.End.Time().Sub(r.Start.Time()).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

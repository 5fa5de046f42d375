package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusRented, VehicleStatusMaintenance:
		return true
	}
	return false
}

// Vehicle is an ATV in the rental fleet. Its status is derived from
// rental lifecycle transitions: outside staff edits, only the rental
// service's side-effect path writes it.
type Vehicle struct {
	ID              int32         `json:"id"`
	Name            string        `json:"name"`
	Type            string        `json:"type"`
	SerialNumber    string        `json:"serial_number"`
	DailyPriceCents int32         `json:"daily_price_cents"`
	Status          VehicleStatus `json:"status"`
	ImageKey        string        `json:"image_key,omitempty"`
	Description     string        `json:"description,omitempty"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

func (v *Vehicle) IsAvailable() bool {
	return v.Status == VehicleStatusAvailable
}

func (v *Vehicle) IsRented() bool {
	return v.Status == VehicleStatusRented
}

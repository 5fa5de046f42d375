package repository

import (
	"context"

	"atv-rental-backend/internal/domain"
)

// Transactor runs fn inside a single store transaction. Every write
// issued through a repository within fn lands atomically, or none do.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error)
}

// VehicleFilter narrows vehicle listings. Zero values mean "no filter".
type VehicleFilter struct {
	Search        string
	Type          string
	Status        domain.VehicleStatus
	MinPriceCents int32
	MaxPriceCents int32
	SortBy        string
	SortOrder     string
	Page          int32
	PageSize      int32
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	// GetByIDForUpdate reads the vehicle with a row lock. Only
	// meaningful inside a transaction; approval uses it to serialize
	// concurrent check-then-write attempts on the same vehicle.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	UpdateStatus(ctx context.Context, id int32, status domain.VehicleStatus) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, int32, error)
	ListTypes(ctx context.Context) ([]string, error)
}

// RentalFilter narrows rental listings. Zero values mean "no filter".
type RentalFilter struct {
	UserID    int32
	VehicleID int32
	Status    domain.RentalStatus
	From      domain.Date
	To        domain.Date
	Page      int32
	PageSize  int32
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	// UpdateStatus moves the rental from one status to another. The
	// write carries the expected current status, so a transition
	// committed by someone else between read and write fails with
	// InvalidTransitionError instead of being overwritten.
	UpdateStatus(ctx context.Context, id int32, from, to domain.RentalStatus, notes string) error
	List(ctx context.Context, filter RentalFilter) ([]domain.Rental, int32, error)

	// HasUserOverlap reports whether userID already holds a non-terminal
	// rental on the vehicle overlapping the period (duplicate guard).
	HasUserOverlap(ctx context.Context, vehicleID, userID int32, period domain.DateRange) (bool, error)

	// HasBlockingOverlap reports whether any rental in a blocking status
	// overlaps the period on the vehicle. Pending rentals never block.
	// excludeUserID and excludeRentalID are optional (0 = no exclusion):
	// booking passes the requesting user, approval passes the rental
	// under approval.
	HasBlockingOverlap(ctx context.Context, vehicleID int32, period domain.DateRange, excludeUserID, excludeRentalID int32) (bool, error)

	// DenyOverlappingPending marks every other pending rental on the
	// vehicle whose interval overlaps the period as denied, returning
	// the number of rentals denied.
	DenyOverlappingPending(ctx context.Context, vehicleID, excludeRentalID int32, period domain.DateRange) (int64, error)

	// HasOtherRented reports whether a rental other than excludeRentalID
	// currently holds the vehicle in status rented.
	HasOtherRented(ctx context.Context, vehicleID, excludeRentalID int32) (bool, error)

	// HasActiveForVehicle reports whether any non-terminal rental
	// references the vehicle (delete guard).
	HasActiveForVehicle(ctx context.Context, vehicleID int32) (bool, error)
}

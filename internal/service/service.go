package service

import (
	"context"
	"io"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, username, fullName, email, password string) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, login, password string) (*domain.User, string, string, error) // user, access, refresh
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	ChangePassword(ctx context.Context, userID int32, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int32, fullName, email string) (*domain.User, error)
}

type VehicleService interface {
	CreateVehicle(ctx context.Context, actor domain.Actor, vehicle *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, actor domain.Actor, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, actor domain.Actor, id int32) error
	ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int32, error)
	ListTypes(ctx context.Context) ([]string, error)
	UploadImage(ctx context.Context, actor domain.Actor, vehicleID int32, filename, contentType string, r io.Reader) (*domain.Vehicle, error)
}

type RentalService interface {
	// RequestRental creates a pending rental for the acting user after
	// the duplicate and cross-user overlap checks pass.
	RequestRental(ctx context.Context, actor domain.Actor, vehicleID int32, startDate, endDate, notes string) (*domain.Rental, error)

	// Transition moves a rental along the status graph (staff only),
	// applying the vehicle-status sync and, on approval, the
	// auto-denial of competing pending requests.
	Transition(ctx context.Context, actor domain.Actor, rentalID int32, target domain.RentalStatus, notes string) (*domain.Rental, error)

	// Cancel is the customer-initiated terminal branch, allowed while
	// the rental is pending or approved.
	Cancel(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error)

	// RequestPickup moves the caller's approved rental to
	// pending_pickup.
	RequestPickup(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error)

	// RequestReturn moves the caller's rented rental to pending_return.
	RequestReturn(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error)

	GetRental(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error)
	ListRentals(ctx context.Context, actor domain.Actor, filter repository.RentalFilter) ([]domain.Rental, int32, error)
}

type UserService interface {
	ListUsers(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.User, int32, error)
	GetUser(ctx context.Context, actor domain.Actor, id int32) (*domain.User, error)
	CreateUser(ctx context.Context, actor domain.Actor, user *domain.User, password string) error
	UpdateUser(ctx context.Context, actor domain.Actor, user *domain.User) (*domain.User, error)
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, name, token string) error
	SendPasswordResetEmail(ctx context.Context, email, name, token string) error
	SendRentalDecisionNotification(ctx context.Context, email, name, vehicleName string, approved bool) error
}

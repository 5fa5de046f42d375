package service_test

import (
	"context"
	"io"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockTransactor runs the unit of work directly against the mocks; the
// services only require that everything inside fn shares one context.
// Calls counts transactional units so tests can assert a write ran
// inside one.
type MockTransactor struct {
	Calls int
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}
func (m *MockVehicleRepo) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}
func (m *MockVehicleRepo) UpdateStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockVehicleRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockVehicleRepo) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Vehicle), args.Get(1).(int32), args.Error(2)
}
func (m *MockVehicleRepo) ListTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.RentalStatus, notes string) error {
	args := m.Called(ctx, id, from, to, notes)
	return args.Error(0)
}
func (m *MockRentalRepo) List(ctx context.Context, filter repository.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) HasUserOverlap(ctx context.Context, vehicleID, userID int32, period domain.DateRange) (bool, error) {
	args := m.Called(ctx, vehicleID, userID, period)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) HasBlockingOverlap(ctx context.Context, vehicleID int32, period domain.DateRange, excludeUserID, excludeRentalID int32) (bool, error) {
	args := m.Called(ctx, vehicleID, period, excludeUserID, excludeRentalID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) DenyOverlappingPending(ctx context.Context, vehicleID, excludeRentalID int32, period domain.DateRange) (int64, error) {
	args := m.Called(ctx, vehicleID, excludeRentalID, period)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRentalRepo) HasOtherRented(ctx context.Context, vehicleID, excludeRentalID int32) (bool, error) {
	args := m.Called(ctx, vehicleID, excludeRentalID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) HasActiveForVehicle(ctx context.Context, vehicleID int32) (bool, error) {
	args := m.Called(ctx, vehicleID)
	return args.Bool(0), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationEmail(ctx context.Context, email, name, token string) error {
	args := m.Called(ctx, email, name, token)
	return args.Error(0)
}
func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, name, token string) error {
	args := m.Called(ctx, email, name, token)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalDecisionNotification(ctx context.Context, email, name, vehicleName string, approved bool) error {
	args := m.Called(ctx, email, name, vehicleName, approved)
	return args.Error(0)
}

// MockBlobStorage
type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	args := m.Called(ctx, key, contentType, r)
	return args.Error(0)
}
func (m *MockBlobStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockBlobStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockBlobStorage) URL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

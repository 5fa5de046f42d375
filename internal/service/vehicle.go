package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/repository"
	"atv-rental-backend/internal/storage"

	"github.com/google/uuid"
)

// ErrVehicleStatusLocked is returned when staff try to move a vehicle
// out of the rented status while a rental still holds it.
var ErrVehicleStatusLocked = errors.New("cannot change status while vehicle has an active rental")

type vehicleService struct {
	txr         repository.Transactor
	vehicleRepo repository.VehicleRepository
	rentalRepo  repository.RentalRepository
	blobs       storage.BlobStorage
}

func NewVehicleService(
	txr repository.Transactor,
	vehicleRepo repository.VehicleRepository,
	rentalRepo repository.RentalRepository,
	blobs storage.BlobStorage,
) VehicleService {
	return &vehicleService{
		txr:         txr,
		vehicleRepo: vehicleRepo,
		rentalRepo:  rentalRepo,
		blobs:       blobs,
	}
}

func (s *vehicleService) CreateVehicle(ctx context.Context, actor domain.Actor, v *domain.Vehicle) error {
	if !actor.IsStaff() {
		return domain.ErrForbidden
	}
	if v.DailyPriceCents < 0 {
		return domain.ErrInvalidRate
	}
	if v.Status == "" {
		v.Status = domain.VehicleStatusAvailable
	}
	if !v.Status.Valid() {
		v.Status = domain.VehicleStatusAvailable
	}

	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return err
	}
	logger.Info("vehicle created", "vehicle_id", v.ID, "serial_number", v.SerialNumber)
	return nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, actor domain.Actor, v *domain.Vehicle) (*domain.Vehicle, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if v.DailyPriceCents < 0 {
		return nil, domain.ErrInvalidRate
	}

	var result *domain.Vehicle
	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.vehicleRepo.GetByIDForUpdate(ctx, v.ID)
		if err != nil {
			return err
		}

		// The availability flag is owned by the rental lifecycle while
		// a rental has physical possession of the vehicle.
		if current.IsRented() && v.Status != domain.VehicleStatusRented {
			held, err := s.rentalRepo.HasOtherRented(ctx, v.ID, 0)
			if err != nil {
				return err
			}
			if held {
				return ErrVehicleStatusLocked
			}
		}

		if v.ImageKey == "" {
			v.ImageKey = current.ImageKey
		}
		if err := s.vehicleRepo.Update(ctx, v); err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("vehicle updated", "vehicle_id", v.ID)
	return result, nil
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, actor domain.Actor, id int32) error {
	if !actor.IsStaff() {
		return domain.ErrForbidden
	}

	var imageKey string
	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vehicleRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		active, err := s.rentalRepo.HasActiveForVehicle(ctx, id)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrVehicleHasRentals
		}

		imageKey = v.ImageKey
		return s.vehicleRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if imageKey != "" {
		if err := s.blobs.Delete(ctx, imageKey); err != nil {
			logger.Warn("failed to delete vehicle image", "vehicle_id", id, "key", imageKey, "error", err)
		}
	}

	logger.Info("vehicle deleted", "vehicle_id", id)
	return nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int32, error) {
	return s.vehicleRepo.List(ctx, filter)
}

func (s *vehicleService) ListTypes(ctx context.Context) ([]string, error) {
	return s.vehicleRepo.ListTypes(ctx)
}

func (s *vehicleService) UploadImage(ctx context.Context, actor domain.Actor, vehicleID int32, filename, contentType string, r io.Reader) (*domain.Vehicle, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	key := "vehicles/" + uuid.NewString() + filepath.Ext(filename)
	if err := s.blobs.Save(ctx, key, contentType, r); err != nil {
		return nil, err
	}

	oldKey := v.ImageKey
	v.ImageKey = key
	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		// Don't leave the just-written blob orphaned.
		_ = s.blobs.Delete(ctx, key)
		return nil, err
	}

	if oldKey != "" {
		if err := s.blobs.Delete(ctx, oldKey); err != nil {
			logger.Warn("failed to delete replaced vehicle image", "vehicle_id", vehicleID, "key", oldKey, "error", err)
		}
	}

	logger.Info("vehicle image uploaded", "vehicle_id", vehicleID, "key", key)
	return v, nil
}

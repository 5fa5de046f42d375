package service

import (
	"context"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/repository"
	"atv-rental-backend/internal/utils"
)

type rentalService struct {
	txr         repository.Transactor
	rentalRepo  repository.RentalRepository
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
	emailSvc    EmailService
}

func NewRentalService(
	txr repository.Transactor,
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
) RentalService {
	return &rentalService{
		txr:         txr,
		rentalRepo:  rentalRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
	}
}

func (s *rentalService) RequestRental(ctx context.Context, actor domain.Actor, vehicleID int32, startDate, endDate, notes string) (*domain.Rental, error) {
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return nil, &domain.InvalidIntervalError{Start: startDate, End: endDate}
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		return nil, &domain.InvalidIntervalError{Start: startDate, End: endDate}
	}
	period, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		UserID:    actor.UserID,
		VehicleID: vehicleID,
		Status:    domain.RentalStatusPending,
		StartDate: period.Start,
		EndDate:   period.End,
		Notes:     notes,
	}

	// Overlap checks and the insert run in one transaction so a
	// concurrent approval cannot slip in between check and write.
	err = s.txr.WithinTx(ctx, func(ctx context.Context) error {
		vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		if !vehicle.IsAvailable() {
			return domain.ErrVehicleUnavailable
		}

		total, err := utils.CalculateRentalCost(period.Start, period.End, vehicle.DailyPriceCents)
		if err != nil {
			return err
		}
		rental.TotalPriceCents = total

		// Duplicate guard: one live request per user, vehicle and
		// overlapping interval.
		duplicate, err := s.rentalRepo.HasUserOverlap(ctx, vehicleID, actor.UserID, period)
		if err != nil {
			return err
		}
		if duplicate {
			return &domain.ConflictError{
				VehicleID: vehicleID,
				Period:    period,
				Reason:    "you already have a rental request for this vehicle on the selected dates",
			}
		}

		// Cross-user guard: blocking rentals from other users close the
		// interval; their pending requests do not.
		blocked, err := s.rentalRepo.HasBlockingOverlap(ctx, vehicleID, period, actor.UserID, 0)
		if err != nil {
			return err
		}
		if blocked {
			return &domain.ConflictError{VehicleID: vehicleID, Period: period}
		}

		return s.rentalRepo.Create(ctx, rental)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental requested",
		"rental_id", rental.ID, "vehicle_id", vehicleID, "user_id", actor.UserID,
		"start", period.Start.String(), "end", period.End.String(),
		"total_price_cents", rental.TotalPriceCents)
	return rental, nil
}

func (s *rentalService) Transition(ctx context.Context, actor domain.Actor, rentalID int32, target domain.RentalStatus, notes string) (*domain.Rental, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	var result *domain.Rental
	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		rt, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}

		// Lock the vehicle row: two simultaneous transitions on the
		// same vehicle serialize here, so the checks below see any
		// concurrently committed transition.
		vehicle, err := s.vehicleRepo.GetByIDForUpdate(ctx, rt.VehicleID)
		if err != nil {
			return err
		}

		// The first read ran before the lock was held and may be
		// stale; re-read before checking the edge.
		rt, err = s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}

		if !rt.Status.CanTransitionTo(target) {
			return &domain.InvalidTransitionError{
				Current:   rt.Status,
				Requested: target,
				Allowed:   domain.AllowedTransitions(rt.Status),
			}
		}

		if target == domain.RentalStatusApproved {
			blocked, err := s.rentalRepo.HasBlockingOverlap(ctx, rt.VehicleID, rt.Period(), 0, rt.ID)
			if err != nil {
				return err
			}
			if blocked {
				return &domain.ConflictError{VehicleID: rt.VehicleID, Period: rt.Period()}
			}
		}

		if err := s.rentalRepo.UpdateStatus(ctx, rt.ID, rt.Status, target, notes); err != nil {
			return err
		}

		if target == domain.RentalStatusApproved {
			denied, err := s.rentalRepo.DenyOverlappingPending(ctx, rt.VehicleID, rt.ID, rt.Period())
			if err != nil {
				return err
			}
			if denied > 0 {
				logger.Info("competing pending rentals auto-denied",
					"rental_id", rt.ID, "vehicle_id", rt.VehicleID, "denied", denied)
			}
		}

		if err := s.syncVehicleStatus(ctx, vehicle, rt.ID, target); err != nil {
			return err
		}

		rt.Status = target
		if notes != "" {
			rt.Notes = notes
		}
		result = rt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, result, target)

	logger.Info("rental status updated",
		"rental_id", result.ID, "vehicle_id", result.VehicleID, "status", target)
	return result, nil
}

// syncVehicleStatus derives the vehicle's availability flag from the
// rental status it just transitioned to. Must run inside the same
// transaction as the status write.
func (s *rentalService) syncVehicleStatus(ctx context.Context, vehicle *domain.Vehicle, rentalID int32, status domain.RentalStatus) error {
	switch status {
	case domain.RentalStatusRented:
		return s.vehicleRepo.UpdateStatus(ctx, vehicle.ID, domain.VehicleStatusRented)

	case domain.RentalStatusReturned:
		return s.vehicleRepo.UpdateStatus(ctx, vehicle.ID, domain.VehicleStatusAvailable)

	case domain.RentalStatusDenied, domain.RentalStatusCancelled:
		// Flip back to available only if this rental was the reason the
		// vehicle shows rented; another rental may still hold it.
		if !vehicle.IsRented() {
			return nil
		}
		otherRented, err := s.rentalRepo.HasOtherRented(ctx, vehicle.ID, rentalID)
		if err != nil {
			return err
		}
		if !otherRented {
			return s.vehicleRepo.UpdateStatus(ctx, vehicle.ID, domain.VehicleStatusAvailable)
		}
	}
	return nil
}

// notifyDecision emails the rental's owner about an approval or
// denial. Delivery is best effort; failures are logged, never
// propagated.
func (s *rentalService) notifyDecision(ctx context.Context, rt *domain.Rental, status domain.RentalStatus) {
	if status != domain.RentalStatusApproved && status != domain.RentalStatusDenied {
		return
	}

	user, err := s.userRepo.GetByID(ctx, rt.UserID)
	if err != nil {
		logger.Warn("could not load user for rental notification", "rental_id", rt.ID, "error", err)
		return
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, rt.VehicleID)
	if err != nil {
		logger.Warn("could not load vehicle for rental notification", "rental_id", rt.ID, "error", err)
		return
	}

	approved := status == domain.RentalStatusApproved
	if err := s.emailSvc.SendRentalDecisionNotification(ctx, user.Email, user.FullName, vehicle.Name, approved); err != nil {
		logger.Warn("rental decision email failed", "rental_id", rt.ID, "error", err)
	}
}

func (s *rentalService) Cancel(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error) {
	var result *domain.Rental
	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		rt, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rt.UserID != actor.UserID {
			return domain.ErrForbidden
		}

		vehicle, err := s.vehicleRepo.GetByIDForUpdate(ctx, rt.VehicleID)
		if err != nil {
			return err
		}

		// Re-read under the vehicle lock; the status check must run
		// against the current row, not a pre-lock snapshot.
		rt, err = s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}

		// Customers may only back out before pickup is underway; staff
		// can cancel a pending_pickup rental through Transition.
		if rt.Status != domain.RentalStatusPending && rt.Status != domain.RentalStatusApproved {
			return &domain.InvalidTransitionError{
				Current:   rt.Status,
				Requested: domain.RentalStatusCancelled,
				Allowed:   domain.AllowedTransitions(rt.Status),
			}
		}

		if err := s.rentalRepo.UpdateStatus(ctx, rt.ID, rt.Status, domain.RentalStatusCancelled, ""); err != nil {
			return err
		}
		if err := s.syncVehicleStatus(ctx, vehicle, rt.ID, domain.RentalStatusCancelled); err != nil {
			return err
		}

		rt.Status = domain.RentalStatusCancelled
		result = rt
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental cancelled", "rental_id", result.ID, "user_id", actor.UserID)
	return result, nil
}

func (s *rentalService) RequestPickup(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error) {
	return s.customerTransition(ctx, actor, rentalID, domain.RentalStatusApproved, domain.RentalStatusPendingPickup)
}

func (s *rentalService) RequestReturn(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error) {
	return s.customerTransition(ctx, actor, rentalID, domain.RentalStatusRented, domain.RentalStatusPendingReturn)
}

// customerTransition applies an owner-only transition with an exact
// precondition status. No vehicle side effects fire on these edges.
func (s *rentalService) customerTransition(ctx context.Context, actor domain.Actor, rentalID int32, from, to domain.RentalStatus) (*domain.Rental, error) {
	var result *domain.Rental
	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		rt, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rt.UserID != actor.UserID {
			return domain.ErrForbidden
		}
		if rt.Status != from {
			return &domain.InvalidTransitionError{
				Current:   rt.Status,
				Requested: to,
				Allowed:   domain.AllowedTransitions(rt.Status),
			}
		}

		// The conditional write is the real guard: a staff transition
		// committed after the read above fails the status predicate
		// and rolls this unit back instead of being overwritten.
		if err := s.rentalRepo.UpdateStatus(ctx, rt.ID, from, to, ""); err != nil {
			return err
		}
		rt.Status = to
		result = rt
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental status updated", "rental_id", result.ID, "status", to, "user_id", actor.UserID)
	return result, nil
}

func (s *rentalService) GetRental(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && rt.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return rt, nil
}

func (s *rentalService) ListRentals(ctx context.Context, actor domain.Actor, filter repository.RentalFilter) ([]domain.Rental, int32, error) {
	// Customers only ever see their own rentals.
	if !actor.IsStaff() {
		filter.UserID = actor.UserID
	}
	return s.rentalRepo.List(ctx, filter)
}

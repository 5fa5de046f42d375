package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"

	"github.com/lib/pq"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, user_id, vehicle_id, status, start_date, end_date, total_price_cents, notes, created_on, updated_on`

func blockingStatuses() []string {
	var out []string
	for _, s := range domain.RentalStatuses() {
		if s.IsBlocking() {
			out = append(out, string(s))
		}
	}
	return out
}

func terminalStatuses() []string {
	var out []string
	for _, s := range domain.RentalStatuses() {
		if s.IsTerminal() {
			out = append(out, string(s))
		}
	}
	return out
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (user_id, vehicle_id, status, start_date, end_date, total_price_cents, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_on, updated_on`
	now := time.Now().UTC()
	return q(ctx, r.db).QueryRowContext(ctx, query,
		rt.UserID, rt.VehicleID, rt.Status, rt.StartDate.Time(), rt.EndDate.Time(),
		rt.TotalPriceCents, rt.Notes, now, now,
	).Scan(&rt.ID, &rt.CreatedOn, &rt.UpdatedOn)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(q(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "rental", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.RentalStatus, notes string) error {
	query := `UPDATE rentals
	          SET status = $1,
	              notes = CASE WHEN $2 = '' THEN notes ELSE $2 END,
	              updated_on = $3
	          WHERE id = $4 AND status = $5`
	res, err := q(ctx, r.db).ExecContext(ctx, query, to, notes, time.Now().UTC(), id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing rental from one whose status moved
		// between the caller's read and this write.
		var current domain.RentalStatus
		err := q(ctx, r.db).QueryRowContext(ctx, `SELECT status FROM rentals WHERE id = $1`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return &domain.NotFoundError{Entity: "rental", ID: id}
		}
		if err != nil {
			return err
		}
		return &domain.InvalidTransitionError{
			Current:   current,
			Requested: to,
			Allowed:   domain.AllowedTransitions(current),
		}
	}
	return nil
}

func (r *rentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]domain.Rental, int32, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE 1=1`
	var args []interface{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.VehicleID != 0 {
		args = append(args, filter.VehicleID)
		query += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From.Time())
		query += fmt.Sprintf(" AND start_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.Time())
		query += fmt.Sprintf(" AND end_date <= $%d", len(args))
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := q(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 15
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}

func (r *rentalRepository) HasUserOverlap(ctx context.Context, vehicleID, userID int32, period domain.DateRange) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM rentals
	            WHERE vehicle_id = $1
	              AND user_id = $2
	              AND NOT (status = ANY($3))
	              AND start_date <= $4 AND end_date >= $5
	          )`
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		vehicleID, userID, pq.Array(terminalStatuses()),
		period.End.Time(), period.Start.Time(),
	).Scan(&exists)
	return exists, err
}

func (r *rentalRepository) HasBlockingOverlap(ctx context.Context, vehicleID int32, period domain.DateRange, excludeUserID, excludeRentalID int32) (bool, error) {
	query := `SELECT 1 FROM rentals
	          WHERE vehicle_id = $1
	            AND status = ANY($2)
	            AND start_date <= $3 AND end_date >= $4`
	args := []interface{}{vehicleID, pq.Array(blockingStatuses()), period.End.Time(), period.Start.Time()}

	if excludeUserID != 0 {
		args = append(args, excludeUserID)
		query += fmt.Sprintf(" AND user_id <> $%d", len(args))
	}
	if excludeRentalID != 0 {
		args = append(args, excludeRentalID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}

	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&exists)
	return exists, err
}

func (r *rentalRepository) DenyOverlappingPending(ctx context.Context, vehicleID, excludeRentalID int32, period domain.DateRange) (int64, error) {
	query := `UPDATE rentals
	          SET status = $1, updated_on = $2
	          WHERE vehicle_id = $3
	            AND id <> $4
	            AND status = $5
	            AND start_date <= $6 AND end_date >= $7`
	res, err := q(ctx, r.db).ExecContext(ctx, query,
		domain.RentalStatusDenied, time.Now().UTC(),
		vehicleID, excludeRentalID, domain.RentalStatusPending,
		period.End.Time(), period.Start.Time(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *rentalRepository) HasOtherRented(ctx context.Context, vehicleID, excludeRentalID int32) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM rentals
	            WHERE vehicle_id = $1 AND id <> $2 AND status = $3
	          )`
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx, query, vehicleID, excludeRentalID, domain.RentalStatusRented).Scan(&exists)
	return exists, err
}

func (r *rentalRepository) HasActiveForVehicle(ctx context.Context, vehicleID int32) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM rentals
	            WHERE vehicle_id = $1 AND NOT (status = ANY($2))
	          )`
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx, query, vehicleID, pq.Array(terminalStatuses())).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var (
		rt         domain.Rental
		start, end time.Time
	)
	err := row.Scan(&rt.ID, &rt.UserID, &rt.VehicleID, &rt.Status, &start, &end,
		&rt.TotalPriceCents, &rt.Notes, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	rt.StartDate = domain.DateOf(start)
	rt.EndDate = domain.DateOf(end)
	return &rt, nil
}

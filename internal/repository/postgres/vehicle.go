package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"

	"github.com/lib/pq"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, name, type, serial_number, daily_price_cents, status, image_key, description, created_on, updated_on`

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (name, type, serial_number, daily_price_cents, status, image_key, description, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_on, updated_on`
	now := time.Now().UTC()
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		v.Name, v.Type, v.SerialNumber, v.DailyPriceCents, v.Status, v.ImageKey, v.Description, now, now,
	).Scan(&v.ID, &v.CreatedOn, &v.UpdatedOn)
	if isUniqueViolation(err) {
		return domain.ErrSerialNumberTaken
	}
	return err
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return r.get(ctx, id, false)
}

func (r *vehicleRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return r.get(ctx, id, true)
}

func (r *vehicleRepository) get(ctx context.Context, id int32, forUpdate bool) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	v := &domain.Vehicle{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Name, &v.Type, &v.SerialNumber, &v.DailyPriceCents,
		&v.Status, &v.ImageKey, &v.Description, &v.CreatedOn, &v.UpdatedOn)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "vehicle", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles
	          SET name = $1, type = $2, serial_number = $3, daily_price_cents = $4,
	              status = $5, image_key = $6, description = $7, updated_on = $8
	          WHERE id = $9`
	res, err := q(ctx, r.db).ExecContext(ctx, query,
		v.Name, v.Type, v.SerialNumber, v.DailyPriceCents, v.Status, v.ImageKey, v.Description,
		time.Now().UTC(), v.ID)
	if isUniqueViolation(err) {
		return domain.ErrSerialNumberTaken
	}
	if err != nil {
		return err
	}
	return requireRow(res, "vehicle", v.ID)
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $1, updated_on = $2 WHERE id = $3`
	res, err := q(ctx, r.db).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res, "vehicle", id)
}

func (r *vehicleRepository) Delete(ctx context.Context, id int32) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "vehicle", id)
}

var vehicleSortColumns = map[string]string{
	"name":        "name",
	"type":        "type",
	"daily_price": "daily_price_cents",
	"status":      "status",
	"created_at":  "created_on",
}

func (r *vehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int32, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR type ILIKE $%d)", len(args), len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.MinPriceCents > 0 {
		args = append(args, filter.MinPriceCents)
		query += fmt.Sprintf(" AND daily_price_cents >= $%d", len(args))
	}
	if filter.MaxPriceCents > 0 {
		args = append(args, filter.MaxPriceCents)
		query += fmt.Sprintf(" AND daily_price_cents <= $%d", len(args))
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := q(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	// Sort columns are whitelisted; anything else falls back to newest
	// first.
	sortCol, ok := vehicleSortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_on"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortCol, order, len(args)-1, len(args))

	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Type, &v.SerialNumber, &v.DailyPriceCents,
			&v.Status, &v.ImageKey, &v.Description, &v.CreatedOn, &v.UpdatedOn); err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, count, rows.Err()
}

func (r *vehicleRepository) ListTypes(ctx context.Context) ([]string, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `SELECT DISTINCT type FROM vehicles ORDER BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// 23505 is the PostgreSQL unique_violation class; vehicles carry a
// single unique constraint, on serial_number.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requireRow(res sql.Result, entity string, id int32) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

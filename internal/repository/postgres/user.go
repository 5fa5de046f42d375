package postgres

import (
	"context"
	"database/sql"
	"time"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, full_name, email, password_hash, role, email_verified, created_on, updated_on`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, full_name, email, password_hash, role, email_verified, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_on, updated_on`
	now := time.Now().UTC()
	return q(ctx, r.db).QueryRowContext(ctx, query,
		u.Username, u.FullName, u.Email, u.PasswordHash, u.Role, u.EmailVerified, now, now,
	).Scan(&u.ID, &u.CreatedOn, &u.UpdatedOn)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u, err := r.getBy(ctx, `id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := r.getBy(ctx, `username = $1`, username)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "user"}
	}
	return u, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.getBy(ctx, `email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "user"}
	}
	return u, err
}

func (r *userRepository) getBy(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u := &domain.User{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
		&u.Role, &u.EmailVerified, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users
	          SET username = $1, full_name = $2, email = $3, password_hash = $4,
	              role = $5, email_verified = $6, updated_on = $7
	          WHERE id = $8`
	res, err := q(ctx, r.db).ExecContext(ctx, query,
		u.Username, u.FullName, u.Email, u.PasswordHash, u.Role, u.EmailVerified,
		time.Now().UTC(), u.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "user", u.ID)
}

func (r *userRepository) List(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error) {
	var count int32
	if err := q(ctx, r.db).QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 15
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_on DESC LIMIT $1 OFFSET $2`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
			&u.Role, &u.EmailVerified, &u.CreatedOn, &u.UpdatedOn); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, count, rows.Err()
}

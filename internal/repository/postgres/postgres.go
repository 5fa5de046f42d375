package postgres

import (
	"context"
	"database/sql"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.VehicleRepository
	repository.RentalRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		UserRepository:    NewUserRepository(db),
		VehicleRepository: NewVehicleRepository(db),
		RentalRepository:  NewRentalRepository(db),
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx so repositories run
// unchanged inside and outside transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// q returns the transaction carried by ctx if one is open, otherwise
// the plain connection pool.
func q(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// WithinTx runs fn inside a single transaction. Repository calls made
// with the context passed to fn join the transaction. If fn returns an
// error every write is rolled back; commit failures surface as
// domain.TransactionError and are safe to retry.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.TransactionError{Err: err}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return &domain.TransactionError{Err: rbErr}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &domain.TransactionError{Err: err}
	}
	return nil
}

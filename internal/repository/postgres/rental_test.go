package postgres_test

import (
	"context"
	"testing"
	"time"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"
	"atv-rental-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func rentalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "vehicle_id", "status", "start_date", "end_date",
		"total_price_cents", "notes", "created_on", "updated_on",
	})
}

func TestRentalRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rental := &domain.Rental{
			UserID:          7,
			VehicleID:       3,
			Status:          domain.RentalStatusPending,
			StartDate:       testDate(t, "2025-12-13"),
			EndDate:         testDate(t, "2025-12-14"),
			TotalPriceCents: 10000,
			Notes:           "weekend trip",
		}

		now := time.Now().UTC()
		mock.ExpectQuery("INSERT INTO rentals").
			WithArgs(rental.UserID, rental.VehicleID, rental.Status,
				rental.StartDate.Time(), rental.EndDate.Time(),
				rental.TotalPriceCents, rental.Notes, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(11, now, now))

		err := repo.Create(ctx, rental)
		assert.NoError(t, err)
		assert.Equal(t, int32(11), rental.ID)
	})
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		start := time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
		rows := rentalRows().
			AddRow(11, 7, 3, "pending", start, end, 10000, "weekend trip", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs(int32(11)).
			WillReturnRows(rows)

		rental, err := repo.GetByID(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, int32(11), rental.ID)
		assert.Equal(t, domain.RentalStatusPending, rental.Status)
		assert.Equal(t, "2025-12-13", rental.StartDate.String())
		assert.Equal(t, "2025-12-14", rental.EndDate.String())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(rentalRows())

		_, err := repo.GetByID(ctx, 99)
		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "rental", notFound.Entity)
		assert.Equal(t, int32(99), notFound.ID)
	})
}

func TestRentalRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE rentals").
			WithArgs(domain.RentalStatusApproved, "have fun", sqlmock.AnyArg(), int32(11), domain.RentalStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, 11, domain.RentalStatusPending, domain.RentalStatusApproved, "have fun")
		assert.NoError(t, err)
	})

	t.Run("Missing Rental", func(t *testing.T) {
		mock.ExpectExec("UPDATE rentals").
			WithArgs(domain.RentalStatusApproved, "", sqlmock.AnyArg(), int32(99), domain.RentalStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT status FROM rentals").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))

		err := repo.UpdateStatus(ctx, 99, domain.RentalStatusPending, domain.RentalStatusApproved, "")
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Status Moved Between Read And Write", func(t *testing.T) {
		// The expected-status predicate misses because another
		// transition committed first; the error carries the row's
		// current status.
		mock.ExpectExec("UPDATE rentals").
			WithArgs(domain.RentalStatusPendingPickup, "", sqlmock.AnyArg(), int32(11), domain.RentalStatusApproved).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT status FROM rentals").
			WithArgs(int32(11)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("denied"))

		err := repo.UpdateStatus(ctx, 11, domain.RentalStatusApproved, domain.RentalStatusPendingPickup, "")
		var invalid *domain.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, domain.RentalStatusDenied, invalid.Current)
		assert.Equal(t, domain.RentalStatusPendingPickup, invalid.Requested)
	})
}

func TestRentalRepository_HasBlockingOverlap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	p := domain.DateRange{Start: testDate(t, "2025-12-13"), End: testDate(t, "2025-12-14")}

	t.Run("Blocked", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(3), sqlmock.AnyArg(), p.End.Time(), p.Start.Time()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		blocked, err := repo.HasBlockingOverlap(ctx, 3, p, 0, 0)
		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("With Exclusions", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(3), sqlmock.AnyArg(), p.End.Time(), p.Start.Time(), int32(7), int32(11)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		blocked, err := repo.HasBlockingOverlap(ctx, 3, p, 7, 11)
		require.NoError(t, err)
		assert.False(t, blocked)
	})
}

func TestRentalRepository_HasUserOverlap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	p := domain.DateRange{Start: testDate(t, "2025-12-13"), End: testDate(t, "2025-12-14")}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int32(3), int32(7), sqlmock.AnyArg(), p.End.Time(), p.Start.Time()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	duplicate, err := repo.HasUserOverlap(ctx, 3, 7, p)
	require.NoError(t, err)
	assert.True(t, duplicate)
}

func TestRentalRepository_DenyOverlappingPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	p := domain.DateRange{Start: testDate(t, "2025-12-13"), End: testDate(t, "2025-12-14")}

	mock.ExpectExec("UPDATE rentals").
		WithArgs(domain.RentalStatusDenied, sqlmock.AnyArg(), int32(3), int32(11),
			domain.RentalStatusPending, p.End.Time(), p.Start.Time()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	denied, err := repo.DenyOverlappingPending(ctx, 3, 11, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), denied)
}

func TestRentalRepository_HasOtherRented(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int32(3), int32(11), domain.RentalStatusRented).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	held, err := repo.HasOtherRented(ctx, 3, 11)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRentalRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Filtered By User And Status", func(t *testing.T) {
		mock.ExpectQuery("SELECT count").
			WithArgs(int32(7), domain.RentalStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		start := time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE 1=1 AND user_id").
			WithArgs(int32(7), domain.RentalStatusPending, int32(15), int32(0)).
			WillReturnRows(rentalRows().
				AddRow(11, 7, 3, "pending", start, end, 10000, "", time.Now(), time.Now()))

		rentals, total, err := repo.List(ctx, repository.RentalFilter{
			UserID: 7,
			Status: domain.RentalStatusPending,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		require.Len(t, rentals, 1)
		assert.Equal(t, int32(11), rentals[0].ID)
	})
}

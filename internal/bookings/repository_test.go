package bookings

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type RepositorySuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	repo Repository
	ctx  context.Context
}

func newMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}
	return gormDB, mock, nil
}

func (s *RepositorySuite) SetupTest() {
	db, mock, err := newMockDB()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewRepository(db)
	s.ctx = context.Background()
}

func (s *RepositorySuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func newBooking(attendees int) *Booking {
	return &Booking{
		BookingReference: "BK-20250101-ABCDEFGH",
		EventID:          "E1",
		Owner:            Owner{UserID: "42"},
		Attendees:        attendees,
		UnitPrice:        decimal.NewFromInt(100),
		TotalAmount:      decimal.NewFromInt(int64(100 * attendees)),
		Status:           StatusPending,
	}
}

var (
	insertBooking = regexp.QuoteMeta(`INSERT INTO "booking_tickets"`)
	lockEvent     = regexp.QuoteMeta(`SELECT id FROM "booking_events" WHERE id = $1`) + `.*FOR UPDATE`
	sumAttendees  = regexp.QuoteMeta(`SELECT COALESCE(SUM(attendees), 0) FROM "booking_tickets" WHERE event_id = $1 AND status <> $2`)
	selectByRef   = regexp.QuoteMeta(`SELECT * FROM "booking_tickets" WHERE booking_reference = $1`)
)

func (s *RepositorySuite) TestCreateAssignsID() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(insertBooking).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	s.mock.ExpectCommit()

	booking := newBooking(3)
	s.Require().NoError(s.repo.Create(s.ctx, booking, nil))
	s.Equal(uint64(7), booking.ID)
}

func (s *RepositorySuite) TestCreateWithinCapacity() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(lockEvent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("E1"))
	s.mock.ExpectQuery(sumAttendees).
		WithArgs("E1", "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))
	s.mock.ExpectQuery(insertBooking).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	s.mock.ExpectCommit()

	capacity := 5
	s.NoError(s.repo.Create(s.ctx, newBooking(3), &capacity))
}

func (s *RepositorySuite) TestCreateOverCapacityRollsBack() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(lockEvent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("E1"))
	s.mock.ExpectQuery(sumAttendees).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))
	s.mock.ExpectRollback()

	capacity := 5
	err := s.repo.Create(s.ctx, newBooking(2), &capacity)
	s.ErrorIs(err, ErrCapacityExceeded)
}

func (s *RepositorySuite) TestCreateForMissingEvent() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(lockEvent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.mock.ExpectRollback()

	capacity := 5
	err := s.repo.Create(s.ctx, newBooking(1), &capacity)
	s.ErrorIs(err, ErrEventNotBookable)
}

func (s *RepositorySuite) TestCreateTranslatesUniqueViolations() {
	tests := []struct {
		constraint string
		want       error
	}{
		{ConstraintActivePerUserEvent, ErrAlreadyBooked},
		{ConstraintBookingReference, errReferenceTaken},
	}

	for _, tt := range tests {
		s.Run(tt.constraint, func() {
			s.mock.ExpectBegin()
			s.mock.ExpectQuery(insertBooking).
				WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: tt.constraint})
			s.mock.ExpectRollback()

			err := s.repo.Create(s.ctx, newBooking(1), nil)
			s.ErrorIs(err, tt.want)
		})
	}
}

func (s *RepositorySuite) TestStorageErrorsAreUnavailable() {
	s.mock.ExpectQuery(selectByRef).
		WillReturnError(errors.New("dial tcp 127.0.0.1:5432: connection refused"))

	_, err := s.repo.GetByReference(s.ctx, "BK-20250101-ABCDEFGH")
	s.ErrorIs(err, ErrUnavailable)
	s.True(IsRetryable(err))
}

func (s *RepositorySuite) TestGetByReferenceNotFound() {
	s.mock.ExpectQuery(selectByRef).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.repo.GetByReference(s.ctx, "BK-20250101-ABCDEFGH")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestFindActiveWithoutBooking() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "booking_tickets" WHERE user_id = $1 AND event_id = $2 AND status <> $3`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	booking, err := s.repo.FindActive(s.ctx, "42", "E1")
	s.NoError(err)
	s.Nil(booking)
}

func (s *RepositorySuite) TestUpdateStatusLocksAndSaves() {
	rows := sqlmock.NewRows([]string{"id", "booking_reference", "event_id", "user_id", "attendees", "unit_price", "total_amount", "status"}).
		AddRow(7, "BK-20250101-ABCDEFGH", "E1", "42", 3, "100.00", "300.00", "pending")

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(selectByRef + `.*FOR UPDATE`).WillReturnRows(rows)
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "booking_tickets" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	booking, err := s.repo.UpdateStatus(s.ctx, "BK-20250101-ABCDEFGH", func(b *Booking) error {
		b.Status = StatusConfirmed
		return nil
	})
	s.Require().NoError(err)
	s.Equal(StatusConfirmed, booking.Status)
	s.Equal(uint64(7), booking.ID)
}

func (s *RepositorySuite) TestUpdateStatusRollsBackRejectedTransition() {
	rows := sqlmock.NewRows([]string{"id", "booking_reference", "status"}).
		AddRow(7, "BK-20250101-ABCDEFGH", "cancelled")

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(selectByRef + `.*FOR UPDATE`).WillReturnRows(rows)
	s.mock.ExpectRollback()

	_, err := s.repo.UpdateStatus(s.ctx, "BK-20250101-ABCDEFGH", func(b *Booking) error {
		return &TransitionError{From: b.Status, To: StatusConfirmed}
	})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *RepositorySuite) TestDeleteMissingBooking() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "booking_tickets" WHERE booking_reference = $1`)).
		WithArgs("BK-20250101-ABCDEFGH").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	s.ErrorIs(s.repo.Delete(s.ctx, "BK-20250101-ABCDEFGH"), ErrNotFound)
}

func (s *RepositorySuite) TestSummaryGroupsByStatus() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) AS bookings`)).
		WithArgs("E1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "bookings", "attendees", "amount"}).
			AddRow("confirmed", 2, 5, "500.00").
			AddRow("pending", 1, 1, "100.00"))

	totals, err := s.repo.Summary(s.ctx, "E1")
	s.Require().NoError(err)
	s.Require().Len(totals, 2)
	s.Equal(StatusConfirmed, totals[0].Status)
	s.Equal(int64(5), totals[0].Attendees)
	s.True(decimal.NewFromInt(500).Equal(totals[0].Amount))
}

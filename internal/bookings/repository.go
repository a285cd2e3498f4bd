package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Index names the ledger depends on
const (
	ConstraintActivePerUserEvent = "uniq_active_booking_per_user_event"
	ConstraintBookingReference   = "uniq_booking_reference"
)

const pgUniqueViolation = "23505"

// Repository is the storage port of the booking ledger
type Repository interface {
	// Create inserts b. When capacity is non-nil the event row is locked and
	// the new attendees must fit alongside every non-cancelled booking.
	Create(ctx context.Context, b *Booking, capacity *int) error
	FindActive(ctx context.Context, userID, eventID string) (*Booking, error)
	GetByReference(ctx context.Context, reference string) (*Booking, error)
	// UpdateStatus loads the booking under a row lock, applies mutate and saves it
	UpdateStatus(ctx context.Context, reference string, mutate func(*Booking) error) (*Booking, error)
	Delete(ctx context.Context, reference string) error
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	Summary(ctx context.Context, eventID string) ([]StatusTotals, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking, capacity *int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if capacity != nil {
			if err := r.checkCapacity(tx, b, *capacity); err != nil {
				return err
			}
		}
		return tx.Create(b).Error
	})
	return translate("create booking", err)
}

func (r *repository) checkCapacity(tx *gorm.DB, b *Booking, capacity int) error {
	// Serialise concurrent creates for the same event
	var event struct {
		ID string `gorm:"column:id"`
	}
	err := tx.Table("booking_events").
		Select("id").
		Where("id = ?", b.EventID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: event %s does not exist", ErrEventNotBookable, b.EventID)
	}
	if err != nil {
		return err
	}

	var booked int64
	err = tx.Model(&Booking{}).
		Select("COALESCE(SUM(attendees), 0)").
		Where("event_id = ? AND status <> ?", b.EventID, StatusCancelled).
		Scan(&booked).Error
	if err != nil {
		return err
	}

	if remaining := int64(capacity) - booked; int64(b.Attendees) > remaining {
		return fmt.Errorf("%w: %d places left, %d requested", ErrCapacityExceeded, max(remaining, 0), b.Attendees)
	}
	return nil
}

func (r *repository) FindActive(ctx context.Context, userID, eventID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status <> ?", userID, eventID, StatusCancelled).
		Take(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find active booking", err)
	}
	return &booking, nil
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("booking_reference = ?", reference).
		Take(&booking).Error
	if err != nil {
		return nil, translate("get booking", err)
	}
	return &booking, nil
}

func (r *repository) UpdateStatus(ctx context.Context, reference string, mutate func(*Booking) error) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_reference = ?", reference).
			Take(&booking).Error
		if err != nil {
			return err
		}
		if err := mutate(&booking); err != nil {
			return err
		}
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, translate("update booking status", err)
	}
	return &booking, nil
}

func (r *repository) Delete(ctx context.Context, reference string) error {
	result := r.db.WithContext(ctx).
		Where("booking_reference = ?", reference).
		Delete(&Booking{})
	if result.Error != nil {
		return translate("delete booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	baseQuery := r.applyFilters(r.db.WithContext(ctx).Model(&Booking{}), query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, translate("count bookings", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, translate("list bookings", err)
	}

	return bookings, totalCount, nil
}

func (r *repository) Summary(ctx context.Context, eventID string) ([]StatusTotals, error) {
	var totals []StatusTotals
	db := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("status, COUNT(*) AS bookings, COALESCE(SUM(attendees), 0) AS attendees, COALESCE(SUM(total_amount), 0) AS amount")
	if eventID != "" {
		db = db.Where("event_id = ?", eventID)
	}
	if err := db.Group("status").Order("status").Scan(&totals).Error; err != nil {
		return nil, translate("summarise bookings", err)
	}
	return totals, nil
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters BookingListQuery) *gorm.DB {
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.EventID != "" {
		query = query.Where("event_id = ?", filters.EventID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.DateFrom != "" {
		if dateFrom, err := time.Parse(DateLayout, filters.DateFrom); err == nil {
			query = query.Where("created_at >= ?", dateFrom)
		}
	}
	if filters.DateTo != "" {
		if dateTo, err := time.Parse(DateLayout, filters.DateTo); err == nil {
			query = query.Where("created_at < ?", dateTo.AddDate(0, 0, 1))
		}
	}
	return query
}

// translate maps storage errors onto the ledger taxonomy. Errors that are
// already part of it pass through.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case ConstraintActivePerUserEvent:
			return ErrAlreadyBooked
		case ConstraintBookingReference:
			return errReferenceTaken
		}
	}

	for _, known := range []error{
		ErrInvalidArgument, ErrAlreadyBooked, ErrInvalidTransition, ErrCapacityExceeded,
		ErrNotFound, ErrForbidden, ErrUnavailable, ErrEventNotBookable, errReferenceTaken,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubtrips/internal/availability"
	"clubtrips/internal/events"
	"clubtrips/internal/notifications"
	"clubtrips/internal/pricing"
	"clubtrips/internal/shared/config"
	"clubtrips/internal/shared/utils/response"
	"clubtrips/internal/users"
	"clubtrips/pkg/logger"

	"github.com/shopspring/decimal"
)

// EventCatalog is the read-only view of events the booking engine needs
type EventCatalog interface {
	GetEvent(ctx context.Context, id string) (*events.Event, error)
}

// Policy carries the booking page settings
type Policy struct {
	// MaxParticipants caps attendees per booking when the event sets no limit
	MaxParticipants int
	// MinimumBookingHours is the lead time between now and the selected date
	MinimumBookingHours int
}

func PolicyFromConfig(cfg config.BookingConfig) Policy {
	return Policy{
		MaxParticipants:     cfg.MaxParticipants,
		MinimumBookingHours: cfg.MinimumBookingHours,
	}
}

// Service is the booking facade used by the HTTP layer
type Service interface {
	GetAvailability(ctx context.Context, eventID string) ([]time.Time, error)
	Quote(ctx context.Context, eventID string, attendees int) (decimal.Decimal, error)
	HasBooked(ctx context.Context, userID, eventID string) (*Booking, error)
	Book(ctx context.Context, actor users.Actor, req BookRequest) (*Booking, error)

	ChangeStatus(ctx context.Context, actor users.Actor, reference string, status Status, reason string) (*Booking, error)
	Cancel(ctx context.Context, actor users.Actor, reference, reason string) (*Booking, error)
	Delete(ctx context.Context, actor users.Actor, reference string) error

	GetBooking(ctx context.Context, actor users.Actor, reference string) (*Booking, error)
	ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error)
	ListUserBookings(ctx context.Context, actor users.Actor, query BookingListQuery) (*BookingListResponse, error)
	Summary(ctx context.Context, eventID string) (*BookingSummary, error)
}

type service struct {
	catalog   EventCatalog
	ledger    *Ledger
	publisher notifications.Publisher
	policy    Policy
	now       func() time.Time
	log       *logger.Logger
}

type ServiceOption func(*service)

// WithServiceClock replaces time.Now for lead-time checks
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *service) { s.now = now }
}

func NewService(catalog EventCatalog, ledger *Ledger, publisher notifications.Publisher, policy Policy, log *logger.Logger, opts ...ServiceOption) Service {
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	s := &service{
		catalog:   catalog,
		ledger:    ledger,
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var validate = newValidator()

func (s *service) loadEvent(ctx context.Context, eventID string) (*events.Event, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load event %s: %w: %w", eventID, ErrUnavailable, err)
	}
	return event, nil
}

func (s *service) GetAvailability(ctx context.Context, eventID string) ([]time.Time, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return availability.Dates(event), nil
}

func (s *service) Quote(ctx context.Context, eventID string, attendees int) (decimal.Decimal, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return decimal.Zero, err
	}
	total, err := pricing.ComputeTotal(event.Price, attendees)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return total, nil
}

func (s *service) HasBooked(ctx context.Context, userID, eventID string) (*Booking, error) {
	return s.ledger.CheckExisting(ctx, userID, eventID)
}

func (s *service) Book(ctx context.Context, actor users.Actor, req BookRequest) (*Booking, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: an identified user is required", ErrForbidden)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	selected, err := req.SelectedDate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	event, err := s.loadEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsBookable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrEventNotBookable, event.ID, event.Status)
	}

	if limit := s.attendeeLimit(event); limit > 0 && req.Attendees > limit {
		return nil, fmt.Errorf("%w: at most %d attendees, requested %d", ErrCapacityExceeded, limit, req.Attendees)
	}

	if availability.HasDates(event) {
		if selected == nil {
			return nil, fmt.Errorf("%w: a date must be selected", ErrInvalidDate)
		}
		if !availability.Contains(event, *selected) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDate, req.Date)
		}
	}
	if selected != nil {
		if err := s.checkLeadTime(*selected); err != nil {
			return nil, err
		}
	}

	snapshotDate := selected
	if snapshotDate == nil && event.StartDate != nil {
		d := availability.Day(*event.StartDate)
		snapshotDate = &d
	}

	booking, err := s.ledger.Create(ctx, CreateParams{
		EventID:         event.ID,
		Event:           EventSnapshot{Title: event.Title, Date: snapshotDate},
		Owner:           Owner{UserID: actor.UserID, UserName: actor.Name, UserEmail: actor.Email},
		Attendees:       req.Attendees,
		UnitPrice:       event.Price,
		Capacity:        event.AttendeeLimit(),
		ContactPhone:    req.ContactPhone,
		SpecialRequests: req.SpecialRequests,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	evt := s.bookingEvent(notifications.BookingEventCreated, booking)
	evt.ActorID = actor.UserID
	s.publish(ctx, evt)
	return booking, nil
}

// attendeeLimit is the per-booking ceiling: the event's own limit, else the
// page-wide maximum. Zero means unlimited.
func (s *service) attendeeLimit(event *events.Event) int {
	if limit := event.AttendeeLimit(); limit != nil {
		return *limit
	}
	return s.policy.MaxParticipants
}

func (s *service) checkLeadTime(selected time.Time) error {
	if s.policy.MinimumBookingHours <= 0 {
		return nil
	}
	earliest := s.now().Add(time.Duration(s.policy.MinimumBookingHours) * time.Hour)
	if availability.Day(selected).Before(earliest) {
		return fmt.Errorf("%w: bookings close %d hours before the date", ErrInvalidDate, s.policy.MinimumBookingHours)
	}
	return nil
}

func (s *service) ChangeStatus(ctx context.Context, actor users.Actor, reference string, status Status, reason string) (*Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, TransitionParams{Reference: reference, To: status, Reason: reason})
}

func (s *service) Cancel(ctx context.Context, actor users.Actor, reference, reason string) (*Booking, error) {
	return s.transition(ctx, actor, TransitionParams{
		Reference: reference,
		To:        StatusCancelled,
		Reason:    reason,
		Authorize: func(b *Booking) error {
			if actor.IsAdmin() || actor.Owns(b.Owner.UserID) {
				return nil
			}
			return ErrForbidden
		},
	})
}

func (s *service) transition(ctx context.Context, actor users.Actor, p TransitionParams) (*Booking, error) {
	booking, from, err := s.ledger.Transition(ctx, p)
	if err != nil {
		return nil, err
	}

	eventType := notifications.BookingEventStatusChanged
	if booking.Status == StatusCancelled {
		eventType = notifications.BookingEventCancelled
	}
	evt := s.bookingEvent(eventType, booking)
	evt.PreviousStatus = from.String()
	evt.ActorID = actor.UserID
	s.publish(ctx, evt)

	return booking, nil
}

func (s *service) Delete(ctx context.Context, actor users.Actor, reference string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	booking, err := s.ledger.Get(ctx, reference)
	if err != nil {
		return err
	}
	if err := s.ledger.Delete(ctx, reference); err != nil {
		return err
	}
	s.log.LogBookingDeleted(ctx, reference, actor.UserID)

	evt := s.bookingEvent(notifications.BookingEventDeleted, booking)
	evt.ActorID = actor.UserID
	s.publish(ctx, evt)
	return nil
}

func (s *service) GetBooking(ctx context.Context, actor users.Actor, reference string) (*Booking, error) {
	booking, err := s.ledger.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(booking.Owner.UserID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error) {
	query.normalise()
	bookings, total, err := s.ledger.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &BookingListResponse{
		Bookings:   toResponses(bookings),
		Pagination: response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *service) ListUserBookings(ctx context.Context, actor users.Actor, query BookingListQuery) (*BookingListResponse, error) {
	if actor.UserID == "" {
		return nil, ErrForbidden
	}
	query.UserID = actor.UserID
	return s.ListBookings(ctx, query)
}

func (s *service) Summary(ctx context.Context, eventID string) (*BookingSummary, error) {
	rows, err := s.ledger.Summary(ctx, eventID)
	if err != nil {
		return nil, err
	}

	summary := &BookingSummary{
		EventID:          eventID,
		ByStatus:         rows,
		ConfirmedRevenue: decimal.Zero,
	}
	for _, row := range rows {
		summary.TotalBookings += row.Bookings
		if row.Status.HoldsSlot() {
			summary.ReservedPlaces += row.Attendees
		}
		if row.Status.IsActive() {
			summary.ActiveBookings += row.Bookings
			summary.ConfirmedRevenue = summary.ConfirmedRevenue.Add(row.Amount)
		}
	}
	return summary, nil
}

func (s *service) bookingEvent(eventType notifications.BookingEventType, b *Booking) notifications.BookingEvent {
	evt := notifications.NewBookingEvent(eventType, b.BookingReference)
	evt.EventID = b.EventID
	evt.EventTitle = b.Event.Title
	evt.UserID = b.Owner.UserID
	evt.UserEmail = b.Owner.UserEmail
	evt.Attendees = b.Attendees
	evt.Status = b.Status.String()
	evt.TicketNumber = b.VisibleTicket()
	return evt
}

// publish never fails the booking operation
func (s *service) publish(ctx context.Context, evt notifications.BookingEvent) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish booking event", err, map[string]interface{}{
			"type":              evt.Type,
			"booking_reference": evt.BookingReference,
		})
	}
}

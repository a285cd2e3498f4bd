package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clubtrips/internal/events"
	"clubtrips/internal/notifications"
	"clubtrips/internal/users"
	"clubtrips/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type fakeCatalog struct {
	events map[string]*events.Event
	err    error
}

func (f *fakeCatalog) GetEvent(ctx context.Context, id string) (*events.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	event, ok := f.events[id]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return event, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	recorded []notifications.BookingEvent
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt notifications.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []notifications.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifications.BookingEventType, len(p.recorded))
	for i, evt := range p.recorded {
		out[i] = evt.Type
	}
	return out
}

func (p *recordingPublisher) last() notifications.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recorded[len(p.recorded)-1]
}

func day(s string) *time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}

var (
	member = users.Actor{UserID: "42", Name: "Ada", Email: "ada@example.com", Role: users.RoleUser}
	other  = users.Actor{UserID: "77", Name: "Grace", Email: "grace@example.com", Role: users.RoleUser}
	admin  = users.Actor{UserID: "1", Name: "Admin", Role: users.RoleAdmin}
)

type ServiceSuite struct {
	suite.Suite
	repo      *memoryRepository
	catalog   *fakeCatalog
	publisher *recordingPublisher
	now       time.Time
	service   Service
	ctx       context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.repo = newMemoryRepository()
	s.repo.nextID = 6
	s.catalog = &fakeCatalog{events: map[string]*events.Event{
		"E1": {
			ID: "E1", Title: "Coastal Walk", Price: decimal.NewFromInt(100),
			StartDate: day("2025-03-01"), EndDate: day("2025-03-03"),
			Status: events.EventStatusUpcoming, IsActive: true,
		},
		"OPEN": {
			ID: "OPEN", Title: "Book Club", Price: decimal.RequireFromString("12.50"),
			Status: events.EventStatusUpcoming, IsActive: true,
		},
		"SMALL": {
			ID: "SMALL", Title: "Wine Tasting", Price: decimal.NewFromInt(40),
			StartDate: day("2025-03-10"), Capacity: intPtr(4),
			Status: events.EventStatusUpcoming, IsActive: true,
		},
		"DONE": {
			ID: "DONE", Title: "Old Trip", Price: decimal.NewFromInt(10),
			Status: events.EventStatusCompleted, IsActive: true,
		},
	}}
	s.publisher = &recordingPublisher{}
	s.now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()

	clock := func() time.Time { return s.now }
	ledger := NewLedger(s.repo, testBookingConfig(), logger.Discard(), WithClock(clock))
	s.service = NewService(s.catalog, ledger, s.publisher,
		Policy{MaxParticipants: 25, MinimumBookingHours: 24},
		logger.Discard(), WithServiceClock(clock))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) book(actor users.Actor, eventID string, attendees int, date string) (*Booking, error) {
	return s.service.Book(s.ctx, actor, BookRequest{EventID: eventID, Attendees: attendees, Date: date})
}

func (s *ServiceSuite) TestBookingLifecycle() {
	dates, err := s.service.GetAvailability(s.ctx, "E1")
	s.Require().NoError(err)
	s.Equal([]time.Time{*day("2025-03-01"), *day("2025-03-02"), *day("2025-03-03")}, dates)

	booking, err := s.book(member, "E1", 3, "2025-03-02")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(300).Equal(booking.TotalAmount))
	s.Equal(StatusPending, booking.Status)
	s.Equal("Coastal Walk", booking.Event.Title)
	s.Equal(*day("2025-03-02"), *booking.Event.Date)
	s.Equal("ada@example.com", booking.Owner.UserEmail)

	_, err = s.book(member, "E1", 1, "2025-03-01")
	s.ErrorIs(err, ErrAlreadyBooked)

	confirmed, err := s.service.ChangeStatus(s.ctx, admin, booking.BookingReference, StatusConfirmed, "")
	s.Require().NoError(err)
	s.Equal(uint64(7), confirmed.ID)
	s.Equal("TKT-000007", confirmed.TicketNumber)

	s.Require().NoError(s.service.Delete(s.ctx, admin, booking.BookingReference))

	_, err = s.book(member, "E1", 2, "2025-03-03")
	s.NoError(err)

	s.Equal([]notifications.BookingEventType{
		notifications.BookingEventCreated,
		notifications.BookingEventStatusChanged,
		notifications.BookingEventDeleted,
		notifications.BookingEventCreated,
	}, s.publisher.types())
}

func (s *ServiceSuite) TestHasBooked() {
	none, err := s.service.HasBooked(s.ctx, member.UserID, "E1")
	s.Require().NoError(err)
	s.Nil(none)

	booking, err := s.book(member, "E1", 1, "2025-03-01")
	s.Require().NoError(err)

	found, err := s.service.HasBooked(s.ctx, member.UserID, "E1")
	s.Require().NoError(err)
	s.Equal(booking.BookingReference, found.BookingReference)
}

func (s *ServiceSuite) TestBookRejectsBadRequests() {
	tests := []struct {
		name      string
		actor     users.Actor
		eventID   string
		attendees int
		date      string
		want      error
	}{
		{"anonymous", users.Actor{}, "E1", 1, "2025-03-01", ErrForbidden},
		{"no attendees", member, "E1", 0, "2025-03-01", ErrInvalidArgument},
		{"malformed date", member, "E1", 1, "2025-13-01", ErrInvalidArgument},
		{"unknown event", member, "NOPE", 1, "2025-03-01", events.ErrEventNotFound},
		{"completed event", member, "DONE", 1, "", ErrEventNotBookable},
		{"missing date", member, "E1", 1, "", ErrInvalidDate},
		{"date outside window", member, "E1", 1, "2025-03-04", ErrInvalidDate},
		{"over page maximum", member, "E1", 26, "2025-03-01", ErrCapacityExceeded},
		{"over event capacity", member, "SMALL", 5, "2025-03-10", ErrCapacityExceeded},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.book(tt.actor, tt.eventID, tt.attendees, tt.date)
			s.ErrorIs(err, tt.want)
		})
	}
	s.Zero(s.repo.count())
	s.Empty(s.publisher.types())
}

func (s *ServiceSuite) TestLeadTime() {
	s.now = time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)

	_, err := s.book(member, "E1", 1, "2025-03-01")
	s.ErrorIs(err, ErrInvalidDate)

	_, err = s.book(member, "E1", 1, "2025-03-02")
	s.NoError(err)
}

func (s *ServiceSuite) TestDatelessEventNeedsNoDate() {
	booking, err := s.book(member, "OPEN", 2, "")
	s.Require().NoError(err)
	s.Nil(booking.Event.Date)
	s.True(decimal.RequireFromString("25").Equal(booking.TotalAmount))

	dates, err := s.service.GetAvailability(s.ctx, "OPEN")
	s.Require().NoError(err)
	s.Empty(dates)
}

func (s *ServiceSuite) TestSingleDayEventSnapshotsStartDate() {
	booking, err := s.book(member, "SMALL", 2, "2025-03-10")
	s.Require().NoError(err)
	s.Equal(*day("2025-03-10"), *booking.Event.Date)

	_, err = s.book(other, "SMALL", 3, "2025-03-10")
	s.ErrorIs(err, ErrCapacityExceeded)
}

func (s *ServiceSuite) TestCatalogFailureIsUnavailable() {
	s.catalog.err = errors.New("redis: connection refused")

	_, err := s.book(member, "E1", 1, "2025-03-01")
	s.ErrorIs(err, ErrUnavailable)

	_, err = s.service.GetAvailability(s.ctx, "E1")
	s.ErrorIs(err, ErrUnavailable)
}

func (s *ServiceSuite) TestQuote() {
	total, err := s.service.Quote(s.ctx, "E1", 3)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(300).Equal(total))

	_, err = s.service.Quote(s.ctx, "E1", 0)
	s.ErrorIs(err, ErrInvalidArgument)

	_, err = s.service.Quote(s.ctx, "NOPE", 1)
	s.ErrorIs(err, events.ErrEventNotFound)
}

func (s *ServiceSuite) TestCancelAuthorization() {
	booking, err := s.book(member, "E1", 1, "2025-03-01")
	s.Require().NoError(err)

	_, err = s.service.Cancel(s.ctx, other, booking.BookingReference, "")
	s.ErrorIs(err, ErrForbidden)

	cancelled, err := s.service.Cancel(s.ctx, member, booking.BookingReference, "sick")
	s.Require().NoError(err)
	s.Equal(StatusCancelled, cancelled.Status)

	evt := s.publisher.last()
	s.Equal(notifications.BookingEventCancelled, evt.Type)
	s.Equal("pending", evt.PreviousStatus)
	s.Equal(member.UserID, evt.ActorID)

	_, err = s.service.Cancel(s.ctx, admin, booking.BookingReference, "")
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *ServiceSuite) TestAdministrativeOperationsRequireAdmin() {
	booking, err := s.book(member, "E1", 1, "2025-03-01")
	s.Require().NoError(err)

	_, err = s.service.ChangeStatus(s.ctx, member, booking.BookingReference, StatusConfirmed, "")
	s.ErrorIs(err, ErrForbidden)

	s.ErrorIs(s.service.Delete(s.ctx, member, booking.BookingReference), ErrForbidden)
	s.ErrorIs(s.service.Delete(s.ctx, admin, "BK-19700101-MISSING0"), ErrNotFound)
}

func (s *ServiceSuite) TestGetBookingVisibility() {
	booking, err := s.book(member, "E1", 1, "2025-03-01")
	s.Require().NoError(err)

	_, err = s.service.GetBooking(s.ctx, member, booking.BookingReference)
	s.NoError(err)
	_, err = s.service.GetBooking(s.ctx, admin, booking.BookingReference)
	s.NoError(err)
	_, err = s.service.GetBooking(s.ctx, other, booking.BookingReference)
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceSuite) TestListUserBookings() {
	_, err := s.book(member, "E1", 1, "2025-03-01")
	s.Require().NoError(err)
	_, err = s.book(member, "OPEN", 1, "")
	s.Require().NoError(err)
	_, err = s.book(other, "E1", 1, "2025-03-01")
	s.Require().NoError(err)

	mine, err := s.service.ListUserBookings(s.ctx, member, BookingListQuery{})
	s.Require().NoError(err)
	s.Len(mine.Bookings, 2)
	s.Equal(int64(2), mine.Pagination.TotalCount)
	s.Equal(1, mine.Pagination.Page)

	all, err := s.service.ListBookings(s.ctx, BookingListQuery{EventID: "E1"})
	s.Require().NoError(err)
	s.Len(all.Bookings, 2)

	_, err = s.service.ListUserBookings(s.ctx, users.Actor{}, BookingListQuery{})
	s.ErrorIs(err, ErrForbidden)
}

func (s *ServiceSuite) TestSummary() {
	first, err := s.book(member, "E1", 3, "2025-03-01")
	s.Require().NoError(err)
	second, err := s.book(other, "E1", 2, "2025-03-01")
	s.Require().NoError(err)
	_, err = s.book(admin, "E1", 4, "2025-03-02")
	s.Require().NoError(err)

	_, err = s.service.ChangeStatus(s.ctx, admin, first.BookingReference, StatusConfirmed, "")
	s.Require().NoError(err)
	_, err = s.service.Cancel(s.ctx, other, second.BookingReference, "")
	s.Require().NoError(err)

	summary, err := s.service.Summary(s.ctx, "E1")
	s.Require().NoError(err)
	s.Equal(int64(3), summary.TotalBookings)
	s.Equal(int64(1), summary.ActiveBookings)
	s.Equal(int64(7), summary.ReservedPlaces)
	s.True(decimal.NewFromInt(300).Equal(summary.ConfirmedRevenue))
	s.Len(summary.ByStatus, 3)
}

func (s *ServiceSuite) TestPublishFailureDoesNotFailBooking() {
	s.publisher.err = errors.New("kafka: broker down")

	booking, err := s.book(member, "E1", 1, "2025-03-01")
	s.Require().NoError(err)
	s.NotEmpty(booking.BookingReference)
	s.Equal(1, s.repo.count())
}

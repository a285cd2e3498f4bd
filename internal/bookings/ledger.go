package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubtrips/internal/pricing"
	"clubtrips/internal/shared/config"
	"clubtrips/internal/tickets"
	"clubtrips/pkg/logger"

	"github.com/shopspring/decimal"
)

const maxReferenceAttempts = 5

// Ledger owns every write to the booking store: create, status changes and
// the administrative delete. Each call is bounded by the store timeout.
type Ledger struct {
	repo         Repository
	newReference ReferenceGenerator
	now          func() time.Time
	timeout      time.Duration
	log          *logger.Logger
}

type LedgerOption func(*Ledger)

// WithClock replaces time.Now
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithReferenceGenerator replaces the random reference generator
func WithReferenceGenerator(gen ReferenceGenerator) LedgerOption {
	return func(l *Ledger) { l.newReference = gen }
}

func NewLedger(repo Repository, cfg config.BookingConfig, log *logger.Logger, opts ...LedgerOption) *Ledger {
	if log == nil {
		log = logger.GetDefault()
	}
	l := &Ledger{
		repo:         repo,
		newReference: NewReferenceGenerator(cfg.ReferencePrefix),
		now:          time.Now,
		timeout:      cfg.StoreTimeout,
		log:          log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateParams describes a new booking. UnitPrice is the event price at
// booking time; Capacity, when set, is the event-wide attendee ceiling.
type CreateParams struct {
	EventID   string
	Event     EventSnapshot
	Owner     Owner
	Attendees int
	UnitPrice decimal.Decimal
	Capacity  *int

	ContactPhone    string
	SpecialRequests string
	PaymentMethod   string
}

// TransitionParams describes a status change. Authorize runs against the
// locked row before the transition is applied.
type TransitionParams struct {
	Reference string
	To        Status
	Reason    string
	Authorize func(*Booking) error
}

func (l *Ledger) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}

// CheckExisting returns the pair's non-cancelled booking, or nil
func (l *Ledger) CheckExisting(ctx context.Context, userID, eventID string) (*Booking, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	return l.repo.FindActive(ctx, userID, eventID)
}

// Create records a pending booking. Uniqueness per (user, event) is enforced
// by the store; a lost race surfaces as AlreadyBookedError.
func (l *Ledger) Create(ctx context.Context, p CreateParams) (*Booking, error) {
	if p.Owner.UserID == "" || p.EventID == "" {
		return nil, fmt.Errorf("%w: user and event are required", ErrInvalidArgument)
	}

	total, err := pricing.ComputeTotal(p.UnitPrice, p.Attendees)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	ctx, cancel := l.bounded(ctx)
	defer cancel()

	existing, err := l.repo.FindActive(ctx, p.Owner.UserID, p.EventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadyBookedError{Existing: existing}
	}

	retriedVanishedHolder := false
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		reference, err := l.newReference(l.now())
		if err != nil {
			return nil, err
		}

		booking := &Booking{
			BookingReference: reference,
			EventID:          p.EventID,
			Event:            p.Event,
			Owner:            p.Owner,
			Attendees:        p.Attendees,
			UnitPrice:        p.UnitPrice,
			TotalAmount:      total,
			Status:           StatusPending,
			ContactPhone:     p.ContactPhone,
			SpecialRequests:  p.SpecialRequests,
			PaymentMethod:    p.PaymentMethod,
		}

		err = l.repo.Create(ctx, booking, p.Capacity)
		switch {
		case err == nil:
			l.log.LogBookingCreated(ctx, booking.BookingReference, booking.EventID, booking.Owner.UserID, booking.Attendees)
			return booking, nil
		case errors.Is(err, errReferenceTaken):
			l.log.WarnContext(ctx, "booking reference collision, retrying", "attempt", attempt+1)
			continue
		case errors.Is(err, ErrAlreadyBooked):
			holder, findErr := l.repo.FindActive(ctx, p.Owner.UserID, p.EventID)
			if findErr != nil {
				return nil, findErr
			}
			// The conflicting booking was cancelled between the insert and the lookup
			if holder == nil && !retriedVanishedHolder {
				retriedVanishedHolder = true
				continue
			}
			return nil, &AlreadyBookedError{Existing: holder}
		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: could not allocate a unique booking reference", ErrUnavailable)
}

// Transition applies a status change and returns the updated booking with
// the status it left. The first entry into an active status issues the ticket.
func (l *Ledger) Transition(ctx context.Context, p TransitionParams) (*Booking, Status, error) {
	if !p.To.IsValid() {
		return nil, "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidArgument, p.To)
	}

	ctx, cancel := l.bounded(ctx)
	defer cancel()

	var from Status
	booking, err := l.repo.UpdateStatus(ctx, p.Reference, func(b *Booking) error {
		if p.Authorize != nil {
			if err := p.Authorize(b); err != nil {
				return err
			}
		}
		if !b.Status.CanTransitionTo(p.To) {
			return &TransitionError{From: b.Status, To: p.To}
		}

		from = b.Status
		now := l.now().UTC()
		b.Status = p.To

		if p.To.IsActive() {
			b.TicketNumber = tickets.Issue(b)
			if b.ConfirmedAt == nil {
				b.ConfirmedAt = &now
			}
		}
		if p.To == StatusCancelled {
			b.CancelledAt = &now
			b.CancellationReason = p.Reason
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	l.log.LogBookingStatusChanged(ctx, booking.BookingReference, from.String(), booking.Status.String())
	return booking, from, nil
}

// SetStatus moves a booking to status
func (l *Ledger) SetStatus(ctx context.Context, reference string, status Status) (*Booking, error) {
	booking, _, err := l.Transition(ctx, TransitionParams{Reference: reference, To: status})
	return booking, err
}

// Cancel is SetStatus(reference, cancelled) with a reason
func (l *Ledger) Cancel(ctx context.Context, reference, reason string) (*Booking, error) {
	booking, _, err := l.Transition(ctx, TransitionParams{Reference: reference, To: StatusCancelled, Reason: reason})
	return booking, err
}

// Delete hard-removes a booking whatever its status. It bypasses the status
// graph, cannot be undone and leaves no record behind; only administrators
// may reach it.
func (l *Ledger) Delete(ctx context.Context, reference string) error {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	return l.repo.Delete(ctx, reference)
}

func (l *Ledger) Get(ctx context.Context, reference string) (*Booking, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	return l.repo.GetByReference(ctx, reference)
}

func (l *Ledger) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	query.normalise()
	return l.repo.List(ctx, query)
}

func (l *Ledger) Summary(ctx context.Context, eventID string) ([]StatusTotals, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	return l.repo.Summary(ctx, eventID)
}

package bookings

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrAlreadyBooked     = errors.New("user already has an active booking for this event")
	ErrInvalidDate       = errors.New("selected date is not available for this event")
	ErrCapacityExceeded  = errors.New("event capacity exceeded")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNotFound          = errors.New("booking not found")
	ErrUnavailable       = errors.New("booking store unavailable")
	ErrForbidden         = errors.New("not allowed to act on this booking")
	ErrEventNotBookable  = errors.New("event is not open for booking")

	// errReferenceTaken signals a booking reference collision; the ledger re-rolls
	errReferenceTaken = errors.New("booking reference already in use")
)

// AlreadyBookedError carries the booking that holds the slot so callers can
// route the user to it.
type AlreadyBookedError struct {
	Existing *Booking
}

func (e *AlreadyBookedError) Error() string {
	if e.Existing == nil {
		return ErrAlreadyBooked.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrAlreadyBooked.Error(), e.Existing.BookingReference)
}

func (e *AlreadyBookedError) Is(target error) bool {
	return target == ErrAlreadyBooked
}

// TransitionError names the rejected status change
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// IsRetryable reports whether the caller may retry the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

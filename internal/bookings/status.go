package bookings

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
)

// validTransitions is the complete status graph. Cancelled has no exits.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusAccepted, StatusCancelled},
	StatusConfirmed: {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusConfirmed, StatusCancelled},
	StatusCancelled: {},
}

// ParseStatus accepts any casing of the four status names
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidArgument, s)
	}
	return status, nil
}

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a ticket is shown for this status
func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusAccepted
}

// HoldsSlot reports whether the booking counts against the one-per-user rule
func (s Status) HoldsSlot() bool {
	return s.IsValid() && s != StatusCancelled
}

// IsTerminal reports whether no transition leaves this status
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

// CanTransitionTo checks the transition table
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

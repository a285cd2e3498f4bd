// Package tickets derives display ticket numbers for active bookings.
package tickets

import "fmt"

// Ticketable is the part of a booking the issuer needs
type Ticketable interface {
	TicketID() uint64
	ExistingTicket() string
}

// Issue returns the booking's ticket number, deriving TKT-<id> (six digits,
// zero padded) when none has been assigned yet.
func Issue(b Ticketable) string {
	if existing := b.ExistingTicket(); existing != "" {
		return existing
	}
	return fmt.Sprintf("TKT-%06d", b.TicketID())
}

package bookings

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventSnapshot is the event as it looked when the booking was made
type EventSnapshot struct {
	Title string     `json:"title" gorm:"size:255"`
	Date  *time.Time `json:"date" gorm:"type:date"`
}

// Owner identifies the user a booking belongs to
type Owner struct {
	UserID    string `json:"user_id" gorm:"size:64;not null"`
	UserName  string `json:"user_name" gorm:"size:255"`
	UserEmail string `json:"user_email" gorm:"size:255"`
}

// Booking is a ledger entry. BookingReference is the external key; ID is
// internal and only feeds ticket numbering.
type Booking struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingReference string `gorm:"size:32;not null;uniqueIndex:uniq_booking_reference" json:"booking_reference"`
	TicketNumber     string `gorm:"size:32" json:"ticket_number,omitempty"`

	EventID string        `gorm:"size:64;not null;index" json:"event_id"`
	Event   EventSnapshot `gorm:"embedded;embeddedPrefix:event_" json:"event"`
	Owner   Owner         `gorm:"embedded" json:"owner"`

	Attendees   int             `gorm:"not null" json:"attendees"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      Status          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	ContactPhone    string `gorm:"size:32" json:"contact_phone,omitempty"`
	SpecialRequests string `gorm:"type:text" json:"special_requests,omitempty"`
	PaymentMethod   string `gorm:"size:32" json:"payment_method,omitempty"`

	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "booking_tickets"
}

// TicketID implements tickets.Ticketable
func (b *Booking) TicketID() uint64 {
	return b.ID
}

// ExistingTicket implements tickets.Ticketable
func (b *Booking) ExistingTicket() string {
	return b.TicketNumber
}

// VisibleTicket is the ticket number while the booking is active, else ""
func (b *Booking) VisibleTicket() string {
	if b.Status.IsActive() {
		return b.TicketNumber
	}
	return ""
}

// StatusTotals is one row of the per-status booking summary
type StatusTotals struct {
	Status    Status          `json:"status"`
	Bookings  int64           `json:"bookings"`
	Attendees int64           `json:"attendees"`
	Amount    decimal.Decimal `json:"amount"`
}

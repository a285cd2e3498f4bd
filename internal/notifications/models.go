package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	BookingEventCreated       BookingEventType = "BOOKING_CREATED"
	BookingEventStatusChanged BookingEventType = "BOOKING_STATUS_CHANGED"
	BookingEventCancelled     BookingEventType = "BOOKING_CANCELLED"
	BookingEventDeleted       BookingEventType = "BOOKING_DELETED"
)

// BookingEvent is the record published for every booking ledger write.
// Email and other deliveries are downstream consumers of this stream.
type BookingEvent struct {
	ID               uuid.UUID        `json:"id"`
	Type             BookingEventType `json:"type"`
	BookingReference string           `json:"booking_reference"`
	EventID          string           `json:"event_id"`
	EventTitle       string           `json:"event_title,omitempty"`
	UserID           string           `json:"user_id"`
	UserEmail        string           `json:"user_email,omitempty"`
	Attendees        int              `json:"attendees,omitempty"`
	Status           string           `json:"status,omitempty"`
	PreviousStatus   string           `json:"previous_status,omitempty"`
	TicketNumber     string           `json:"ticket_number,omitempty"`
	ActorID          string           `json:"actor_id,omitempty"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

// NewBookingEvent stamps a fresh id and timestamp
func NewBookingEvent(eventType BookingEventType, reference string) BookingEvent {
	return BookingEvent{
		ID:               uuid.New(),
		Type:             eventType,
		BookingReference: reference,
		OccurredAt:       time.Now().UTC(),
	}
}

// GetPartitionKey keeps every record of one booking on one partition
func (e BookingEvent) GetPartitionKey() string {
	return e.BookingReference
}

func (e BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

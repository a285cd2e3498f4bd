package bookings

import (
	"time"

	"clubtrips/internal/shared/utils/response"

	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	BookingReference   string          `json:"booking_reference"`
	TicketNumber       string          `json:"ticket_number,omitempty"`
	EventID            string          `json:"event_id"`
	EventTitle         string          `json:"event_title"`
	EventDate          *string         `json:"event_date"`
	UserID             string          `json:"user_id"`
	UserName           string          `json:"user_name,omitempty"`
	UserEmail          string          `json:"user_email,omitempty"`
	Attendees          int             `json:"attendees"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Status             Status          `json:"status"`
	ContactPhone       string          `json:"contact_phone,omitempty"`
	SpecialRequests    string          `json:"special_requests,omitempty"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (b *Booking) ToResponse() BookingResponse {
	var eventDate *string
	if b.Event.Date != nil {
		d := b.Event.Date.Format(DateLayout)
		eventDate = &d
	}

	return BookingResponse{
		BookingReference:   b.BookingReference,
		TicketNumber:       b.VisibleTicket(),
		EventID:            b.EventID,
		EventTitle:         b.Event.Title,
		EventDate:          eventDate,
		UserID:             b.Owner.UserID,
		UserName:           b.Owner.UserName,
		UserEmail:          b.Owner.UserEmail,
		Attendees:          b.Attendees,
		UnitPrice:          b.UnitPrice,
		TotalAmount:        b.TotalAmount,
		Status:             b.Status,
		ContactPhone:       b.ContactPhone,
		SpecialRequests:    b.SpecialRequests,
		PaymentMethod:      b.PaymentMethod,
		ConfirmedAt:        b.ConfirmedAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	EventID string   `json:"event_id"`
	Dates   []string `json:"dates"`
}

type QuoteResponse struct {
	EventID     string          `json:"event_id"`
	Attendees   int             `json:"attendees"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ExistingBookingResponse drives the "Book Now" / "View Your Booking" choice
type ExistingBookingResponse struct {
	HasBooking bool             `json:"has_booking"`
	Booking    *BookingResponse `json:"booking,omitempty"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse   `json:"bookings"`
	Pagination response.Pagination `json:"pagination"`
}

type BookingSummary struct {
	EventID          string          `json:"event_id,omitempty"`
	ByStatus         []StatusTotals  `json:"by_status"`
	TotalBookings    int64           `json:"total_bookings"`
	ActiveBookings   int64           `json:"active_bookings"`
	ReservedPlaces   int64           `json:"reserved_places"`
	ConfirmedRevenue decimal.Decimal `json:"confirmed_revenue"`
}

func toResponses(bookings []Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = bookings[i].ToResponse()
	}
	return out
}

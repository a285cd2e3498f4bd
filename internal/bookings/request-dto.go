package bookings

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// BookRequest is the body of POST /bookings
type BookRequest struct {
	EventID         string `json:"event_id" binding:"required,max=64"`
	Attendees       int    `json:"attendees" binding:"required,min=1"`
	Date            string `json:"date" binding:"omitempty,calendardate"`
	ContactPhone    string `json:"contact_phone" binding:"omitempty,max=32"`
	SpecialRequests string `json:"special_requests" binding:"omitempty,max=2000"`
	PaymentMethod   string `json:"payment_method" binding:"omitempty,max=32"`
}

// SelectedDate parses Date, nil when omitted
func (r BookRequest) SelectedDate() (*time.Time, error) {
	if r.Date == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed accepted cancelled"`
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

type QuoteQuery struct {
	Attendees int `form:"attendees" binding:"required,min=1"`
}

type BookingListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed accepted cancelled"`
	EventID  string `form:"event_id" binding:"omitempty,max=64"`
	DateFrom string `form:"date_from" binding:"omitempty,calendardate"`
	DateTo   string `form:"date_to" binding:"omitempty,calendardate"`

	// UserID is set by the service, never bound from the query string
	UserID string `form:"-"`
}

func (q *BookingListQuery) normalise() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
}

type SummaryQuery struct {
	EventID string `form:"event_id" binding:"omitempty,max=64"`
}

// ValidateCalendarDate accepts YYYY-MM-DD strings
func ValidateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// RegisterValidators adds the booking validations to v
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("calendardate", ValidateCalendarDate)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

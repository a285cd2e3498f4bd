package events

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// ErrInvalidDateRange is returned by Validate when the window ends before it starts
var ErrInvalidDateRange = errors.New("event end date is before its start date")

// Event is a catalog entry. The booking engine only ever reads it.
type Event struct {
	ID          string          `json:"id" gorm:"primaryKey;size:64"`
	Title       string          `json:"title" gorm:"not null;size:255"`
	Description string          `json:"description" gorm:"type:text"`
	Location    string          `json:"location" gorm:"size:255"`
	StartDate   *time.Time      `json:"start_date" gorm:"type:date"`
	EndDate     *time.Time      `json:"end_date" gorm:"type:date"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0;check:price >= 0"`
	Capacity    *int            `json:"capacity" gorm:"check:capacity > 0"`
	MaxPeople   *int            `json:"max_people" gorm:"check:max_people > 0"`
	Status      EventStatus     `json:"status" gorm:"type:varchar(20);default:'upcoming'"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "booking_events"
}

// DateRange returns the inclusive window the event runs in
func (e *Event) DateRange() (start, end *time.Time) {
	return e.StartDate, e.EndDate
}

// Validate checks the catalog invariants
func (e *Event) Validate() error {
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// AttendeeLimit is the event's own ceiling on attendees, preferring capacity
// over max people. Nil when the event sets neither.
func (e *Event) AttendeeLimit() *int {
	if e.Capacity != nil {
		return e.Capacity
	}
	return e.MaxPeople
}

// IsBookable reports whether new bookings may be taken
func (e *Event) IsBookable() bool {
	if !e.IsActive {
		return false
	}
	return e.Status == EventStatusUpcoming || e.Status == EventStatusOngoing || e.Status == ""
}

type EventResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Price       decimal.Decimal `json:"price"`
	Capacity    *int            `json:"capacity"`
	MaxPeople   *int            `json:"max_people"`
	Status      EventStatus     `json:"status"`
	Bookable    bool            `json:"bookable"`
}

type EventListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Price:       e.Price,
		Capacity:    e.Capacity,
		MaxPeople:   e.MaxPeople,
		Status:      e.Status,
		Bookable:    e.IsBookable(),
	}
}

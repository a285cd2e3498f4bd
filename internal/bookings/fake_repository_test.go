package bookings

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memoryRepository mirrors the Postgres constraints the ledger relies on:
// unique references, one non-cancelled booking per (user, event) and the
// cumulative capacity check.
type memoryRepository struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[string]Booking
	failWith error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{bookings: make(map[string]Booking)}
}

func (m *memoryRepository) Create(ctx context.Context, b *Booking, capacity *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	if _, taken := m.bookings[b.BookingReference]; taken {
		return errReferenceTaken
	}

	booked := 0
	for _, existing := range m.bookings {
		if existing.EventID != b.EventID || existing.Status == StatusCancelled {
			continue
		}
		if existing.Owner.UserID == b.Owner.UserID {
			return ErrAlreadyBooked
		}
		booked += existing.Attendees
	}
	if capacity != nil && b.Attendees > *capacity-booked {
		return ErrCapacityExceeded
	}

	m.nextID++
	b.ID = m.nextID
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	m.bookings[b.BookingReference] = *b
	return nil
}

func (m *memoryRepository) FindActive(ctx context.Context, userID, eventID string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, b := range m.bookings {
		if b.Owner.UserID == userID && b.EventID == eventID && b.Status != StatusCancelled {
			return &b, nil
		}
	}
	return nil, nil
}

func (m *memoryRepository) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[reference]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *memoryRepository) UpdateStatus(ctx context.Context, reference string, mutate func(*Booking) error) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[reference]
	if !ok {
		return nil, ErrNotFound
	}
	if err := mutate(&b); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC()
	m.bookings[reference] = b
	return &b, nil
}

func (m *memoryRepository) Delete(ctx context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[reference]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, reference)
	return nil
}

func (m *memoryRepository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Booking
	for _, b := range m.bookings {
		if query.UserID != "" && b.Owner.UserID != query.UserID {
			continue
		}
		if query.EventID != "" && b.EventID != query.EventID {
			continue
		}
		if query.Status != "" && string(b.Status) != query.Status {
			continue
		}
		matched = append(matched, b)
	}
	slices.SortFunc(matched, func(a, b Booking) int {
		return strings.Compare(a.BookingReference, b.BookingReference)
	})

	total := int64(len(matched))
	start := min((query.Page-1)*query.Limit, len(matched))
	end := min(start+query.Limit, len(matched))
	return matched[start:end], total, nil
}

func (m *memoryRepository) Summary(ctx context.Context, eventID string) ([]StatusTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byStatus := make(map[Status]*StatusTotals)
	for _, b := range m.bookings {
		if eventID != "" && b.EventID != eventID {
			continue
		}
		row, ok := byStatus[b.Status]
		if !ok {
			row = &StatusTotals{Status: b.Status, Amount: decimal.Zero}
			byStatus[b.Status] = row
		}
		row.Bookings++
		row.Attendees += int64(b.Attendees)
		row.Amount = row.Amount.Add(b.TotalAmount)
	}

	var totals []StatusTotals
	for _, row := range byStatus {
		totals = append(totals, *row)
	}
	slices.SortFunc(totals, func(a, b StatusTotals) int {
		return strings.Compare(string(a.Status), string(b.Status))
	})
	return totals, nil
}

func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

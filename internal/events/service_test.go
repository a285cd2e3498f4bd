package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clubtrips/internal/shared/constants"
	"clubtrips/pkg/cache"
	"clubtrips/pkg/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	events map[string]*Event
	err    error
	gets   int
}

func (f *fakeRepository) Create(_ context.Context, event *Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Event, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeRepository) GetAll(_ context.Context, query EventListQuery) ([]Event, int64, error) {
	var out []Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func sampleEvent() *Event {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	return &Event{
		ID:        "E1",
		Title:     "Alpine Hut Weekend",
		StartDate: &start,
		EndDate:   &end,
		Price:     decimal.NewFromInt(100),
		Status:    EventStatusUpcoming,
		IsActive:  true,
	}
}

func TestGetEventWithoutCache(t *testing.T) {
	repo := &fakeRepository{events: map[string]*Event{"E1": sampleEvent()}}
	svc := NewService(repo, nil)

	event, err := svc.GetEvent(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, "Alpine Hut Weekend", event.Title)

	_, err = svc.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetEventPopulatesCacheOnMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	event := sampleEvent()
	repo := &fakeRepository{events: map[string]*Event{"E1": event}}
	svc := NewService(repo, cache.NewService(db, logger.Discard()))

	data, err := json.Marshal(event)
	require.NoError(t, err)

	key := constants.BuildEventDetailKey("E1")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, data, constants.TTL_EVENT_DETAIL).SetVal("OK")

	got, err := svc.GetEvent(context.Background(), "E1")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, repo.gets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventServesFromCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := &fakeRepository{events: map[string]*Event{}}
	svc := NewService(repo, cache.NewService(db, logger.Discard()))

	data, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	mock.ExpectGet(constants.BuildEventDetailKey("E1")).SetVal(string(data))

	got, err := svc.GetEvent(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, "E1", got.ID)
	assert.Equal(t, 0, repo.gets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventWrapsStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&fakeRepository{err: boom}, nil)

	_, err := svc.GetEvent(context.Background(), "E1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEventNotFound)
}

func TestEventInvariants(t *testing.T) {
	e := sampleEvent()
	assert.NoError(t, e.Validate())

	before := e.StartDate.AddDate(0, 0, -1)
	e.EndDate = &before
	assert.ErrorIs(t, e.Validate(), ErrInvalidDateRange)
}

func TestAttendeeLimitAndBookable(t *testing.T) {
	capacity, maxPeople := 12, 30
	e := sampleEvent()
	assert.Nil(t, e.AttendeeLimit())

	e.MaxPeople = &maxPeople
	assert.Equal(t, 30, *e.AttendeeLimit())

	e.Capacity = &capacity
	assert.Equal(t, 12, *e.AttendeeLimit())

	assert.True(t, e.IsBookable())
	e.Status = EventStatusCompleted
	assert.False(t, e.IsBookable())
	e.Status = EventStatusOngoing
	e.IsActive = false
	assert.False(t, e.IsBookable())
}

func TestGetAllEventsDefaultsPaging(t *testing.T) {
	repo := &fakeRepository{events: map[string]*Event{"E1": sampleEvent()}}
	svc := NewService(repo, nil)

	page, err := svc.GetAllEvents(context.Background(), EventListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Events, 1)
	assert.True(t, page.Events[0].Bookable)
}

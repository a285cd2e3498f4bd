package events

import (
	"context"
	"errors"
	"fmt"
	"math"

	"clubtrips/internal/shared/constants"
	"clubtrips/pkg/cache"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

// Service is the read side of the event catalog
type Service interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

// NewService builds the catalog service. cacheService may be nil.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:         repo,
		cacheService: cacheService,
	}
}

func (s *service) GetEvent(ctx context.Context, id string) (*Event, error) {
	if s.cacheService == nil {
		return s.load(ctx, id)
	}

	var event Event
	err := s.cacheService.GetOrSet(ctx, constants.BuildEventDetailKey(id), constants.TTL_EVENT_DETAIL,
		func() (interface{}, error) { return s.load(ctx, id) }, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *service) load(ctx context.Context, id string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	events, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}

package events

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Event, error) {
	var event Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Event{}).Where("is_active = ?", true)

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", searchTerm, searchTerm)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("start_date ASC NULLS LAST").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, totalCount, nil
}

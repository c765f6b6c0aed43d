package audit

import (
	"context"

	"gorm.io/gorm"
)

type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Migrate() error {
	return s.db.AutoMigrate(&Event{})
}

func (s *SQLStore) Insert(ctx context.Context, evt *Event) error {
	return s.db.WithContext(ctx).Create(evt).Error
}

func (s *SQLStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	query := s.db.WithContext(ctx).Model(&Event{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ActorUser != "" {
		query = query.Where("actor_id = ?", filter.ActorUser)
	}
	out := []Event{}
	err := query.Order("created_at DESC").Limit(filter.Limit).Find(&out).Error
	return out, err
}

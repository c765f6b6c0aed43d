package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"hradmin/internal/requestctx"
)

type Event struct {
	ID         string    `json:"id" bson:"_id" gorm:"primaryKey"`
	ActorID    string    `json:"actorId" bson:"actorId"`
	Action     string    `json:"action" bson:"action" gorm:"index"`
	EntityType string    `json:"entityType" bson:"entityType" gorm:"index"`
	EntityID   string    `json:"entityId" bson:"entityId"`
	RequestID  string    `json:"requestId" bson:"requestId"`
	IP         string    `json:"ip" bson:"ip"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
	Before     string    `json:"before,omitempty" bson:"before,omitempty"`
	After      string    `json:"after,omitempty" bson:"after,omitempty"`
}

func (Event) TableName() string { return "audit_events" }

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorUser  string
	Limit      int
}

type Store interface {
	Insert(ctx context.Context, evt *Event) error
	List(ctx context.Context, filter Filter) ([]Event, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Record stores one audit event. Actor, request id and client ip come from
// ctx as populated by the HTTP middleware.
func (s *Service) Record(ctx context.Context, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshalState(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalState(after)
	if err != nil {
		return err
	}
	return s.store.Insert(ctx, &Event{
		ID:         uuid.NewString(),
		ActorID:    requestctx.GetActor(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         requestctx.GetClientIP(ctx),
		CreatedAt:  s.now(),
		Before:     beforeJSON,
		After:      afterJSON,
	})
}

// List returns matching events, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Event, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.store.List(ctx, filter)
}

func marshalState(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

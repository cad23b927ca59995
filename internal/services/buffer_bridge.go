package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/internal/infrastructure/buffer"
	"github.com/fastygo/kanban/usecase"
)

const (
	activityPriority = 2
	profilePriority  = 3
)

// BufferBridge adapts the processor to the use case ports.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

// RecordActivity assigns the entry an id before submitting so that a replay
// after a partial failure does not duplicate it.
func (b *BufferBridge) RecordActivity(ctx context.Context, activity *domain.Activity) error {
	if b.processor == nil || activity == nil {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.Touch(time.Now())
	payload, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return b.processor.Submit(ctx, buffer.Item{
		ID:       activity.ID,
		Entity:   buffer.EntityActivity,
		Ref:      activity.CardRef,
		Data:     payload,
		Priority: activityPriority,
	})
}

func (b *BufferBridge) BufferProfile(ctx context.Context, user *domain.User) error {
	if b.processor == nil || user == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return b.processor.store.Enqueue(buffer.Item{
		Entity:   buffer.EntityProfile,
		Ref:      user.ID,
		Data:     payload,
		Priority: profilePriority,
	})
}

var (
	_ usecase.ActivityRecorder = (*BufferBridge)(nil)
	_ usecase.ProfileBuffer    = (*BufferBridge)(nil)
)

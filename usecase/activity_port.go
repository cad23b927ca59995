package usecase

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

// ActivityRecorder stores card history. Implementations may defer the write
// when the activity store is unreachable.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, activity *domain.Activity) error
}

// ProfileBuffer keeps a profile update for a later retry when the user store
// rejects it.
type ProfileBuffer interface {
	BufferProfile(ctx context.Context, user *domain.User) error
}

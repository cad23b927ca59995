package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

// SessionRepository stores sessions until their ExpiresAt. Saving an existing
// session replaces it and resets its expiry.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

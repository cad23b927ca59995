package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/usecase"
)

// Update lists the profile fields a user may change. Nil means unchanged.
type Update struct {
	Name     *string
	Avatar   *string
	Metadata map[string]string
}

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.ProfileBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.ProfileBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.Unavailable("fetch user", err)
	}
	return user, err
}

// UpdateProfile applies update to the stored user. When the write fails the
// update is buffered and the optimistic result returned.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, update Update) (*domain.User, error) {
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		user.Name = name
	}
	if update.Avatar != nil {
		user.Avatar = strings.TrimSpace(*update.Avatar)
	}
	if update.Metadata != nil {
		user.Metadata = update.Metadata
	}
	user.UpdatedAt = time.Now()

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer == nil {
			return nil, domain.Unavailable("update profile", err)
		}
		if bufErr := uc.buffer.BufferProfile(ctx, user); bufErr != nil {
			uc.logger.Error("failed to buffer profile update", zap.String("user_id", userID), zap.Error(bufErr))
			return nil, domain.Unavailable("update profile", err)
		}
		uc.logger.Warn("profile update buffered due to repository error", zap.String("user_id", userID), zap.Error(err))
	}
	return user, nil
}

// ListUsers returns the assignable users.
func (uc *UseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, domain.Unavailable("list users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

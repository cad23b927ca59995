package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

// Grant is returned by login and refresh.
type Grant struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	ExpiresIn int          `json:"expires_in"`
	User      *domain.User `json:"user,omitempty"`
}

// Principal is the identity resolved from a request token.
type Principal struct {
	Actor     domain.Actor
	SessionID string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *Tokens
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens *Tokens, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords produce the same error.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Grant, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Unavailable("fetch user", err)
	}
	if !user.IsActive() || user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Info("login rejected", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.Unavailable("save session", err)
	}

	grant, err := uc.grant(session, now)
	if err != nil {
		return nil, err
	}
	grant.User = user
	uc.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return grant, nil
}

// Authenticate resolves a bearer token to a live session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return Principal{}, err
	}
	session, err := uc.session(ctx, claims.SessionID)
	if err != nil {
		return Principal{}, err
	}
	if session.UserID != claims.UserID {
		return Principal{}, domain.ErrUnauthorized
	}
	return Principal{Actor: session.Actor(), SessionID: session.ID}, nil
}

// Refresh extends the session and issues a new token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*Grant, error) {
	session, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	session.ExpiresAt = now.Add(uc.ttl)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.Unavailable("extend session", err)
	}
	return uc.grant(session, now)
}

// Logout revokes the session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return domain.Unavailable("delete session", err)
	}
	return nil
}

// SeedAdmin creates the admin account when no user has the email yet.
func (uc *UseCase) SeedAdmin(ctx context.Context, email, name, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	now := uc.now()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         domain.RoleAdmin,
		Status:       "active",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Upsert(ctx, admin); err != nil {
		return err
	}
	uc.logger.Info("admin account created", zap.String("email", email))
	return nil
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (uc *UseCase) session(ctx context.Context, id string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.Unavailable("fetch session", err)
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, id)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) grant(session *domain.Session, now time.Time) (*Grant, error) {
	token, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &Grant{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		ExpiresIn: expiresIn(session.ExpiresAt, now),
	}, nil
}

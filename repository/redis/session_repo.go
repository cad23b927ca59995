package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

const sessionPrefix = "kanban:session:"

// Sessions are stored as hashes that expire at the session's ExpiresAt.
type sessionRepository struct {
	client *redislib.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redislib.Client, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{client: client, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return decodeSession(id, fields)
}

// Save replaces the stored session and moves its expiry to ExpiresAt.
func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	fields := map[string]any{
		"user_id":    session.UserID,
		"name":       session.Name,
		"role":       string(session.Role),
		"created_at": session.CreatedAt.UnixMilli(),
		"expires_at": session.ExpiresAt.UnixMilli(),
	}
	if len(session.Metadata) > 0 {
		meta, err := json.Marshal(session.Metadata)
		if err != nil {
			return err
		}
		fields["metadata"] = meta
	}

	key := sessionPrefix + session.ID
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionPrefix+id).Err()
}

func decodeSession(id string, fields map[string]string) (*domain.Session, error) {
	session := &domain.Session{
		ID:     id,
		UserID: fields["user_id"],
		Name:   fields["name"],
		Role:   domain.ParseRole(fields["role"]),
	}
	var err error
	if session.CreatedAt, err = unixMilli(fields["created_at"]); err != nil {
		return nil, err
	}
	if session.ExpiresAt, err = unixMilli(fields["expires_at"]); err != nil {
		return nil, err
	}
	if raw := fields["metadata"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &session.Metadata); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func unixMilli(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

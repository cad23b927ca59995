package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a Postgres-backed ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

// Append is idempotent on the activity id so a replayed buffer item is harmless.
func (r *activityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity == nil || activity.CardRef == "" || activity.Kind == "" {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO card_activity (id, card_ref, kind, actor_id, actor_name, payload, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	ON CONFLICT (id) DO NOTHING
	`
	var payload []byte
	if len(activity.Payload) > 0 {
		payload = []byte(activity.Payload)
	}

	_, err := r.pool.Exec(ctx, query,
		activity.ID,
		activity.CardRef,
		activity.Kind,
		activity.ActorID,
		activity.ActorName,
		payload,
		marshalMap(activity.Metadata),
		nullTime(activity.CreatedAt),
	)
	return err
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT id, card_ref, kind, actor_id, actor_name, payload, metadata, created_at
	FROM card_activity
	WHERE ($1 = '' OR card_ref = $1)
	  AND ($2 = '' OR kind = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.CardRef, filter.Kind, listLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			a        domain.Activity
			payload  []byte
			metadata []byte
		)
		if err := rows.Scan(&a.ID, &a.CardRef, &a.Kind, &a.ActorID, &a.ActorName, &payload, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			a.Payload = append([]byte(nil), payload...)
		}
		a.Metadata = unmarshalMap(metadata)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

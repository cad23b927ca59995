package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

const cardColumns = `id, project_id, title, description, column_id, priority,
	assignee_name, assignee_avatar, tags, subtasks_completed, subtasks_total,
	attachments, dependency_ids, blocked, time_spent, start_time, completed_time,
	estimated_completion, created_at, updated_at`

type cardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository returns a Postgres-backed implementation of CardRepository.
func NewCardRepository(pool *pgxpool.Pool) repository.CardRepository {
	return &cardRepository{pool: pool}
}

func (r *cardRepository) GetByID(ctx context.Context, id string) (*repository.CardRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return scanCard(row)
}

func (r *cardRepository) List(ctx context.Context, filter repository.CardFilter) ([]repository.CardRecord, error) {
	const query = `
	SELECT ` + cardColumns + `
	FROM cards
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR column_id = $2)
	ORDER BY created_at ASC, id ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.ProjectID, filter.Column, listLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []repository.CardRecord
	for rows.Next() {
		record, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (r *cardRepository) Create(ctx context.Context, record *repository.CardRecord) (*repository.CardRecord, error) {
	if record == nil {
		return nil, domain.ErrInvalidPayload
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO cards (id, project_id, title, description, column_id, priority,
		assignee_name, assignee_avatar, tags, subtasks_completed, subtasks_total,
		attachments, dependency_ids, blocked, time_spent, start_time, completed_time,
		estimated_completion)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING created_at, updated_at
	`

	c := record.Card
	if err := r.pool.QueryRow(ctx, query,
		record.ID,
		c.ProjectID,
		c.Title,
		c.Description,
		c.Column,
		string(c.Priority),
		c.Assignee.Name,
		c.Assignee.Avatar,
		nonNil(c.Tags),
		c.Subtasks.Completed,
		c.Subtasks.Total,
		c.Attachments,
		nonNil(record.DependencyIDs),
		c.Blocked,
		c.TimeSpent,
		c.StartTime,
		c.CompletedTime,
		c.EstimatedCompletionDate,
	).Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *cardRepository) Update(ctx context.Context, id string, patch repository.CardPatch) (*repository.CardRecord, error) {
	const query = `
	UPDATE cards
	SET title = COALESCE($2::text, title),
		description = COALESCE($3::text, description),
		column_id = COALESCE($4::text, column_id),
		priority = COALESCE($5::text, priority),
		assignee_name = COALESCE($6::text, assignee_name),
		assignee_avatar = COALESCE($7::text, assignee_avatar),
		tags = CASE WHEN $8::boolean THEN $9::text[] ELSE tags END,
		subtasks_completed = COALESCE($10::integer, subtasks_completed),
		subtasks_total = COALESCE($11::integer, subtasks_total),
		attachments = COALESCE($12::integer, attachments),
		dependency_ids = CASE WHEN $13::boolean THEN $14::text[] ELSE dependency_ids END,
		blocked = COALESCE($15::boolean, blocked),
		time_spent = COALESCE($16::integer, time_spent),
		start_time = COALESCE($17::timestamptz, start_time),
		completed_time = COALESCE($18::timestamptz, completed_time),
		estimated_completion = CASE WHEN $19::boolean THEN NULL
			ELSE COALESCE($20::timestamptz, estimated_completion) END,
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + cardColumns

	var (
		assigneeName, assigneeAvatar *string
		completed, total             *int
	)
	if patch.Assignee != nil {
		assigneeName, assigneeAvatar = &patch.Assignee.Name, &patch.Assignee.Avatar
	}
	if patch.Subtasks != nil {
		completed, total = &patch.Subtasks.Completed, &patch.Subtasks.Total
	}

	row := r.pool.QueryRow(ctx, query,
		id,
		patch.Title,
		patch.Description,
		patch.Column,
		priorityParam(patch.Priority),
		assigneeName,
		assigneeAvatar,
		patch.SetTags,
		nonNil(patch.Tags),
		completed,
		total,
		patch.Attachments,
		patch.SetDependencies,
		nonNil(patch.DependencyIDs),
		patch.Blocked,
		patch.TimeSpent,
		patch.StartTime,
		patch.CompletedTime,
		patch.ClearEstimate,
		patch.EstimatedCompletionDate,
	)
	return scanCard(row)
}

func (r *cardRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func scanCard(row interface {
	Scan(dest ...interface{}) error
}) (*repository.CardRecord, error) {
	var (
		record   repository.CardRecord
		priority string
		start    *time.Time
		done     *time.Time
		estimate *time.Time
	)
	c := &record.Card

	if err := row.Scan(
		&record.ID,
		&c.ProjectID,
		&c.Title,
		&c.Description,
		&c.Column,
		&priority,
		&c.Assignee.Name,
		&c.Assignee.Avatar,
		&c.Tags,
		&c.Subtasks.Completed,
		&c.Subtasks.Total,
		&c.Attachments,
		&record.DependencyIDs,
		&c.Blocked,
		&c.TimeSpent,
		&start,
		&done,
		&estimate,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}

	c.Priority = domain.Priority(priority)
	c.StartTime = start
	c.CompletedTime = done
	c.EstimatedCompletionDate = estimate
	return &record, nil
}

func priorityParam(p *domain.Priority) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

const projectColumns = `id, name, description, start_date, estimated_end_date, status, progress, created_at, updated_at`

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	const query = `
	SELECT ` + projectColumns + `
	FROM projects
	WHERE ($1 = '' OR status = $1)
	ORDER BY created_at ASC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.Status, listLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (id, name, description, start_date, estimated_end_date, status, progress)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.StartDate,
		project.EstimatedEndDate,
		string(project.Status),
		project.Progress,
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE projects
	SET name = $2,
		description = $3,
		start_date = $4,
		estimated_end_date = $5,
		status = $6,
		progress = $7,
		updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.StartDate,
		project.EstimatedEndDate,
		string(project.Status),
		project.Progress,
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProjectNotFound
		}
		return err
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Project, error) {
	var (
		project domain.Project
		status  string
	)
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.StartDate,
		&project.EstimatedEndDate,
		&status,
		&project.Progress,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	project.Status = domain.ProjectStatus(status)
	return &project, nil
}

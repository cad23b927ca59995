package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

type columnRepository struct {
	pool *pgxpool.Pool
}

// NewColumnRepository returns a Postgres-backed ColumnRepository.
func NewColumnRepository(pool *pgxpool.Pool) repository.ColumnRepository {
	return &columnRepository{pool: pool}
}

func (r *columnRepository) List(ctx context.Context) ([]domain.Column, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, color, position FROM board_columns ORDER BY position ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []domain.Column
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.ID, &col.Title, &col.Color, &col.Position); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (r *columnRepository) Create(ctx context.Context, column *domain.Column) error {
	if column == nil || column.ID == "" {
		return domain.ErrInvalidPayload
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO board_columns (id, title, color, position) VALUES ($1, $2, $3, $4)`,
		column.ID, column.Title, column.Color, column.Position)
	return err
}

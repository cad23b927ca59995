package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type ColumnRepository interface {
	List(ctx context.Context) ([]domain.Column, error)
	Create(ctx context.Context, column *domain.Column) error
}

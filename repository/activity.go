package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type ActivityFilter struct {
	CardRef string
	Kind    string
	Limit   int
	Offset  int
}

type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}

package repository

import (
	"context"
	"time"

	"github.com/fastygo/kanban/domain"
)

// CardRecord is a card as the persistence layer sees it: keyed by an opaque id,
// with dependencies expressed as opaque ids too. Card.ID and Card.Dependencies are
// ignored by repositories.
type CardRecord struct {
	ID            string      `json:"id"`
	Card          domain.Card `json:"card"`
	DependencyIDs []string    `json:"dependency_ids"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type CardFilter struct {
	ProjectID string
	Column    string
	Limit     int
	Offset    int
}

// CardPatch lists the fields to change in a partial update. Nil means unchanged.
type CardPatch struct {
	Title                   *string
	Description             *string
	Column                  *string
	Priority                *domain.Priority
	Assignee                *domain.Assignee
	Tags                    []string
	SetTags                 bool
	Subtasks                *domain.Subtasks
	Attachments             *int
	DependencyIDs           []string
	SetDependencies         bool
	Blocked                 *bool
	TimeSpent               *int
	StartTime               *time.Time
	CompletedTime           *time.Time
	EstimatedCompletionDate *time.Time
	ClearEstimate           bool
}

// Empty reports whether the patch changes nothing.
func (p CardPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Column == nil && p.Priority == nil &&
		p.Assignee == nil && !p.SetTags && p.Subtasks == nil && p.Attachments == nil &&
		!p.SetDependencies && p.Blocked == nil && p.TimeSpent == nil && p.StartTime == nil &&
		p.CompletedTime == nil && p.EstimatedCompletionDate == nil && !p.ClearEstimate
}

type CardRepository interface {
	GetByID(ctx context.Context, id string) (*CardRecord, error)
	List(ctx context.Context, filter CardFilter) ([]CardRecord, error)
	Create(ctx context.Context, record *CardRecord) (*CardRecord, error)
	Update(ctx context.Context, id string, patch CardPatch) (*CardRecord, error)
	Delete(ctx context.Context, id string) error
}

package report

import (
	"slices"
	"time"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/usecase/board"
)

// TimelineEntry is one card on the project timeline.
type TimelineEntry struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	StartDate        time.Time       `json:"start_date"`
	EstimatedEndDate *time.Time      `json:"estimated_end_date,omitempty"`
	ActualEndDate    *time.Time      `json:"actual_end_date,omitempty"`
	Progress         int             `json:"progress"`
	Status           string          `json:"status"`
	Assignee         domain.Assignee `json:"assignee"`
	IsOverdue        bool            `json:"is_overdue"`
	TimeSpent        int             `json:"time_spent"`
	ExecutionTime    int             `json:"execution_time"`
}

// ColumnProgress maps a column to the completion percentage shown on the
// timeline. Unknown columns count as not started.
func ColumnProgress(column string) int {
	switch column {
	case domain.ColumnDone:
		return 100
	case domain.ColumnReview:
		return 75
	case domain.ColumnInProgress:
		return 50
	default:
		return 0
	}
}

// ProjectTimeline projects cards onto a timeline ordered by start date.
// Cards never started use now as their start. Ties keep input order.
func ProjectTimeline(cards []domain.Card, now time.Time) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(cards))
	for _, c := range cards {
		start := now
		if c.StartTime != nil {
			start = *c.StartTime
		}
		entries = append(entries, TimelineEntry{
			ID:               c.ID,
			Title:            c.Title,
			StartDate:        start,
			EstimatedEndDate: c.EstimatedCompletionDate,
			ActualEndDate:    c.CompletedTime,
			Progress:         ColumnProgress(c.Column),
			Status:           c.Column,
			Assignee:         c.Assignee,
			IsOverdue:        c.IsOverdue(now),
			TimeSpent:        c.TimeSpent,
			ExecutionTime:    ExecutionHours(c, now),
		})
	}
	slices.SortStableFunc(entries, func(a, b TimelineEntry) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return entries
}

// ExecutionHours is completed minus start for finished cards and now minus
// start for cards still running. Cards never started report 0.
func ExecutionHours(c domain.Card, now time.Time) int {
	if c.StartTime == nil {
		return 0
	}
	end := now
	if c.CompletedTime != nil {
		end = *c.CompletedTime
	}
	return board.HoursSince(*c.StartTime, end)
}

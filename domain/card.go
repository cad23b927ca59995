package domain

import (
	"slices"
	"strings"
	"time"
)

// Priority ranks a card on the board.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts the canonical values as well as capitalised display labels.
func ParsePriority(raw string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// Assignee is a denormalised copy of the person a card is assigned to.
type Assignee struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Subtasks tracks checklist completion on a card.
type Subtasks struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Valid reports whether 0 <= completed <= total.
func (s Subtasks) Valid() bool {
	return s.Completed >= 0 && s.Total >= 0 && s.Completed <= s.Total
}

// Card is a unit of work on the board. ID is the board-local identifier;
// the persistence layer keys cards by its own opaque ids.
type Card struct {
	ID                      int64      `json:"id"`
	Title                   string     `json:"title"`
	Description             string     `json:"description,omitempty"`
	Column                  string     `json:"column"`
	Priority                Priority   `json:"priority"`
	Assignee                Assignee   `json:"assignee"`
	Tags                    []string   `json:"tags"`
	Subtasks                Subtasks   `json:"subtasks"`
	Attachments             int        `json:"attachments"`
	Dependencies            []int64    `json:"dependencies"`
	Blocked                 bool       `json:"blocked"`
	TimeSpent               int        `json:"time_spent"`
	StartTime               *time.Time `json:"start_time,omitempty"`
	CompletedTime           *time.Time `json:"completed_time,omitempty"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
	ProjectID               string     `json:"project_id"`
}

// IsOverdue reports whether the estimate has passed while the card is not done.
func (c Card) IsOverdue(now time.Time) bool {
	if c.EstimatedCompletionDate == nil || c.Column == ColumnDone {
		return false
	}
	return now.After(*c.EstimatedCompletionDate)
}

// SubtaskProgressPercent returns completed subtasks as a percentage of the total.
func (c Card) SubtaskProgressPercent() float64 {
	if c.Subtasks.Total == 0 {
		return 0
	}
	return 100 * float64(c.Subtasks.Completed) / float64(c.Subtasks.Total)
}

// HasTag reports tag membership.
func (c Card) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// Clone returns a deep copy that shares no slices or time pointers with c.
func (c Card) Clone() Card {
	out := c
	out.Tags = slices.Clone(c.Tags)
	out.Dependencies = slices.Clone(c.Dependencies)
	out.StartTime = cloneTime(c.StartTime)
	out.CompletedTime = cloneTime(c.CompletedTime)
	out.EstimatedCompletionDate = cloneTime(c.EstimatedCompletionDate)
	return out
}

// CardDraft carries the user-supplied fields of a new card.
type CardDraft struct {
	Title                   string
	Description             string
	Priority                Priority
	Assignee                Assignee
	Tags                    []string
	EstimatedCompletionDate *time.Time
	ProjectID               string
}

// Validate rejects drafts that must not reach the board.
func (d CardDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if d.Priority != "" {
		if _, ok := ParsePriority(string(d.Priority)); !ok {
			return Invalid("unknown priority")
		}
	}
	return nil
}

// CardEdit is a partial update of the editable card fields. Nil fields are kept.
type CardEdit struct {
	Title                   *string
	Description             *string
	Priority                *Priority
	Assignee                *Assignee
	Tags                    []string
	SetTags                 bool
	Subtasks                *Subtasks
	Attachments             *int
	Dependencies            []int64
	SetDependencies         bool
	Blocked                 *bool
	EstimatedCompletionDate *time.Time
	ClearEstimate           bool
}

// Apply returns a copy of card with the edit applied, or a validation error.
func (e CardEdit) Apply(card Card) (Card, error) {
	out := card.Clone()
	if e.Title != nil {
		if strings.TrimSpace(*e.Title) == "" {
			return card, ErrEmptyTitle
		}
		out.Title = strings.TrimSpace(*e.Title)
	}
	if e.Description != nil {
		out.Description = strings.TrimSpace(*e.Description)
	}
	if e.Priority != nil {
		p, ok := ParsePriority(string(*e.Priority))
		if !ok {
			return card, Invalid("unknown priority")
		}
		out.Priority = p
	}
	if e.Assignee != nil {
		out.Assignee = *e.Assignee
	}
	if e.SetTags {
		out.Tags = dedupe(e.Tags)
	}
	if e.Subtasks != nil {
		if !e.Subtasks.Valid() {
			return card, Invalid("subtasks must satisfy 0 <= completed <= total")
		}
		out.Subtasks = *e.Subtasks
	}
	if e.Attachments != nil {
		if *e.Attachments < 0 {
			return card, Invalid("attachments must not be negative")
		}
		out.Attachments = *e.Attachments
	}
	if e.SetDependencies {
		if slices.Contains(e.Dependencies, card.ID) {
			return card, Invalid("card cannot depend on itself")
		}
		out.Dependencies = dedupe(e.Dependencies)
	}
	if e.Blocked != nil {
		out.Blocked = *e.Blocked
	}
	switch {
	case e.ClearEstimate:
		out.EstimatedCompletionDate = nil
	case e.EstimatedCompletionDate != nil:
		out.EstimatedCompletionDate = cloneTime(e.EstimatedCompletionDate)
	}
	return out, nil
}

func dedupe[T comparable](in []T) []T {
	out := make([]T, 0, len(in))
	seen := make(map[T]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

package board

import (
	"time"

	"github.com/fastygo/kanban/domain"
)

// Each filter returns a new slice holding the cards of the input that pass the
// predicate, preserving order. Filters never mutate their input, so any
// combination of them yields the same set regardless of the order applied.

// ByProject keeps cards of the given project.
func ByProject(cards []domain.Card, projectID string) []domain.Card {
	return keep(cards, func(c domain.Card) bool { return c.ProjectID == projectID })
}

// ByAssignee keeps cards assigned to name. An empty name keeps everything.
func ByAssignee(cards []domain.Card, name string) []domain.Card {
	if name == "" {
		return cards
	}
	return keep(cards, func(c domain.Card) bool { return c.Assignee.Name == name })
}

// ByTag keeps cards carrying tag. An empty tag keeps everything.
func ByTag(cards []domain.Card, tag string) []domain.Card {
	if tag == "" {
		return cards
	}
	return keep(cards, func(c domain.Card) bool { return c.HasTag(tag) })
}

// ByColumn keeps cards in the given column. An empty column keeps everything.
func ByColumn(cards []domain.Card, columnID string) []domain.Card {
	if columnID == "" {
		return cards
	}
	return keep(cards, func(c domain.Card) bool { return c.Column == columnID })
}

// ByPriority keeps cards with priority p. An empty priority keeps everything.
func ByPriority(cards []domain.Card, p domain.Priority) []domain.Card {
	if p == "" {
		return cards
	}
	return keep(cards, func(c domain.Card) bool { return c.Priority == p })
}

// OnlyOverdue keeps cards that are overdue at now.
func OnlyOverdue(cards []domain.Card, now time.Time) []domain.Card {
	return keep(cards, func(c domain.Card) bool { return c.IsOverdue(now) })
}

// Filter combines the narrowing filters. Zero values disable a criterion.
type Filter struct {
	ProjectID string
	Assignee  string
	Tag       string
	Column    string
	Priority  domain.Priority
	Overdue   bool
}

// Apply narrows cards by every enabled criterion.
func (f Filter) Apply(cards []domain.Card, now time.Time) []domain.Card {
	out := cards
	if f.ProjectID != "" {
		out = ByProject(out, f.ProjectID)
	}
	out = ByAssignee(out, f.Assignee)
	out = ByTag(out, f.Tag)
	out = ByColumn(out, f.Column)
	out = ByPriority(out, f.Priority)
	if f.Overdue {
		out = OnlyOverdue(out, now)
	}
	return out
}

func keep(cards []domain.Card, pred func(domain.Card) bool) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

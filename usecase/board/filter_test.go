package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/kanban/domain"
)

var filterNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixtureCards() []domain.Card {
	past := filterNow.Add(-48 * time.Hour)
	future := filterNow.Add(48 * time.Hour)
	return []domain.Card{
		{ID: 1, ProjectID: "p1", Column: domain.ColumnTodo, Priority: domain.PriorityHigh, Assignee: domain.Assignee{Name: "Ana"}, Tags: []string{"api"}, EstimatedCompletionDate: &past},
		{ID: 2, ProjectID: "p1", Column: domain.ColumnInProgress, Priority: domain.PriorityLow, Assignee: domain.Assignee{Name: "Ben"}, Tags: []string{"ui", "api"}},
		{ID: 3, ProjectID: "p2", Column: domain.ColumnDone, Priority: domain.PriorityHigh, Assignee: domain.Assignee{Name: "Ana"}, Tags: []string{"api"}, EstimatedCompletionDate: &past},
		{ID: 4, ProjectID: "p1", Column: domain.ColumnTodo, Priority: domain.PriorityHigh, Assignee: domain.Assignee{Name: "Ana"}, Tags: []string{"api"}, EstimatedCompletionDate: &future},
		{ID: 5, ProjectID: "p1", Column: domain.ColumnTodo, Priority: domain.PriorityHigh, Assignee: domain.Assignee{Name: "Ana"}, Tags: []string{"api"}, EstimatedCompletionDate: &past},
	}
}

func ids(cards []domain.Card) []int64 {
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestFiltersNarrow(t *testing.T) {
	cards := fixtureCards()

	assert.Equal(t, []int64{1, 2, 4, 5}, ids(ByProject(cards, "p1")))
	assert.Equal(t, []int64{2}, ids(ByAssignee(cards, "Ben")))
	assert.Equal(t, []int64{2}, ids(ByTag(cards, "ui")))
	assert.Equal(t, []int64{2}, ids(ByColumn(cards, domain.ColumnInProgress)))
	assert.Equal(t, []int64{2}, ids(ByPriority(cards, domain.PriorityLow)))
	assert.Equal(t, []int64{1, 5}, ids(OnlyOverdue(cards, filterNow)))
}

func TestFiltersEmptyValueIsNoop(t *testing.T) {
	cards := fixtureCards()
	assert.Len(t, ByAssignee(cards, ""), len(cards))
	assert.Len(t, ByTag(cards, ""), len(cards))
	assert.Len(t, ByColumn(cards, ""), len(cards))
	assert.Len(t, ByPriority(cards, ""), len(cards))
	assert.Len(t, Filter{}.Apply(cards, filterNow), len(cards))
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	cards := fixtureCards()
	_ = ByTag(cards, "ui")
	_ = OnlyOverdue(cards, filterNow)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(cards))
}

func TestFilterOrderDoesNotMatter(t *testing.T) {
	type step func([]domain.Card) []domain.Card
	steps := []step{
		func(c []domain.Card) []domain.Card { return ByProject(c, "p1") },
		func(c []domain.Card) []domain.Card { return ByAssignee(c, "Ana") },
		func(c []domain.Card) []domain.Card { return ByTag(c, "api") },
		func(c []domain.Card) []domain.Card { return ByColumn(c, domain.ColumnTodo) },
		func(c []domain.Card) []domain.Card { return OnlyOverdue(c, filterNow) },
	}

	want := []int64{1, 5}
	permute(len(steps), func(order []int) {
		out := fixtureCards()
		for _, i := range order {
			out = steps[i](out)
		}
		assert.Equal(t, want, ids(out), "order %v", order)
	})

	f := Filter{ProjectID: "p1", Assignee: "Ana", Tag: "api", Column: domain.ColumnTodo, Overdue: true}
	assert.Equal(t, want, ids(f.Apply(fixtureCards(), filterNow)))
}

// permute calls fn with every ordering of 0..n-1.
func permute(n int, fn func([]int)) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	var walk func(k int)
	walk = func(k int) {
		if k == n {
			fn(order)
			return
		}
		for i := k; i < n; i++ {
			order[k], order[i] = order[i], order[k]
			walk(k + 1)
			order[k], order[i] = order[i], order[k]
		}
	}
	walk(0)
}

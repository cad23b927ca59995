package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/fastygo/kanban/domain"
)

// Count is a labelled total.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Dashboard aggregates the board for the overview page.
type Dashboard struct {
	Total           int     `json:"total"`
	Overdue         int     `json:"overdue"`
	Blocked         int     `json:"blocked"`
	CompletionRate  float64 `json:"completion_rate"`
	SubtaskProgress float64 `json:"subtask_progress"`
	ByColumn        []Count `json:"by_column"`
	ByPriority      []Count `json:"by_priority"`
	ByAssignee      []Count `json:"by_assignee"`
}

// BuildDashboard computes totals over cards. Columns are reported in the given
// order, including empty ones; assignees are sorted by count then name.
func BuildDashboard(cards []domain.Card, columns []domain.Column, now time.Time) Dashboard {
	d := Dashboard{Total: len(cards)}

	perColumn := make(map[string]int, len(columns))
	perPriority := make(map[domain.Priority]int, 3)
	perAssignee := make(map[string]int)

	done := 0
	var progress float64
	for _, c := range cards {
		perColumn[c.Column]++
		perPriority[c.Priority]++
		if c.Assignee.Name != "" {
			perAssignee[c.Assignee.Name]++
		}
		if c.IsOverdue(now) {
			d.Overdue++
		}
		if c.Blocked {
			d.Blocked++
		}
		if c.Column == domain.ColumnDone {
			done++
		}
		progress += c.SubtaskProgressPercent()
	}
	if len(cards) > 0 {
		d.CompletionRate = 100 * float64(done) / float64(len(cards))
		d.SubtaskProgress = progress / float64(len(cards))
	}

	d.ByColumn = make([]Count, 0, len(columns))
	for _, col := range columns {
		d.ByColumn = append(d.ByColumn, Count{Key: col.ID, Count: perColumn[col.ID]})
	}

	d.ByPriority = []Count{
		{Key: string(domain.PriorityHigh), Count: perPriority[domain.PriorityHigh]},
		{Key: string(domain.PriorityMedium), Count: perPriority[domain.PriorityMedium]},
		{Key: string(domain.PriorityLow), Count: perPriority[domain.PriorityLow]},
	}

	d.ByAssignee = make([]Count, 0, len(perAssignee))
	for name, n := range perAssignee {
		d.ByAssignee = append(d.ByAssignee, Count{Key: name, Count: n})
	}
	slices.SortFunc(d.ByAssignee, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return d
}

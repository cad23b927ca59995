package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/kanban/domain"
)

var (
	admin = domain.Actor{UserID: "u-admin", Name: "Admin", Role: domain.RoleAdmin}
	user  = domain.Actor{UserID: "u-1", Name: "Ana", Role: domain.RoleUser}
)

func TestPolicyCanMove(t *testing.T) {
	p := NewPolicy(domain.DefaultPipeline())

	tests := []struct {
		name     string
		from, to string
		actor    domain.Actor
		allowed  bool
		reason   string
	}{
		{"user forward one step", domain.ColumnTodo, domain.ColumnInProgress, user, true, ""},
		{"user back one step", domain.ColumnReview, domain.ColumnInProgress, user, true, ""},
		{"user same column", domain.ColumnReview, domain.ColumnReview, user, true, ""},
		{"user skips a stage", domain.ColumnTodo, domain.ColumnReview, user, false, ReasonNotAdjacent},
		{"user jumps to done", domain.ColumnTodo, domain.ColumnDone, user, false, ReasonNotAdjacent},
		{"user into custom column", domain.ColumnTodo, "blocked", user, false, ReasonColumnOutsidePipeline},
		{"user out of custom column", "blocked", domain.ColumnTodo, user, false, ReasonColumnOutsidePipeline},
		{"admin jumps", domain.ColumnTodo, domain.ColumnDone, admin, true, ""},
		{"admin into custom column", domain.ColumnReview, "blocked", admin, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.CanMove(tt.from, tt.to, tt.actor)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestPolicyUsesConfiguredPipeline(t *testing.T) {
	p := NewPolicy(domain.Pipeline{"backlog", "doing", "done"})
	assert.True(t, p.CanMove("backlog", "doing", user).Allowed)
	assert.False(t, p.CanMove("backlog", "done", user).Allowed)
	assert.Equal(t, ReasonColumnOutsidePipeline, p.CanMove("backlog", domain.ColumnReview, user).Reason)

	assert.Equal(t, domain.DefaultPipeline(), NewPolicy(nil).Pipeline())
}

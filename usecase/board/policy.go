package board

import "github.com/fastygo/kanban/domain"

// Denial reasons reported back to the caller.
const (
	ReasonNotAdjacent           = "not_adjacent"
	ReasonColumnOutsidePipeline = "column_outside_pipeline"
)

// Decision is the outcome of a policy check. A denial is a value, not an error.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Policy decides whether an actor may move a card between two columns.
//
// Admins may move anything anywhere. Other actors may only move a card one
// step along the pipeline in either direction. Columns that are not part of the
// pipeline are excluded from adjacency: a non-admin move touching one is denied.
type Policy struct {
	pipeline domain.Pipeline
}

// NewPolicy builds a policy over the given pipeline.
func NewPolicy(pipeline domain.Pipeline) Policy {
	if len(pipeline) == 0 {
		pipeline = domain.DefaultPipeline()
	}
	return Policy{pipeline: pipeline}
}

// Pipeline returns the ordered column ids the policy reasons about.
func (p Policy) Pipeline() domain.Pipeline {
	return p.pipeline
}

// CanMove reports whether actor may move a card from one column to another.
func (p Policy) CanMove(from, to string, actor domain.Actor) Decision {
	if actor.IsAdmin() {
		return Decision{Allowed: true}
	}
	fromIdx, okFrom := p.pipeline.Index(from)
	toIdx, okTo := p.pipeline.Index(to)
	if !okFrom || !okTo {
		return Decision{Reason: ReasonColumnOutsidePipeline}
	}
	delta := toIdx - fromIdx
	if delta < -1 || delta > 1 {
		return Decision{Reason: ReasonNotAdjacent}
	}
	return Decision{Allowed: true}
}

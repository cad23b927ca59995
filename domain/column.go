package domain

import (
	"fmt"
	"strings"
)

// Built-in column ids.
const (
	ColumnTodo       = "todo"
	ColumnInProgress = "in-progress"
	ColumnReview     = "review"
	ColumnDone       = "done"
)

// Column is an ordered stage of the board.
type Column struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color,omitempty"`
	Position int    `json:"position"`
}

// Pipeline is the ordered sequence of column ids the movement policy reasons about.
// Columns outside the pipeline are display-only.
type Pipeline []string

// DefaultPipeline is todo → in-progress → review → done.
func DefaultPipeline() Pipeline {
	return Pipeline{ColumnTodo, ColumnInProgress, ColumnReview, ColumnDone}
}

// ParsePipeline reads a comma separated list, falling back to the default when empty.
func ParsePipeline(raw string) Pipeline {
	var out Pipeline
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return DefaultPipeline()
	}
	return out
}

// Index returns the position of id and whether it is part of the pipeline.
func (p Pipeline) Index(id string) (int, bool) {
	for i, v := range p {
		if v == id {
			return i, true
		}
	}
	return -1, false
}

// Contains reports pipeline membership.
func (p Pipeline) Contains(id string) bool {
	_, ok := p.Index(id)
	return ok
}

// Validate requires distinct ids and the in-progress and done stages, which
// drive start and completion stamping, overdue and timeline progress.
func (p Pipeline) Validate() error {
	if len(p) < 2 {
		return Invalid(fmt.Sprintf("pipeline needs at least two columns, got %d", len(p)))
	}
	seen := make(map[string]struct{}, len(p))
	for _, id := range p {
		if _, dup := seen[id]; dup {
			return Invalid(fmt.Sprintf("pipeline lists %q twice", id))
		}
		seen[id] = struct{}{}
	}
	for _, required := range []string{ColumnInProgress, ColumnDone} {
		if !p.Contains(required) {
			return Invalid(fmt.Sprintf("pipeline must include %q", required))
		}
	}
	return nil
}

var defaultTitles = map[string]string{
	ColumnTodo:       "To Do",
	ColumnInProgress: "In Progress",
	ColumnReview:     "Review",
	ColumnDone:       "Done",
}

// Columns builds the initial board columns for the pipeline.
func (p Pipeline) Columns() []Column {
	cols := make([]Column, 0, len(p))
	for i, id := range p {
		title, ok := defaultTitles[id]
		if !ok {
			title = id
		}
		cols = append(cols, Column{ID: id, Title: title, Position: i})
	}
	return cols
}

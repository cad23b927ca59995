package board

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"

	"github.com/fastygo/kanban/domain"
)

// MoveOutcome classifies the result of a move request.
type MoveOutcome string

const (
	MoveApplied  MoveOutcome = "applied"
	MoveDenied   MoveOutcome = "denied"
	MoveNotFound MoveOutcome = "not_found"
)

// MoveResult describes what a move did. Previous holds the card before the move
// when Outcome is MoveApplied.
type MoveResult struct {
	Outcome  MoveOutcome  `json:"outcome"`
	Reason   string       `json:"reason,omitempty"`
	Card     *domain.Card `json:"card,omitempty"`
	Previous *domain.Card `json:"-"`
}

// IDSource hands out fresh local card ids.
type IDSource interface {
	Next() int64
}

type sequence struct{ n int64 }

func (s *sequence) Next() int64 {
	s.n++
	return s.n
}

// Board owns the live cards and columns of the board session.
type Board struct {
	mu      sync.RWMutex
	policy  Policy
	ids     IDSource
	cards   []domain.Card
	columns []domain.Column
}

// Snapshot is a deep copy of the board state used to revert a failed mutation.
type Snapshot struct {
	cards   []domain.Card
	columns []domain.Column
}

// New creates a board with the pipeline columns and no cards. A nil ids uses an
// internal sequence.
func New(policy Policy, ids IDSource) *Board {
	if ids == nil {
		ids = &sequence{}
	}
	return &Board{
		policy:  policy,
		ids:     ids,
		columns: policy.Pipeline().Columns(),
	}
}

// Load replaces the board state. Missing pipeline columns are added first so
// the policy always has its stages on the board.
func (b *Board) Load(cards []domain.Card, columns []domain.Column) {
	merged := mergeColumns(b.policy.Pipeline().Columns(), columns)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cards = cloneCards(cards)
	b.columns = merged
}

// Cards returns a copy of all cards in board order.
func (b *Board) Cards() []domain.Card {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneCards(b.cards)
}

// Columns returns a copy of the columns in display order.
func (b *Board) Columns() []domain.Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.columns)
}

// Card returns a copy of the card with id.
func (b *Board) Card(id int64) (domain.Card, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexOf(id)
	if i < 0 {
		return domain.Card{}, false
	}
	return b.cards[i].Clone(), true
}

// HasColumn reports whether id is a column on the board.
func (b *Board) HasColumn(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hasColumn(id)
}

// MoveCard moves a card to target if the policy allows it. An unknown card is a
// silent no-op; an unknown target column is a validation error.
func (b *Board) MoveCard(id int64, target string, actor domain.Actor, now time.Time) (MoveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return MoveResult{Outcome: MoveNotFound}, nil
	}
	if !b.hasColumn(target) {
		return MoveResult{}, domain.Invalid(fmt.Sprintf("unknown column %q", target))
	}

	card := &b.cards[i]
	if decision := b.policy.CanMove(card.Column, target, actor); !decision.Allowed {
		current := card.Clone()
		return MoveResult{Outcome: MoveDenied, Reason: decision.Reason, Card: &current}, nil
	}

	previous := card.Clone()
	card.Column = target
	if target == domain.ColumnInProgress && card.StartTime == nil {
		t := now
		card.StartTime = &t
	}
	if target == domain.ColumnDone && card.CompletedTime == nil {
		t := now
		card.CompletedTime = &t
	}
	moved := card.Clone()
	return MoveResult{Outcome: MoveApplied, Card: &moved, Previous: &previous}, nil
}

// AddCard appends a new card to column with zeroed counters.
func (b *Board) AddCard(column string, draft domain.CardDraft) (domain.Card, error) {
	if err := draft.Validate(); err != nil {
		return domain.Card{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasColumn(column) {
		return domain.Card{}, domain.Invalid(fmt.Sprintf("unknown column %q", column))
	}

	priority := domain.PriorityMedium
	if p, ok := domain.ParsePriority(string(draft.Priority)); ok {
		priority = p
	}

	card := domain.Card{
		ID:           b.ids.Next(),
		Title:        strings.TrimSpace(draft.Title),
		Description:  strings.TrimSpace(draft.Description),
		Column:       column,
		Priority:     priority,
		Assignee:     draft.Assignee,
		Tags:         slices.Clone(draft.Tags),
		Dependencies: []int64{},
		ProjectID:    draft.ProjectID,
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}
	if draft.EstimatedCompletionDate != nil {
		t := *draft.EstimatedCompletionDate
		card.EstimatedCompletionDate = &t
	}

	b.cards = append(b.cards, card)
	return card.Clone(), nil
}

// EditCard applies a partial edit. Unknown cards report domain.ErrCardNotFound.
func (b *Board) EditCard(id int64, edit domain.CardEdit) (domain.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return domain.Card{}, domain.ErrCardNotFound
	}
	if edit.SetDependencies {
		for _, dep := range edit.Dependencies {
			if dep != id && b.indexOf(dep) < 0 {
				return domain.Card{}, domain.Invalid(fmt.Sprintf("unknown dependency %d", dep))
			}
		}
	}

	updated, err := edit.Apply(b.cards[i])
	if err != nil {
		return domain.Card{}, err
	}
	b.cards[i] = updated
	return updated.Clone(), nil
}

// Put replaces the stored card with the same id and reports whether one existed.
func (b *Board) Put(card domain.Card) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(card.ID)
	if i < 0 {
		return false
	}
	b.cards[i] = card.Clone()
	return true
}

// RemoveCard deletes a card and reports whether it existed. Dependencies on the
// removed card are left in place on other cards.
func (b *Board) RemoveCard(id int64) (domain.Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return domain.Card{}, false
	}
	removed := b.cards[i]
	b.cards = slices.Delete(b.cards, i, i+1)
	return removed, true
}

// AddColumn appends a display column. Its id is derived from the title and made
// unique against the existing columns.
func (b *Board) AddColumn(title string) (domain.Column, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Column{}, domain.ErrEmptyTitle
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	base := slug.Make(title)
	if base == "" {
		base = "column"
	}
	id := base
	for n := 2; b.hasColumn(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}

	position := 0
	for _, c := range b.columns {
		if c.Position >= position {
			position = c.Position + 1
		}
	}

	col := domain.Column{ID: id, Title: title, Position: position}
	b.columns = append(b.columns, col)
	return col, nil
}

// Tick recomputes TimeSpent for in-progress cards as whole hours since their
// start time and returns the ids whose value changed. Calling it again with the
// same now changes nothing.
func (b *Board) Tick(now time.Time) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var changed []int64
	for i := range b.cards {
		c := &b.cards[i]
		if c.Column != domain.ColumnInProgress || c.StartTime == nil {
			continue
		}
		spent := HoursSince(*c.StartTime, now)
		if spent != c.TimeSpent {
			c.TimeSpent = spent
			changed = append(changed, c.ID)
		}
	}
	return changed
}

// HoursSince returns floor((now - start) / 1h), never negative.
func HoursSince(start, now time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Hour)
}

// Snapshot captures the board state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{cards: cloneCards(b.cards), columns: slices.Clone(b.columns)}
}

// Restore puts back a state captured by Snapshot.
func (b *Board) Restore(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cards = cloneCards(s.cards)
	b.columns = slices.Clone(s.columns)
}

func (b *Board) indexOf(id int64) int {
	for i := range b.cards {
		if b.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) hasColumn(id string) bool {
	for _, c := range b.columns {
		if c.ID == id {
			return true
		}
	}
	return false
}

func cloneCards(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}
	return out
}

// mergeColumns keeps base columns first, then extra columns not already present,
// ordered by position.
func mergeColumns(base, extra []domain.Column) []domain.Column {
	out := slices.Clone(base)
	seen := make(map[string]int, len(base))
	for i, c := range out {
		seen[c.ID] = i
	}
	for _, c := range extra {
		if i, ok := seen[c.ID]; ok {
			if c.Title != "" {
				out[i].Title = c.Title
			}
			out[i].Color = c.Color
			continue
		}
		seen[c.ID] = len(out)
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b domain.Column) int { return a.Position - b.Position })
	return out
}

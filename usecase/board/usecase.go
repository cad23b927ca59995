package board

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/usecase"
)

const loadPageSize = 500

// CardView is a card annotated with its derived state for rendering.
type CardView struct {
	domain.Card
	Overdue         bool    `json:"overdue"`
	SubtaskProgress float64 `json:"subtask_progress"`
}

// View is the visible part of the board.
type View struct {
	Columns []domain.Column `json:"columns"`
	Cards   []CardView      `json:"cards"`
}

// UseCase keeps the in-memory board and the persistence layer in step. Every
// mutation is applied locally, written through, and reverted to the previous
// snapshot when the write fails.
type UseCase struct {
	board      *Board
	ids        *IDMap
	cards      repository.CardRepository
	columns    repository.ColumnRepository
	activities repository.ActivityRepository
	recorder   usecase.ActivityRecorder
	logger     *zap.Logger
	now        func() time.Time

	mu sync.RWMutex
}

func NewUseCase(
	board *Board,
	ids *IDMap,
	cards repository.CardRepository,
	columns repository.ColumnRepository,
	activities repository.ActivityRepository,
	recorder usecase.ActivityRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = NewIDMap()
	}
	return &UseCase{
		board:      board,
		ids:        ids,
		cards:      cards,
		columns:    columns,
		activities: activities,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock overrides the time source.
func (uc *UseCase) SetClock(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

// Board exposes the controller. It does not wait for in-flight mutations, so
// readers serving clients use View, Cards or Columns instead.
func (uc *UseCase) Board() *Board {
	return uc.board
}

// Cards returns the committed cards. A mutation waiting on the store is not
// visible until it has been written or reverted.
func (uc *UseCase) Cards() []domain.Card {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.board.Cards()
}

// Columns returns the committed columns.
func (uc *UseCase) Columns() []domain.Column {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.board.Columns()
}

// Load fetches all cards and columns and replaces the board state.
func (uc *UseCase) Load(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var records []repository.CardRecord
	for offset := 0; ; offset += loadPageSize {
		page, err := uc.cards.List(ctx, repository.CardFilter{Limit: loadPageSize, Offset: offset})
		if err != nil {
			uc.logger.Error("fetch cards failed", zap.Error(err))
			return domain.Unavailable("fetch cards", err)
		}
		records = append(records, page...)
		if len(page) < loadPageSize {
			break
		}
	}

	var columns []domain.Column
	if uc.columns != nil {
		cols, err := uc.columns.List(ctx)
		if err != nil {
			uc.logger.Error("fetch columns failed", zap.Error(err))
			return domain.Unavailable("fetch columns", err)
		}
		columns = cols
	}

	cards := make([]domain.Card, 0, len(records))
	for _, rec := range records {
		card := rec.Card.Clone()
		card.ID = uc.ids.Bind(rec.ID)
		cards = append(cards, card)
	}
	for i, rec := range records {
		deps := make([]int64, 0, len(rec.DependencyIDs))
		for _, ref := range rec.DependencyIDs {
			deps = append(deps, uc.ids.Bind(ref))
		}
		cards[i].Dependencies = deps
	}

	uc.board.Load(cards, columns)
	uc.logger.Info("board loaded", zap.Int("cards", len(cards)), zap.Int("columns", len(uc.board.Columns())))
	return nil
}

// View returns the columns and the cards passing filter.
func (uc *UseCase) View(filter Filter) View {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	now := uc.now()
	visible := filter.Apply(uc.board.Cards(), now)
	views := make([]CardView, 0, len(visible))
	for _, c := range visible {
		views = append(views, CardView{
			Card:            c,
			Overdue:         c.IsOverdue(now),
			SubtaskProgress: c.SubtaskProgressPercent(),
		})
	}
	return View{Columns: uc.board.Columns(), Cards: views}
}

// MoveCard applies a policy-gated move and writes it through.
func (uc *UseCase) MoveCard(ctx context.Context, actor domain.Actor, id int64, target string) (MoveResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := uc.board.Snapshot()
	result, err := uc.board.MoveCard(id, target, actor, uc.now())
	if err != nil {
		return MoveResult{}, err
	}
	switch result.Outcome {
	case MoveNotFound:
		return result, nil
	case MoveDenied:
		uc.logger.Info("move denied",
			zap.Int64("card_id", id),
			zap.String("target", target),
			zap.String("actor", actor.UserID),
			zap.String("reason", result.Reason))
		return result, nil
	}

	if err := uc.persist(ctx, id, uc.diff(*result.Previous, *result.Card)); err != nil {
		uc.board.Restore(snap)
		return MoveResult{}, err
	}

	uc.record(ctx, actor, id, domain.ActivityCardMoved, map[string]string{
		"from": result.Previous.Column,
		"to":   result.Card.Column,
	})
	return result, nil
}

// AddCard creates a card in column and persists it.
func (uc *UseCase) AddCard(ctx context.Context, actor domain.Actor, column string, draft domain.CardDraft) (domain.Card, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := uc.board.Snapshot()
	card, err := uc.board.AddCard(column, draft)
	if err != nil {
		return domain.Card{}, err
	}

	record := uc.toRecord(card)
	created, err := uc.cards.Create(ctx, &record)
	if err != nil {
		uc.board.Restore(snap)
		uc.logger.Error("create card failed", zap.String("title", card.Title), zap.Error(err))
		return domain.Card{}, domain.Unavailable("create card", err)
	}
	uc.ids.Assign(card.ID, created.ID)

	uc.record(ctx, actor, card.ID, domain.ActivityCardCreated, map[string]string{"column": column})
	return card, nil
}

// EditCard applies a partial edit and persists the changed fields.
func (uc *UseCase) EditCard(ctx context.Context, actor domain.Actor, id int64, edit domain.CardEdit) (domain.Card, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := uc.board.Snapshot()
	previous, ok := uc.board.Card(id)
	if !ok {
		return domain.Card{}, domain.ErrCardNotFound
	}
	updated, err := uc.board.EditCard(id, edit)
	if err != nil {
		return domain.Card{}, err
	}

	if err := uc.persist(ctx, id, uc.diff(previous, updated)); err != nil {
		uc.board.Restore(snap)
		return domain.Card{}, err
	}

	uc.record(ctx, actor, id, domain.ActivityCardEdited, nil)
	return updated, nil
}

// DeleteCard removes a card. Unknown ids are a silent no-op.
func (uc *UseCase) DeleteCard(ctx context.Context, actor domain.Actor, id int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := uc.board.Snapshot()
	removed, ok := uc.board.RemoveCard(id)
	if !ok {
		return nil
	}

	remote, bound := uc.ids.Remote(id)
	if bound {
		if err := uc.cards.Delete(ctx, remote); err != nil && !errors.Is(err, domain.ErrCardNotFound) {
			uc.board.Restore(snap)
			uc.logger.Error("delete card failed", zap.Int64("card_id", id), zap.Error(err))
			return domain.Unavailable("delete card", err)
		}
	}

	uc.record(ctx, actor, id, domain.ActivityCardDeleted, map[string]string{"title": removed.Title})
	uc.ids.Forget(id)
	return nil
}

// AddColumn appends a display column and persists it.
func (uc *UseCase) AddColumn(ctx context.Context, actor domain.Actor, title string) (domain.Column, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := uc.board.Snapshot()
	col, err := uc.board.AddColumn(title)
	if err != nil {
		return domain.Column{}, err
	}
	if uc.columns != nil {
		if err := uc.columns.Create(ctx, &col); err != nil {
			uc.board.Restore(snap)
			uc.logger.Error("create column failed", zap.String("title", title), zap.Error(err))
			return domain.Column{}, domain.Unavailable("create column", err)
		}
	}
	uc.logger.Info("column added", zap.String("column", col.ID), zap.String("actor", actor.UserID))
	return col, nil
}

// Tick recomputes time spent on in-progress cards and writes changed values
// through. A card whose write fails keeps its previous value.
func (uc *UseCase) Tick(ctx context.Context) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	before := uc.board.Snapshot()
	changed := uc.board.Tick(uc.now())

	var errs []error
	updated := 0
	for _, id := range changed {
		card, ok := uc.board.Card(id)
		if !ok {
			continue
		}
		spent := card.TimeSpent
		if err := uc.persist(ctx, id, repository.CardPatch{TimeSpent: &spent}); err != nil {
			if prev, ok := before.card(id); ok {
				card.TimeSpent = prev.TimeSpent
				uc.board.Put(card)
			}
			errs = append(errs, err)
			continue
		}
		updated++
	}
	return updated, errors.Join(errs...)
}

// CardActivity returns the recorded history of a card, newest first.
func (uc *UseCase) CardActivity(ctx context.Context, id int64, limit int) ([]domain.Activity, error) {
	remote, ok := uc.ids.Remote(id)
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	if uc.activities == nil {
		return []domain.Activity{}, nil
	}
	items, err := uc.activities.List(ctx, repository.ActivityFilter{CardRef: remote, Limit: limit})
	if err != nil {
		return nil, domain.Unavailable("fetch activity", err)
	}
	return items, nil
}

func (uc *UseCase) persist(ctx context.Context, id int64, patch repository.CardPatch) error {
	if patch.Empty() {
		return nil
	}
	remote, ok := uc.ids.Remote(id)
	if !ok {
		return domain.WrapError(domain.ErrCodeInternal, "card has no persistent id", domain.ErrCardNotFound)
	}
	if _, err := uc.cards.Update(ctx, remote, patch); err != nil {
		uc.logger.Error("update card failed", zap.Int64("card_id", id), zap.String("ref", remote), zap.Error(err))
		return domain.Unavailable("update card", err)
	}
	return nil
}

func (uc *UseCase) record(ctx context.Context, actor domain.Actor, id int64, kind string, details map[string]string) {
	if uc.recorder == nil {
		return
	}
	remote, ok := uc.ids.Remote(id)
	if !ok {
		return
	}
	activity := &domain.Activity{
		CardRef:   remote,
		Kind:      kind,
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		CreatedAt: uc.now(),
	}
	if len(details) > 0 {
		if payload, err := json.Marshal(details); err == nil {
			activity.Payload = payload
		}
	}
	if err := uc.recorder.RecordActivity(ctx, activity); err != nil {
		uc.logger.Warn("activity not recorded", zap.String("kind", kind), zap.String("ref", remote), zap.Error(err))
	}
}

func (uc *UseCase) toRecord(card domain.Card) repository.CardRecord {
	return repository.CardRecord{
		Card:          card.Clone(),
		DependencyIDs: uc.remoteIDs(card.Dependencies),
	}
}

func (uc *UseCase) remoteIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ref, ok := uc.ids.Remote(id); ok {
			out = append(out, ref)
		}
	}
	return out
}

// diff builds the partial update turning prev into next.
func (uc *UseCase) diff(prev, next domain.Card) repository.CardPatch {
	var p repository.CardPatch
	if prev.Title != next.Title {
		p.Title = &next.Title
	}
	if prev.Description != next.Description {
		p.Description = &next.Description
	}
	if prev.Column != next.Column {
		p.Column = &next.Column
	}
	if prev.Priority != next.Priority {
		p.Priority = &next.Priority
	}
	if prev.Assignee != next.Assignee {
		p.Assignee = &next.Assignee
	}
	if !slices.Equal(prev.Tags, next.Tags) {
		p.Tags, p.SetTags = slices.Clone(next.Tags), true
	}
	if prev.Subtasks != next.Subtasks {
		p.Subtasks = &next.Subtasks
	}
	if prev.Attachments != next.Attachments {
		p.Attachments = &next.Attachments
	}
	if !slices.Equal(prev.Dependencies, next.Dependencies) {
		p.DependencyIDs, p.SetDependencies = uc.remoteIDs(next.Dependencies), true
	}
	if prev.Blocked != next.Blocked {
		p.Blocked = &next.Blocked
	}
	if prev.TimeSpent != next.TimeSpent {
		p.TimeSpent = &next.TimeSpent
	}
	if !sameTime(prev.StartTime, next.StartTime) && next.StartTime != nil {
		p.StartTime = next.StartTime
	}
	if !sameTime(prev.CompletedTime, next.CompletedTime) && next.CompletedTime != nil {
		p.CompletedTime = next.CompletedTime
	}
	if !sameTime(prev.EstimatedCompletionDate, next.EstimatedCompletionDate) {
		if next.EstimatedCompletionDate == nil {
			p.ClearEstimate = true
		} else {
			p.EstimatedCompletionDate = next.EstimatedCompletionDate
		}
	}
	return p
}

func (s Snapshot) card(id int64) (domain.Card, bool) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Card{}, false
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

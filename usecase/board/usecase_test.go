package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

var errStoreDown = errors.New("connection refused")

type fakeCardRepo struct {
	mu      sync.Mutex
	records map[string]repository.CardRecord
	order   []string
	seq     int
	fail    bool
	patches []repository.CardPatch
	gate    *updateGate
}

// updateGate holds Update until release is closed.
type updateGate struct {
	entered chan struct{}
	release chan struct{}
}

func newFakeCardRepo(records ...repository.CardRecord) *fakeCardRepo {
	r := &fakeCardRepo{records: make(map[string]repository.CardRecord)}
	for _, rec := range records {
		r.records[rec.ID] = rec
		r.order = append(r.order, rec.ID)
	}
	return r
}

func (r *fakeCardRepo) GetByID(_ context.Context, id string) (*repository.CardRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return &rec, nil
}

func (r *fakeCardRepo) List(_ context.Context, filter repository.CardFilter) ([]repository.CardRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStoreDown
	}
	var out []repository.CardRecord
	for i, id := range r.order {
		if i < filter.Offset {
			continue
		}
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
		out = append(out, r.records[id])
	}
	return out, nil
}

func (r *fakeCardRepo) Create(_ context.Context, rec *repository.CardRecord) (*repository.CardRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStoreDown
	}
	r.seq++
	rec.ID = fmt.Sprintf("uuid-%d", r.seq)
	r.records[rec.ID] = *rec
	r.order = append(r.order, rec.ID)
	return rec, nil
}

func (r *fakeCardRepo) Update(_ context.Context, id string, patch repository.CardPatch) (*repository.CardRecord, error) {
	if r.gate != nil {
		r.gate.entered <- struct{}{}
		<-r.gate.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStoreDown
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	r.patches = append(r.patches, patch)
	if patch.Column != nil {
		rec.Card.Column = *patch.Column
	}
	if patch.Title != nil {
		rec.Card.Title = *patch.Title
	}
	if patch.TimeSpent != nil {
		rec.Card.TimeSpent = *patch.TimeSpent
	}
	if patch.SetDependencies {
		rec.DependencyIDs = patch.DependencyIDs
	}
	r.records[id] = rec
	return &rec, nil
}

func (r *fakeCardRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStoreDown
	}
	if _, ok := r.records[id]; !ok {
		return domain.ErrCardNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeCardRepo) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

type fakeRecorder struct {
	mu    sync.Mutex
	items []domain.Activity
}

func (f *fakeRecorder) RecordActivity(_ context.Context, a *domain.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeRecorder) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, a.Kind)
	}
	return out
}

type fakeColumnRepo struct {
	columns []domain.Column
	fail    bool
}

func (f *fakeColumnRepo) List(context.Context) ([]domain.Column, error) {
	return f.columns, nil
}

func (f *fakeColumnRepo) Create(_ context.Context, c *domain.Column) error {
	if f.fail {
		return errStoreDown
	}
	f.columns = append(f.columns, *c)
	return nil
}

type fixture struct {
	uc       *UseCase
	cards    *fakeCardRepo
	columns  *fakeColumnRepo
	recorder *fakeRecorder
	now      time.Time
}

func newFixture(t *testing.T, records ...repository.CardRecord) *fixture {
	t.Helper()
	f := &fixture{
		cards:    newFakeCardRepo(records...),
		columns:  &fakeColumnRepo{},
		recorder: &fakeRecorder{},
		now:      time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC),
	}
	ids := NewIDMap()
	b := New(NewPolicy(domain.DefaultPipeline()), ids)
	f.uc = NewUseCase(b, ids, f.cards, f.columns, nil, f.recorder, nil)
	f.uc.SetClock(func() time.Time { return f.now })
	require.NoError(t, f.uc.Load(context.Background()))
	return f
}

func record(id, title, column string, deps ...string) repository.CardRecord {
	return repository.CardRecord{
		ID:            id,
		Card:          domain.Card{Title: title, Column: column, Priority: domain.PriorityMedium},
		DependencyIDs: deps,
	}
}

func (f *fixture) localID(t *testing.T, remote string) int64 {
	t.Helper()
	id, ok := f.uc.ids.Local(remote)
	require.True(t, ok, remote)
	return id
}

func TestUseCaseLoadTranslatesIDs(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo, "r-2"), record("r-2", "B", domain.ColumnReview))

	a := f.localID(t, "r-1")
	b := f.localID(t, "r-2")
	card, ok := f.uc.Board().Card(a)
	require.True(t, ok)
	assert.Equal(t, []int64{b}, card.Dependencies)
	assert.Len(t, f.uc.View(Filter{}).Cards, 2)
}

func TestUseCaseLoadFailure(t *testing.T) {
	repo := newFakeCardRepo()
	repo.fail = true
	ids := NewIDMap()
	uc := NewUseCase(New(NewPolicy(nil), ids), ids, repo, nil, nil, nil, nil)

	err := uc.Load(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}

func TestUseCaseMovePersistsAndRecords(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))
	id := f.localID(t, "r-1")

	res, err := f.uc.MoveCard(context.Background(), user, id, domain.ColumnInProgress)
	require.NoError(t, err)
	assert.Equal(t, MoveApplied, res.Outcome)

	stored, _ := f.cards.GetByID(context.Background(), "r-1")
	assert.Equal(t, domain.ColumnInProgress, stored.Card.Column)
	require.Len(t, f.cards.patches, 1)
	require.NotNil(t, f.cards.patches[0].StartTime)
	assert.True(t, f.cards.patches[0].StartTime.Equal(f.now))
	assert.Nil(t, f.cards.patches[0].Title)
	assert.Equal(t, []string{domain.ActivityCardMoved}, f.recorder.kinds())
}

func TestUseCaseMoveRevertsOnStoreFailure(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))
	id := f.localID(t, "r-1")
	f.cards.setFail(true)

	_, err := f.uc.MoveCard(context.Background(), user, id, domain.ColumnInProgress)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))

	card, _ := f.uc.Board().Card(id)
	assert.Equal(t, domain.ColumnTodo, card.Column)
	assert.Nil(t, card.StartTime)
	assert.Empty(t, f.recorder.kinds())
}

func TestUseCaseDeniedAndMissingMovesDoNotPersist(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))
	id := f.localID(t, "r-1")

	res, err := f.uc.MoveCard(context.Background(), user, id, domain.ColumnDone)
	require.NoError(t, err)
	assert.Equal(t, MoveDenied, res.Outcome)

	res, err = f.uc.MoveCard(context.Background(), user, 999, domain.ColumnDone)
	require.NoError(t, err)
	assert.Equal(t, MoveNotFound, res.Outcome)
	assert.Empty(t, f.cards.patches)
}

func TestUseCaseAddCard(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))

	card, err := f.uc.AddCard(context.Background(), user, domain.ColumnTodo, domain.CardDraft{Title: "New"})
	require.NoError(t, err)

	remote, ok := f.uc.ids.Remote(card.ID)
	require.True(t, ok)
	assert.Equal(t, "uuid-1", remote)
	assert.NotEqual(t, f.localID(t, "r-1"), card.ID)
	assert.Equal(t, []string{domain.ActivityCardCreated}, f.recorder.kinds())
}

func TestUseCaseAddCardRevertsOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.cards.setFail(true)

	_, err := f.uc.AddCard(context.Background(), user, domain.ColumnTodo, domain.CardDraft{Title: "New"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	assert.Empty(t, f.uc.Board().Cards())

	_, err = f.uc.AddCard(context.Background(), user, domain.ColumnTodo, domain.CardDraft{Title: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestUseCaseEditCardTranslatesDependencies(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo), record("r-2", "B", domain.ColumnTodo))
	a := f.localID(t, "r-1")
	b := f.localID(t, "r-2")

	title := "Renamed"
	_, err := f.uc.EditCard(context.Background(), user, a, domain.CardEdit{
		Title:           &title,
		Dependencies:    []int64{b},
		SetDependencies: true,
	})
	require.NoError(t, err)

	stored, _ := f.cards.GetByID(context.Background(), "r-1")
	assert.Equal(t, "Renamed", stored.Card.Title)
	assert.Equal(t, []string{"r-2"}, stored.DependencyIDs)
}

func TestUseCaseEditCardRevertsOnStoreFailure(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))
	id := f.localID(t, "r-1")
	f.cards.setFail(true)

	title := "Renamed"
	_, err := f.uc.EditCard(context.Background(), user, id, domain.CardEdit{Title: &title})
	require.Error(t, err)

	card, _ := f.uc.Board().Card(id)
	assert.Equal(t, "A", card.Title)
}

func TestUseCaseDeleteCard(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo), record("r-2", "B", domain.ColumnTodo))
	a := f.localID(t, "r-1")
	b := f.localID(t, "r-2")

	require.NoError(t, f.uc.DeleteCard(context.Background(), user, a))
	_, ok := f.uc.Board().Card(a)
	assert.False(t, ok)

	require.NoError(t, f.uc.DeleteCard(context.Background(), user, 999))

	f.cards.setFail(true)
	err := f.uc.DeleteCard(context.Background(), user, b)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	_, ok = f.uc.Board().Card(b)
	assert.True(t, ok)
}

func TestUseCaseAddColumnRevertsOnStoreFailure(t *testing.T) {
	f := newFixture(t)

	col, err := f.uc.AddColumn(context.Background(), admin, "Blocked")
	require.NoError(t, err)
	assert.Equal(t, "blocked", col.ID)

	f.columns.fail = true
	_, err = f.uc.AddColumn(context.Background(), admin, "Parked")
	require.Error(t, err)
	assert.False(t, f.uc.Board().HasColumn("parked"))
}

func TestUseCaseTick(t *testing.T) {
	start := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)
	rec := record("r-1", "A", domain.ColumnInProgress)
	rec.Card.StartTime = &start
	f := newFixture(t, rec)
	id := f.localID(t, "r-1")

	n, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, _ := f.cards.GetByID(context.Background(), "r-1")
	assert.Equal(t, 3, stored.Card.TimeSpent)

	n, err = f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.now = f.now.Add(2 * time.Hour)
	f.cards.setFail(true)
	_, err = f.uc.Tick(context.Background())
	require.Error(t, err)
	card, _ := f.uc.Board().Card(id)
	assert.Equal(t, 3, card.TimeSpent)
}

func TestUseCaseViewAnnotatesCards(t *testing.T) {
	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	rec := record("r-1", "A", domain.ColumnTodo)
	rec.Card.EstimatedCompletionDate = &past
	rec.Card.Subtasks = domain.Subtasks{Completed: 1, Total: 4}
	f := newFixture(t, rec, record("r-2", "B", domain.ColumnDone))

	view := f.uc.View(Filter{Overdue: true})
	require.Len(t, view.Cards, 1)
	assert.True(t, view.Cards[0].Overdue)
	assert.InDelta(t, 25.0, view.Cards[0].SubtaskProgress, 1e-9)
	assert.Len(t, view.Columns, 4)
}

func TestCardActivityRequiresKnownCard(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))

	_, err := f.uc.CardActivity(context.Background(), 999, 10)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	items, err := f.uc.CardActivity(context.Background(), f.localID(t, "r-1"), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUseCaseReadersWaitForPendingMove(t *testing.T) {
	f := newFixture(t, record("r-1", "A", domain.ColumnTodo))
	id := f.localID(t, "r-1")

	gate := &updateGate{entered: make(chan struct{}), release: make(chan struct{})}
	f.cards.gate = gate
	f.cards.setFail(true)

	moved := make(chan error, 1)
	go func() {
		_, err := f.uc.MoveCard(context.Background(), admin, id, domain.ColumnDone)
		moved <- err
	}()
	<-gate.entered

	viewed := make(chan View, 1)
	go func() { viewed <- f.uc.View(Filter{}) }()
	select {
	case <-viewed:
		t.Fatal("view returned while the move was waiting on the store")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	require.Error(t, <-moved)

	view := <-viewed
	require.Len(t, view.Cards, 1)
	assert.Equal(t, domain.ColumnTodo, view.Cards[0].Column)
	assert.Nil(t, view.Cards[0].CompletedTime)

	cards := f.uc.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, domain.ColumnTodo, cards[0].Column)
	assert.Len(t, f.uc.Columns(), 4)
}

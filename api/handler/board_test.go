package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/repository"
	boardUC "github.com/fastygo/kanban/usecase/board"
)

type memCards struct {
	mu      sync.Mutex
	records map[string]repository.CardRecord
	seq     int
	fail    bool
}

func (m *memCards) GetByID(_ context.Context, id string) (*repository.CardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return &rec, nil
}

func (m *memCards) List(context.Context, repository.CardFilter) ([]repository.CardRecord, error) {
	return nil, nil
}

func (m *memCards) Create(_ context.Context, rec *repository.CardRecord) (*repository.CardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("connection refused")
	}
	m.seq++
	rec.ID = fmt.Sprintf("card-%d", m.seq)
	m.records[rec.ID] = *rec
	return rec, nil
}

func (m *memCards) Update(_ context.Context, id string, _ repository.CardPatch) (*repository.CardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("connection refused")
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return &rec, nil
}

func (m *memCards) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

type response struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

var (
	adminActor  = domain.Actor{UserID: "a1", Name: "Admin", Role: domain.RoleAdmin}
	memberActor = domain.Actor{UserID: "u1", Name: "Ana", Role: domain.RoleUser}
)

func newBoardHandler() (*BoardHandler, *memCards) {
	cards := &memCards{records: map[string]repository.CardRecord{}}
	ids := boardUC.NewIDMap()
	board := boardUC.New(boardUC.NewPolicy(domain.DefaultPipeline()), ids)
	uc := boardUC.NewUseCase(board, ids, cards, nil, nil, nil, nil)
	return NewBoardHandler(uc, "", httpcontext.NewAdapter(0), nil), cards
}

func call(t *testing.T, handler fasthttp.RequestHandler, actor *domain.Actor, id string, body string) (int, response) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.SetBodyString(body)
	if id != "" {
		ctx.SetUserValue("id", id)
	}
	if actor != nil {
		httpcontext.SetActor(&ctx, *actor)
	}
	handler(&ctx)

	var resp response
	if len(ctx.Response.Body()) > 0 {
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	}
	return ctx.Response.StatusCode(), resp
}

func createCard(t *testing.T, h *BoardHandler) int64 {
	t.Helper()
	status, resp := call(t, h.CreateCard, &memberActor, "", `{"column":"todo","title":"Write docs","priority":"high"}`)
	require.Equal(t, http.StatusCreated, status)

	var card domain.Card
	require.NoError(t, json.Unmarshal(resp.Data, &card))
	assert.Equal(t, domain.PriorityHigh, card.Priority)
	return card.ID
}

func TestMoveCardOutcomes(t *testing.T) {
	h, _ := newBoardHandler()
	id := strconv.FormatInt(createCard(t, h), 10)

	status, resp := call(t, h.MoveCard, &memberActor, id, `{"column":"done"}`)
	require.Equal(t, http.StatusOK, status)
	var result boardUC.MoveResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, boardUC.MoveDenied, result.Outcome)
	assert.Equal(t, boardUC.ReasonNotAdjacent, result.Reason)

	status, resp = call(t, h.MoveCard, &adminActor, id, `{"column":"done"}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, boardUC.MoveApplied, result.Outcome)
	assert.Equal(t, domain.ColumnDone, result.Card.Column)

	status, resp = call(t, h.MoveCard, &adminActor, "999", `{"column":"done"}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, boardUC.MoveNotFound, result.Outcome)
}

func TestMoveCardStoreFailure(t *testing.T) {
	h, cards := newBoardHandler()
	id := createCard(t, h)
	cards.fail = true

	status, resp := call(t, h.MoveCard, &memberActor, strconv.FormatInt(id, 10), `{"column":"in-progress"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "UNAVAILABLE", resp.Code)
	assert.NotContains(t, resp.Error, "connection refused")

	card, ok := h.uc.Board().Card(id)
	require.True(t, ok)
	assert.Equal(t, domain.ColumnTodo, card.Column)
}

func TestBoardHandlerRejectsBadRequests(t *testing.T) {
	h, _ := newBoardHandler()

	status, resp := call(t, h.GetBoard, nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", resp.Code)

	status, _ = call(t, h.CreateCard, &memberActor, "", `{"column":"todo"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, h.CreateCard, &memberActor, "", `{"column":"todo","title":"x","priority":"urgent"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, h.MoveCard, &memberActor, "abc", `{"column":"done"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, h.UpdateCard, &memberActor, "1", `{"subtasks":{"completed":3,"total":2}}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteCardIsIdempotent(t *testing.T) {
	h, _ := newBoardHandler()
	id := strconv.FormatInt(createCard(t, h), 10)

	status, _ := call(t, h.DeleteCard, &memberActor, id, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, h.DeleteCard, &memberActor, id, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, resp := call(t, h.GetBoard, &memberActor, "", "")
	require.Equal(t, http.StatusOK, status)
	var view boardUC.View
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Empty(t, view.Cards)
	assert.Len(t, view.Columns, 4)
}

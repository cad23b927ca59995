package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/api/transport"
	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	boardUC "github.com/fastygo/kanban/usecase/board"
)

type BoardHandler struct {
	baseHandler
	uc             *boardUC.UseCase
	defaultProject string
}

func NewBoardHandler(uc *boardUC.UseCase, defaultProject string, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler:    newBaseHandler(adapter, logger),
		uc:             uc,
		defaultProject: defaultProject,
	}
}

// @Summary Board view
// @Tags board
// @Param project query string false "project id"
// @Param assignee query string false "assignee name"
// @Param tag query string false "tag"
// @Param column query string false "column id"
// @Param priority query string false "priority"
// @Param overdue query bool false "only overdue cards"
// @Router /api/v1/board [get]
func (h *BoardHandler) GetBoard(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	args := ctx.QueryArgs()
	filter := boardUC.Filter{
		ProjectID: string(args.Peek("project")),
		Assignee:  string(args.Peek("assignee")),
		Tag:       string(args.Peek("tag")),
		Column:    string(args.Peek("column")),
		Overdue:   args.GetBool("overdue"),
	}
	if filter.ProjectID == "" {
		filter.ProjectID = h.defaultProject
	}
	if raw := string(args.Peek("priority")); raw != "" {
		p, ok := domain.ParsePriority(raw)
		if !ok {
			h.respondInvalid(ctx, "unknown priority")
			return
		}
		filter.Priority = p
	}
	h.respondSuccess(ctx, http.StatusOK, h.uc.View(filter))
}

// @Summary Create card
// @Tags board
// @Router /api/v1/board/cards [post]
func (h *BoardHandler) CreateCard(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.CardCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	draft := domain.CardDraft{
		Title:                   req.Title,
		Description:             req.Description,
		Assignee:                domain.Assignee{Name: req.Assignee.Name, Avatar: req.Assignee.Avatar},
		Tags:                    req.Tags,
		EstimatedCompletionDate: req.EstimatedCompletionDate,
		ProjectID:               req.ProjectID,
	}
	if draft.ProjectID == "" {
		draft.ProjectID = h.defaultProject
	}
	if req.Priority != "" {
		p, ok := domain.ParsePriority(req.Priority)
		if !ok {
			h.respondInvalid(ctx, "unknown priority")
			return
		}
		draft.Priority = p
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	card, err := h.uc.AddCard(stdCtx, actor, req.Column, draft)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, card)
}

// @Summary Edit card
// @Tags board
// @Router /api/v1/board/cards/{id} [put]
func (h *BoardHandler) UpdateCard(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := h.cardID(ctx)
	if !ok {
		return
	}
	var req transport.CardUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	edit, ok := h.toEdit(ctx, req)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	card, err := h.uc.EditCard(stdCtx, actor, id, edit)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, card)
}

// @Summary Delete card
// @Tags board
// @Router /api/v1/board/cards/{id} [delete]
func (h *BoardHandler) DeleteCard(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := h.cardID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteCard(stdCtx, actor, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Move card
// @Description Denied and unknown cards answer 200 with the outcome.
// @Tags board
// @Router /api/v1/board/cards/{id}/move [post]
func (h *BoardHandler) MoveCard(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id, ok := h.cardID(ctx)
	if !ok {
		return
	}
	var req transport.MoveRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.MoveCard(stdCtx, actor, id, req.Column)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Card history
// @Tags board
// @Router /api/v1/board/cards/{id}/activity [get]
func (h *BoardHandler) CardActivity(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	id, ok := h.cardID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)
	items, err := h.uc.CardActivity(stdCtx, id, limit)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(items, limit, 0))
}

// @Summary Add column
// @Tags board
// @Router /api/v1/board/columns [post]
func (h *BoardHandler) CreateColumn(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.ColumnRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	col, err := h.uc.AddColumn(stdCtx, actor, req.Title)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, col)
}

func (h *BoardHandler) cardID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, err := strconv.ParseInt(pathParam(ctx, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondInvalid(ctx, "invalid card id")
		return 0, false
	}
	return id, true
}

func (h *BoardHandler) toEdit(ctx *fasthttp.RequestCtx, req transport.CardUpdateRequest) (domain.CardEdit, bool) {
	edit := domain.CardEdit{
		Title:                   req.Title,
		Description:             req.Description,
		Attachments:             req.Attachments,
		Blocked:                 req.Blocked,
		EstimatedCompletionDate: req.EstimatedCompletionDate,
		ClearEstimate:           req.ClearEstimate,
	}
	if req.Priority != nil {
		p, ok := domain.ParsePriority(strings.TrimSpace(*req.Priority))
		if !ok {
			h.respondInvalid(ctx, "unknown priority")
			return domain.CardEdit{}, false
		}
		edit.Priority = &p
	}
	if req.Assignee != nil {
		edit.Assignee = &domain.Assignee{Name: req.Assignee.Name, Avatar: req.Assignee.Avatar}
	}
	if req.Tags != nil {
		edit.Tags, edit.SetTags = *req.Tags, true
	}
	if req.Subtasks != nil {
		edit.Subtasks = &domain.Subtasks{Completed: req.Subtasks.Completed, Total: req.Subtasks.Total}
	}
	if req.Dependencies != nil {
		edit.Dependencies, edit.SetDependencies = *req.Dependencies, true
	}
	return edit, true
}

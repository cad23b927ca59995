package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/api/transport"
	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/repository"
	projectUC "github.com/fastygo/kanban/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List projects
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) ListProjects(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	args := ctx.QueryArgs()
	filter := repository.ProjectFilter{
		Status: string(args.Peek("status")),
		Limit:  parseInt(string(args.Peek("limit")), 100),
		Offset: parseInt(string(args.Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.ListProjects(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(projects, filter.Limit, filter.Offset))
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	var req transport.ProjectRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateProject(stdCtx, actor, toProject("", req))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update project
// @Tags projects
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing project id")
		return
	}
	var req transport.ProjectRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProject(stdCtx, actor, toProject(id, req))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete project
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing project id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProject(stdCtx, actor, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func toProject(id string, req transport.ProjectRequest) *domain.Project {
	return &domain.Project{
		ID:               id,
		Name:             req.Name,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EstimatedEndDate: req.EstimatedEndDate,
		Status:           domain.ProjectStatus(req.Status),
		Progress:         req.Progress,
	}
}

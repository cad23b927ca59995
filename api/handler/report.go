package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/pkg/httpcontext"
	reportUC "github.com/fastygo/kanban/usecase/report"
)

type ReportHandler struct {
	baseHandler
	uc             *reportUC.UseCase
	defaultProject string
}

func NewReportHandler(uc *reportUC.UseCase, defaultProject string, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler:    newBaseHandler(adapter, logger),
		uc:             uc,
		defaultProject: defaultProject,
	}
}

// @Summary Project timeline
// @Tags reports
// @Router /api/v1/reports/timeline [get]
func (h *ReportHandler) Timeline(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.uc.Timeline(h.project(ctx)))
}

// @Summary Dashboard totals
// @Tags reports
// @Router /api/v1/reports/dashboard [get]
func (h *ReportHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	if _, ok := h.actor(ctx); !ok {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.uc.Dashboard(h.project(ctx)))
}

func (h *ReportHandler) project(ctx *fasthttp.RequestCtx) string {
	if p := string(ctx.QueryArgs().Peek("project")); p != "" {
		return p
	}
	return h.defaultProject
}

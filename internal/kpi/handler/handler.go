package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medspa_crm_backend/internal/kpi/service"
	"medspa_crm_backend/internal/kpi/transport"
	"medspa_crm_backend/platform/httpkit"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Dashboard(c *gin.Context) {
	var req transport.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.Dashboard(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) RecordEvent(c *gin.Context) {
	var req transport.CreateKpiEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	ev, err := h.svc.RecordEvent(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, ev)
}

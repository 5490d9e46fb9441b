package webhooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/logger"
)

// SignatureHeader carries the sender's payload signature. It is logged for
// traceability but not verified.
const SignatureHeader = "X-CRM-Signature"

// Response is the webhook acknowledgement. Processing failures still
// return 200 so the sender does not retry payloads that will never map.
type Response struct {
	Success bool       `json:"success"`
	LeadID  *uuid.UUID `json:"leadId,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Handler receives inbound CRM webhooks.
type Handler struct {
	svc *Service
	log *logger.Logger
}

// NewHandler creates a new webhooks handler.
func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) HandleLead(c *gin.Context) {
	if signature := c.GetHeader(SignatureHeader); signature != "" {
		h.log.Info("webhook signature received", "signature", signature)
	}

	var payload LeadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	leadID, err := h.svc.ProcessLead(c.Request.Context(), payload)
	if err != nil {
		h.log.Error("webhook lead processing failed", "error", err)
		httpkit.OK(c, Response{Success: false, Error: "Failed to process lead"})
		return
	}

	httpkit.OK(c, Response{
		Success: true,
		LeadID:  &leadID,
		Message: "Lead processed successfully",
	})
}

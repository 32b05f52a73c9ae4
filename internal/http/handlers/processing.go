package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type ProcessingHandler struct {
	log        *logger.Logger
	processing services.ProcessingService
	metrics    *observability.Metrics
}

func NewProcessingHandler(log *logger.Logger, processing services.ProcessingService, metrics *observability.Metrics) *ProcessingHandler {
	return &ProcessingHandler{log: log.With("handler", "ProcessingHandler"), processing: processing, metrics: metrics}
}

type triggerRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

// POST /api/v1/projects/:projectId/processing/orchestrator
func (h *ProcessingHandler) Trigger(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			response.RespondError(c, err)
			return
		}
	}
	run, err := h.processing.Trigger(c.Request.Context(), c.Param("projectId"), req.DocumentIDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

// GET /api/v1/projects/:projectId/ai/status
func (h *ProcessingHandler) Status(c *gin.Context) {
	st, err := h.processing.Status(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, st)
}

// GET /api/v1/projects/:projectId/ai/streams?runId=
func (h *ProcessingHandler) StreamRun(c *gin.Context) {
	body, err := h.processing.StreamRun(c.Request.Context(), c.Param("projectId"), queryFirst(c, "runId", "run_id"))
	if err != nil {
		h.metrics.IncAIStream("run", "error")
		response.RespondError(c, err)
		return
	}
	h.relay(c, "run", body)
}

// POST /api/graphrag/chat/stream
func (h *ProcessingHandler) ChatStream(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		response.RespondError(c, apierr.BadRequest("invalid_request", "body is required"))
		return
	}
	body, err := h.processing.ChatStream(c.Request.Context(), payload)
	if err != nil {
		h.metrics.IncAIStream("chat", "error")
		response.RespondError(c, err)
		return
	}
	h.relay(c, "chat", body)
}

func (h *ProcessingHandler) relay(c *gin.Context, kind string, body io.ReadCloser) {
	services.SetEventStreamHeaders(c.Writer)
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	n, err := services.RelayStream(c.Request.Context(), c.Writer, body)
	switch {
	case err == nil:
		h.metrics.IncAIStream(kind, "ok")
	case c.Request.Context().Err() != nil:
		h.metrics.IncAIStream(kind, "client_closed")
		h.log.Debug("stream closed by client", "kind", kind, "bytes", n)
	default:
		h.metrics.IncAIStream(kind, "upstream_error")
		h.log.Warn("stream relay ended with error", "kind", kind, "bytes", n, "error", err)
	}
}

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type ApprovalHandler struct {
	approvals services.ApprovalService
}

func NewApprovalHandler(approvals services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

// GET /api/v1/approvals/workflows?projectId=&status=
func (h *ApprovalHandler) ListWorkflows(c *gin.Context) {
	projectID := queryFirst(c, "projectId", "project_id")
	if projectID == "" {
		response.RespondError(c, apierr.BadRequest("invalid_request", "projectId is required"))
		return
	}
	rows, err := h.approvals.List(c.Request.Context(), requestUserID(c), projectID, queryFirst(c, "status"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"workflows": rows})
}

// POST /api/v1/approvals/workflows
func (h *ApprovalHandler) CreateWorkflow(c *gin.Context) {
	var req services.CreateApprovalInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		req.IdempotencyKey = c.GetHeader(idempotencyHeader)
	}
	out, err := h.approvals.Create(c.Request.Context(), requestUserID(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondWrite(c, out.Replayed, gin.H{"workflow": out.Asset, "edges": out.Edges, "replayed": out.Replayed})
}

// POST /api/v1/approvals/workflows/:assetId/decision
// body: { "decision": "approved" | "rejected", "comment": "..." }
func (h *ApprovalHandler) Decide(c *gin.Context) {
	var req services.DecisionInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.approvals.Decide(c.Request.Context(), requestUserID(c), c.Param("assetId"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

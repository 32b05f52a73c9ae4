package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type QualityHandler struct {
	quality services.QualityService
}

func NewQualityHandler(quality services.QualityService) *QualityHandler {
	return &QualityHandler{quality: quality}
}

// GET /api/v1/projects/:projectId/quality/itp-register?status=&wbs_node=
func (h *QualityHandler) ITPRegister(c *gin.Context) {
	reg, err := h.quality.ITPRegister(c.Request.Context(), c.Param("projectId"), queryFirst(c, "status"), queryFirst(c, "wbs_node", "wbsNode"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, reg)
}

// POST /api/v1/projects/:projectId/quality/itp-register
func (h *QualityHandler) CreateITP(c *gin.Context) {
	var req services.CreateITPInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		req.IdempotencyKey = c.GetHeader(idempotencyHeader)
	}
	out, err := h.quality.CreateITP(c.Request.Context(), c.Param("projectId"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondWrite(c, out.Replayed, gin.H{"itp": out.Asset, "edges": out.Edges, "replayed": out.Replayed})
}

// GET /api/v1/projects/:projectId/quality/lots?status=
func (h *QualityHandler) Lots(c *gin.Context) {
	rows, err := h.quality.Lots(c.Request.Context(), c.Param("projectId"), queryFirst(c, "status"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lots": rows})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type RegisterHandler struct {
	register services.RegisterService
}

func NewRegisterHandler(register services.RegisterService) *RegisterHandler {
	return &RegisterHandler{register: register}
}

// GET /api/v1/projects/:projectId/registers/:type
func (h *RegisterHandler) List(c *gin.Context) {
	typ, err := services.ParseRegister(c.Param("type"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	limit, offset, err := paging(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.register.List(c.Request.Context(), services.RegisterQuery{
		ProjectID:      c.Param("projectId"),
		Type:           typ,
		ParentID:       queryFirst(c, "parentId", "parent_id"),
		UserID:         queryFirst(c, "userId", "user_id"),
		Status:         queryFirst(c, "status"),
		DocumentNumber: queryFirst(c, "documentNumber", "document_number"),
		WBSNode:        queryFirst(c, "wbsNode", "wbs_node"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondData(c, rows)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type FieldHandler struct {
	field services.FieldService
}

func NewFieldHandler(field services.FieldService) *FieldHandler {
	return &FieldHandler{field: field}
}

// Create serves POST /api/v1/field/<kind>.
// body: { "project_id": "...", "idempotency_key"?: "...", ...content }
func (h *FieldHandler) Create(kind services.FieldKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			response.RespondError(c, apierr.BadRequest("invalid_request", "unreadable body"))
			return
		}
		entry, err := services.ParseFieldEntry(body)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		out, err := h.field.Create(c.Request.Context(), requestUserID(c), kind, entry, c.GetHeader(idempotencyHeader))
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondWrite(c, out.Replayed, gin.H{kind.Singular(): out.Asset, "replayed": out.Replayed})
	}
}

// List serves GET /api/v1/field/<kind>?project_id=&user_id=&status=&limit=&offset=
func (h *FieldHandler) List(kind services.FieldKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset, err := paging(c)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		rows, err := h.field.List(c.Request.Context(), requestUserID(c), kind, services.FieldQuery{
			ProjectID: queryFirst(c, "project_id", "projectId"),
			UserID:    queryFirst(c, "user_id", "userId"),
			Status:    queryFirst(c, "status"),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondData(c, rows)
	}
}

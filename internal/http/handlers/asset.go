package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type AssetHandler struct {
	assets services.AssetService
}

func NewAssetHandler(assetService services.AssetService) *AssetHandler {
	return &AssetHandler{assets: assetService}
}

// GET /api/v1/assets?projectId=&type=&documentNumber=&parentId=&status=
func (h *AssetHandler) ListAssets(c *gin.Context) {
	limit, offset, err := paging(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	q := services.RegisterQuery{
		ProjectID:      queryFirst(c, "projectId", "project_id"),
		DocumentNumber: queryFirst(c, "documentNumber", "document_number"),
		ParentID:       queryFirst(c, "parentId", "parent_id"),
		Status:         queryFirst(c, "status"),
		Limit:          limit,
		Offset:         offset,
	}
	if q.ProjectID == "" {
		response.RespondError(c, apierr.BadRequest("invalid_request", "projectId is required"))
		return
	}
	if raw := queryFirst(c, "type"); raw != "" {
		if q.Type, err = services.ParseRegister(raw); err != nil {
			response.RespondError(c, err)
			return
		}
	}
	rows, err := h.assets.List(c.Request.Context(), requestUserID(c), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": rows})
}

// POST /api/v1/assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var spec assets.WriteSpec
	if err := bindJSON(c, &spec); err != nil {
		response.RespondError(c, err)
		return
	}
	if strings.TrimSpace(spec.IdempotencyKey) == "" {
		spec.IdempotencyKey = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	}
	// Audit attribution comes from the request, never the body.
	spec.Audit = nil
	out, err := h.assets.Create(c.Request.Context(), requestUserID(c), spec)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondWrite(c, out.Replayed, out)
}

// PUT /api/v1/assets/:assetId
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req services.AssetUpdate
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	row, err := h.assets.Update(c.Request.Context(), requestUserID(c), c.Param("assetId"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": row})
}

// DELETE /api/v1/assets/:assetId
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	row, err := h.assets.Delete(c.Request.Context(), requestUserID(c), c.Param("assetId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": row})
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/v1/assets/:assetId/status
func (h *AssetHandler) SetAssetStatus(c *gin.Context) {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	row, err := h.assets.SetStatus(c.Request.Context(), requestUserID(c), c.Param("assetId"), req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": row})
}

// GET /api/v1/assets/:assetId/revisions
func (h *AssetHandler) ListRevisions(c *gin.Context) {
	revs, err := h.assets.Revisions(c.Request.Context(), requestUserID(c), c.Param("assetId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"revisions": revs})
}

// POST /api/v1/assets/:assetId/revisions
func (h *AssetHandler) CreateRevision(c *gin.Context) {
	var req services.CreateRevisionInput
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			response.RespondError(c, err)
			return
		}
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		req.IdempotencyKey = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	}
	out, err := h.assets.Revise(c.Request.Context(), requestUserID(c), c.Param("assetId"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondWrite(c, out.Replayed, out)
}

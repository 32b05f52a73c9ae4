package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

type uploadRequest struct {
	Files []objectstore.FileDescriptor `json:"files"`
	RowID string                       `json:"rowId"`
}

// POST /api/v1/projects/:projectId/uploads/sas
func (h *UploadHandler) IssueUploadURLs(c *gin.Context) {
	var req uploadRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	targets, err := h.uploads.IssueUploadURLs(c.Request.Context(), c.Param("projectId"), req.Files)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"uploads": targets})
}

// POST /api/v1/projects/:projectId/assets/:assetId/attachments/sas
func (h *UploadHandler) IssueAttachmentURLs(c *gin.Context) {
	var req uploadRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	targets, err := h.uploads.IssueAttachmentURLs(c.Request.Context(), c.Param("projectId"), c.Param("assetId"), req.RowID, req.Files)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"uploads": targets})
}

// GET /api/v1/projects/:projectId/downloads/sas?blob=
func (h *UploadHandler) DownloadURL(c *gin.Context) {
	u, err := h.uploads.DownloadURL(c.Request.Context(), c.Param("projectId"), c.Query("blob"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": u})
}

type completeRequest struct {
	Files             []services.CompletedFile `json:"files"`
	RowID             string                   `json:"rowId"`
	TriggerProcessing bool                     `json:"triggerProcessing"`
}

// POST /api/v1/projects/:projectId/uploads/complete
// Answers 207 when the documents were recorded but processing did not start.
func (h *UploadHandler) CompleteUpload(c *gin.Context) {
	var req completeRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.uploads.CompleteUpload(c.Request.Context(), c.Param("projectId"), req.Files, req.TriggerProcessing)
	respondComplete(c, res, err)
}

// POST /api/v1/projects/:projectId/assets/:assetId/attachments/complete
func (h *UploadHandler) CompleteAttachment(c *gin.Context) {
	var req completeRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.uploads.CompleteAttachment(c.Request.Context(), c.Param("projectId"), c.Param("assetId"), req.RowID, req.Files, req.TriggerProcessing)
	respondComplete(c, res, err)
}

func respondComplete(c *gin.Context, res *services.CompleteResult, err error) {
	if err != nil {
		response.RespondError(c, err)
		return
	}
	status := http.StatusCreated
	if res.IsTriggerFailure() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, res)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/data/graph"
	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type GraphHandler struct {
	graph services.GraphService
}

func NewGraphHandler(graphService services.GraphService) *GraphHandler {
	return &GraphHandler{graph: graphService}
}

// List serves GET /api/neo4j/:projectId/<kind>?status=&limit=&offset=
func (h *GraphHandler) List(kind graph.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset, err := paging(c)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		rows, err := h.graph.List(c.Request.Context(), c.Param("projectId"), kind, graph.ListFilter{
			Status: queryFirst(c, "status"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondData(c, rows)
	}
}

// GET /api/neo4j/:projectId/lots/:lotId
func (h *GraphHandler) GetLot(c *gin.Context) {
	lot, err := h.graph.GetLot(c.Request.Context(), c.Param("projectId"), c.Param("lotId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"data": lot})
}

// PATCH /api/neo4j/:projectId/lots/:lotId/status
// body: { "status": "closed" }
func (h *GraphHandler) UpdateLotStatus(c *gin.Context) {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	lot, err := h.graph.UpdateLotStatus(c.Request.Context(), c.Param("projectId"), c.Param("lotId"), req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"data": lot})
}

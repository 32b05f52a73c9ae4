package handlers

import (
	"github.com/gin-gonic/gin"

	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/services"
)

type ProjectHandler struct {
	projects  services.ProjectService
	portal    services.PortalService
	dashboard services.DashboardService
}

func NewProjectHandler(projects services.ProjectService, portal services.PortalService, dashboard services.DashboardService) *ProjectHandler {
	return &ProjectHandler{projects: projects, portal: portal, dashboard: dashboard}
}

// GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	rows, err := h.projects.ListForUser(c.Request.Context(), requestUserID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": rows})
}

// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	p, err := h.projects.Create(c.Request.Context(), requestUserID(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": p})
}

// GET /api/v1/projects/:projectId
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// GET /api/v1/projects/:projectId/team
func (h *ProjectHandler) ListTeam(c *gin.Context) {
	members, err := h.projects.ListMembers(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"members": members})
}

// GET /api/v1/dashboard
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	sum, err := h.dashboard.Summary(c.Request.Context(), requestUserID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": sum})
}

// GET /api/v1/client/projects
func (h *ProjectHandler) ClientProjects(c *gin.Context) {
	h.portalProjects(c, policy.RoleClient)
}

// GET /api/v1/subcontractor/projects
func (h *ProjectHandler) SubcontractorProjects(c *gin.Context) {
	h.portalProjects(c, policy.RoleSubcontractor)
}

func (h *ProjectHandler) portalProjects(c *gin.Context, role string) {
	rows, err := h.portal.ListProjectsForRole(c.Request.Context(), requestUserID(c), role)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": rows, "total": len(rows)})
}

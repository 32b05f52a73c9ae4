package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
	"github.com/yungbote/siteproof-backend/internal/services"
)

const ProjectAccessKey = "project_access"

// ProjectAccess resolves the caller's access to the :projectId route param and
// stores it on the request context. It must run after RequireAuth.
func ProjectAccess(access services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := strings.TrimSpace(c.Param("projectId"))
		if projectID == "" {
			response.AbortError(c, apierr.BadRequest("invalid_request", "project id is required"))
			return
		}
		ctx := c.Request.Context()
		pa, err := access.CheckProjectAccess(ctx, ctxutil.UserID(ctx), projectID)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		c.Request = c.Request.WithContext(services.ContextWithAccess(ctx, pa))
		c.Set(ProjectAccessKey, pa)
		c.Next()
	}
}

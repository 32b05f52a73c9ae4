package middleware

import (
	"github.com/gin-gonic/gin"

	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/services"
)

// RequireAction gates a route on the role resolved by ProjectAccess.
func RequireAction(access services.AccessService, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := access.Require(ctx, services.AccessFromContext(ctx), action); err != nil {
			response.AbortError(c, err)
			return
		}
		c.Next()
	}
}

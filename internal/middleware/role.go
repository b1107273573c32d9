package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePrivileged allows leads and the super admin.
func RequirePrivileged() gin.HandlerFunc {
	return RequireRole(models.RoleLead, models.RoleSuperAdmin)
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
)

// LibrarianMiddleware checks the user has the librarian role.
// Must run after AuthMiddleware, which sets "role" in the context.
func LibrarianMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			response.Forbidden(c, "Access denied: librarian role required")
			c.Abort()
			return
		}

		role, ok := roleInterface.(string)
		if !ok || role != "librarian" {
			response.Forbidden(c, "Access denied: librarian role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

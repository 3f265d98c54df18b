// internal/api/auth.go
package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aclaborda1010101/labordacousinsproductions-sub005/internal/store"
)

// AuthMiddleware checks the bearer token against the configured token map
// and stores the resolved user ID on the context. An empty token map
// disables authentication, which is only sensible for local development.
func AuthMiddleware(tokens map[string]string, resp *ResponseHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(tokens) == 0 {
			c.Set("user_id", "local")
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			resp.Unauthorized(c, "missing or malformed Authorization header")
			c.Abort()
			return
		}

		userID, ok := tokens[token]
		if !ok {
			resp.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// requireProjectMember verifies the authenticated user belongs to the
// project. Returns false after writing the error response.
func requireProjectMember(c *gin.Context, st store.Store, resp *ResponseHelper, projectID string) bool {
	userID := c.GetString("user_id")
	if userID == "local" {
		return true
	}

	member, err := st.IsProjectMember(c.Request.Context(), projectID, userID)
	if err != nil {
		resp.InternalError(c, "membership check failed")
		c.Abort()
		return false
	}
	if !member {
		resp.Forbidden(c, "not a member of this project")
		c.Abort()
		return false
	}
	return true
}

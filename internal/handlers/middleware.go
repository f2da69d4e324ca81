package handlers

import (
	"net/http"

	"restbar/internal/policy"

	"github.com/gin-gonic/gin"
)

// staffRoleHeader carries the role the external auth layer resolved for the
// request. Session handling itself lives outside this core.
const staffRoleHeader = "X-Staff-Role"
const staffIDHeader = "X-Staff-Id"

// Require rejects requests whose staff role lacks the capability.
func Require(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetHeader(staffRoleHeader)
		if role == "" || !policy.Can(role, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
			return
		}
		c.Set("staffRole", role)
		c.Set("staffID", c.GetHeader(staffIDHeader))
		c.Next()
	}
}

// CORS allows the configured frontend origin.
func CORS(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", frontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Staff-Role, X-Staff-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func staffID(c *gin.Context) string {
	return c.GetString("staffID")
}

func staffRole(c *gin.Context) string {
	return c.GetString("staffRole")
}

package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"medilink-server/internal/models"
	"medilink-server/internal/utils"
)

// Session value keys. The cookie only carries an opaque session ID; these
// live server-side in the session store.
const (
	SessionKeyUserID = "userID"
	SessionKeyEmail  = "email"
	SessionKeyRole   = "role"
)

// RequireSession creates middleware that rejects requests without a valid
// session (401) and, when roles are given, requests whose session role is
// not a member (403). On success the identity is copied into the gin context
// for downstream handlers.
func RequireSession(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		userID, ok := sess.Get(SessionKeyUserID).(string)
		if !ok || userID == "" {
			utils.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		roleStr, _ := sess.Get(SessionKeyRole).(string)
		role, err := models.ParseRole(roleStr)
		if err != nil {
			utils.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		email, _ := sess.Get(SessionKeyEmail).(string)

		if len(allowedRoles) > 0 {
			isAllowed := false
			for _, allowed := range allowedRoles {
				if role == allowed {
					isAllowed = true
					break
				}
			}
			if !isAllowed {
				utils.Forbidden(c, "You do not have permission to access this resource.")
				c.Abort()
				return
			}
		}

		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Set("userEmail", email)

		c.Next()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medilink-server/internal/audit"
	"medilink-server/internal/models"
)

// Context keys a handler can set when the session has not established an
// identity yet (login and register resolve the user themselves).
const (
	AuditUserIDKey = "auditUserID"
	AuditRoleKey   = "auditRoleKey"
)

// Audit returns middleware that appends one record per request outcome to
// the audit sink. Identity comes from the session (via RequireSession) or
// from the keys a handler set; requests with no resolvable identity are not
// recorded, matching the write-only per-user sink layout.
func Audit(recorder audit.Recorder, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userID, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		if userID == "" {
			if v, ok := c.Get(AuditUserIDKey); ok {
				userID, _ = v.(string)
			}
			if v, ok := c.Get(AuditRoleKey); ok {
				role, _ = v.(models.Role)
			}
		}
		if userID == "" || role == "" {
			return
		}

		entry := audit.Entry{
			Role:    role,
			UserID:  userID,
			Route:   c.FullPath(),
			Success: c.Writer.Status() < 400,
			Time:    time.Now().UTC().Format(time.RFC3339),
		}
		if entry.Route == "" {
			entry.Route = c.Request.URL.Path
		}
		if err := recorder.Record(entry); err != nil {
			logger.Error().Err(err).
				Str("route", entry.Route).
				Msg("failed to record audit entry")
		}
	}
}

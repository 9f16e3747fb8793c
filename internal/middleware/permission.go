package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
	"github.com/guestpostlinks/pr-admin-api/pkg/response"
)

// Actions checked against a user's permission snapshot.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// RequirePermission enforces that the authenticated user's permission
// snapshot grants the given action on the given module. The check runs
// against the snapshot stored on the user record, not the live role.
func RequirePermission(module, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		capability, ok := user.Permission[module]
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no access to this module"))
			c.Abort()
			return
		}

		allowed := false
		switch action {
		case ActionRead:
			allowed = capability.Read
		case ActionWrite:
			allowed = capability.Write
		case ActionDelete:
			allowed = capability.Delete
		}

		if !allowed {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permission"))
			c.Abort()
			return
		}

		c.Next()
	}
}

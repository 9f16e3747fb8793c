package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
	"github.com/guestpostlinks/pr-admin-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

type userResolver interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// IdentityVerifier validates identity-provider tokens into an email claim.
type IdentityVerifier interface {
	VerifyEmail(ctx context.Context, idToken string) (string, error)
}

// Auth requires a valid session and attaches the resolved user record to the
// context. A self-issued bearer token is checked first; when absent, an
// identity-provider token in the Authorization-Token header is accepted as a
// fallback. Blocked and deleted accounts are rejected in both paths.
func Auth(authService *service.AuthService, users userResolver, verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
				c.Abort()
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}

			attachUser(c, users, func(ctx context.Context) (*models.User, error) {
				return users.FindByID(ctx, claims.UserID)
			})
			return
		}

		if idToken := c.GetHeader("Authorization-Token"); idToken != "" && verifier != nil {
			email, err := verifier.VerifyEmail(c.Request.Context(), idToken)
			if err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid identity token"))
				c.Abort()
				return
			}

			attachUser(c, users, func(ctx context.Context) (*models.User, error) {
				return users.FindByEmail(ctx, email)
			})
			return
		}

		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
	}
}

func attachUser(c *gin.Context, users userResolver, load func(context.Context) (*models.User, error)) {
	user, err := load(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "user not found"))
		c.Abort()
		return
	}
	if user.IsDeleted || user.IsBlocked {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "account is blocked or removed"))
		c.Abort()
		return
	}

	c.Set(ContextUserKey, user)
	c.Next()
}

// CurrentUser returns the authenticated user attached by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

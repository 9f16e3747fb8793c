package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
	"github.com/guestpostlinks/pr-admin-api/pkg/config"
)

func testAuthService() *service.AuthService {
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "pr-admin-api"}
	return service.NewAuthService(nil, nil, nil, nil, cfg, time.Minute, nil, nil)
}

func runAuth(t *testing.T, header, value string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		c.Request.Header.Set(header, value)
	}

	Auth(testAuthService(), nil, nil)(c)
	return rec
}

func TestAuthRejectsMissingHeaders(t *testing.T) {
	rec := runAuth(t, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedBearer(t *testing.T) {
	rec := runAuth(t, "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	rec := runAuth(t, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthIdentityTokenWithoutVerifierIsRejected(t *testing.T) {
	rec := runAuth(t, "Authorization-Token", "some-id-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeUserResolver struct {
	byID map[string]*models.User
}

func (f *fakeUserResolver) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserResolver) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := models.JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pr-admin-api",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func runAuthWithUsers(t *testing.T, users *fakeUserResolver, token string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	Auth(testAuthService(), users, nil)(c)
	return rec
}

func TestAuthRejectsBlockedUser(t *testing.T) {
	users := &fakeUserResolver{byID: map[string]*models.User{
		"u1": {ID: "u1", Email: "blocked@guestpostlinks.net", IsBlocked: true},
	}}

	rec := runAuthWithUsers(t, users, mintToken(t, "u1"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	users := &fakeUserResolver{byID: map[string]*models.User{
		"u1": {ID: "u1", Email: "gone@guestpostlinks.net", IsDeleted: true},
	}}

	rec := runAuthWithUsers(t, users, mintToken(t, "u1"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAttachesActiveUser(t *testing.T) {
	users := &fakeUserResolver{byID: map[string]*models.User{
		"u1": {ID: "u1", Email: "jane@guestpostlinks.net"},
	}}

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+mintToken(t, "u1"))

	Auth(testAuthService(), users, nil)(c)

	assert.False(t, c.IsAborted())
	user, ok := CurrentUser(c)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}

func permissionContext(t *testing.T, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		c.Set(ContextUserKey, user)
	}
	return c, rec
}

func TestRequirePermissionGrants(t *testing.T) {
	user := &models.User{Permission: models.PermissionSet{
		"pr-distributions": {Read: true},
	}}
	c, rec := permissionContext(t, user)

	called := false
	RequirePermission("pr-distributions", ActionRead)(c)
	if !c.IsAborted() {
		called = true
	}

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermissionDeniesAction(t *testing.T) {
	user := &models.User{Permission: models.PermissionSet{
		"pr-distributions": {Read: true},
	}}
	c, rec := permissionContext(t, user)

	RequirePermission("pr-distributions", ActionDelete)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionDeniesUnknownModule(t *testing.T) {
	user := &models.User{Permission: models.PermissionSet{}}
	c, rec := permissionContext(t, user)

	RequirePermission("roles", ActionRead)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionRequiresUser(t *testing.T) {
	c, rec := permissionContext(t, nil)

	RequirePermission("roles", ActionRead)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

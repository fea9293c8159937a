package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/authz"
)

var secret = []byte("s3cret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(secret))
	r.GET("/who", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt("user_id"), "role_id": c.GetInt("role_id")})
	})
	r.POST("/write", ReadOnlyGuard(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/admin", RequireRoles(authz.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/team", RequireElevated(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func call(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	ok, err := IssueToken(secret, 5, authz.RoleOperations, time.Hour)
	require.NoError(t, err)
	w := call(r, http.MethodGet, "/who", ok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":5,"role_id":20}`, w.Body.String())

	expired, err := IssueToken(secret, 5, authz.RoleOperations, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/who", expired).Code)

	forged, err := IssueToken([]byte("other"), 5, authz.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/who", forged).Code)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, RoleID: authz.RoleAdmin}).SignedString(secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/who", noExp).Code)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/who", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/healthz", "").Code)
}

func TestRoleGuards(t *testing.T) {
	r := newRouter()
	auditor, _ := IssueToken(secret, 1, authz.RoleAuditor, time.Hour)
	admin, _ := IssueToken(secret, 2, authz.RoleAdmin, time.Hour)

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/write", auditor).Code)
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodPost, "/write", admin).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/admin", auditor).Code)
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodGet, "/admin", admin).Code)
}

func TestRequireElevated(t *testing.T) {
	r := newRouter()
	for role, want := range map[int]int{
		authz.RoleConsultant: http.StatusForbidden,
		authz.RoleAuditor:    http.StatusForbidden,
		authz.RoleOperations: http.StatusNoContent,
		authz.RoleManagement: http.StatusNoContent,
		authz.RoleAdmin:      http.StatusNoContent,
	} {
		tok, err := IssueToken(secret, 9, role, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, call(r, http.MethodPost, "/team", tok).Code, "role %d", role)
	}

	bare := gin.New()
	bare.POST("/team", RequireElevated(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusUnauthorized, call(bare, http.MethodPost, "/team", "").Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("secret-de-test")
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/admin", AuthRequired(), RequireAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/open", OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	token, err := GenerateToken("u1", "clara@floralie.be", "user")
	require.NoError(t, err)

	w := doRequest(protectedRouter(), "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	w := doRequest(protectedRouter(), "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsGarbageToken(t *testing.T) {
	w := doRequest(protectedRouter(), "/me", "pas-un-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminBlocksRegularUser(t *testing.T) {
	token, err := GenerateToken("u1", "clara@floralie.be", "user")
	require.NoError(t, err)

	w := doRequest(protectedRouter(), "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	token, err := GenerateToken("a1", "admin@floralie.be", "admin")
	require.NoError(t, err)

	w := doRequest(protectedRouter(), "/admin", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	w := doRequest(protectedRouter(), "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := GenerateToken("u1", "clara@floralie.be", "user")
	require.NoError(t, err)
	w = doRequest(protectedRouter(), "/open", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

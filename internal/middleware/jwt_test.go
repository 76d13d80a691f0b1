package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifierRoundTrip(t *testing.T) {
	v := NewVerifier("secret", time.Hour)
	tok, err := v.GenerateToken("USR-1", "admin")
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "USR-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, err = NewVerifier("other", time.Hour).Verify(tok)
	assert.Error(t, err)

	expired, err := NewVerifier("secret", -time.Minute).GenerateToken("USR-1", "admin")
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.Error(t, err)
}

func TestRequireAuthAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := NewVerifier("secret", time.Hour)

	r := gin.New()
	r.GET("/me", RequireAuth(v), func(c *gin.Context) {
		actor, err := Actor(c)
		require.NoError(t, err)
		c.String(http.StatusOK, actor)
	})
	r.GET("/admin", RequireAuth(v), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, _ := v.GenerateToken("USR-7", "operator")
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "USR-7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

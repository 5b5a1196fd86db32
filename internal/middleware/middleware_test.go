package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barterly/internal/auth"
	"barterly/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBans map[string]bool

func (f fakeBans) IsBanned(_ context.Context, _ *gorm.DB, userID string) (bool, error) {
	return f[userID], nil
}

func newRouter(tokens *auth.TokenManager, bans fakeBans) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DBMiddleware(&gorm.DB{}))
	g := r.Group("/", AuthMiddleware(tokens), BanGate(bans))
	g.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	g.GET("/admin", RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthAndBanGate(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens, fakeBans{"banned": true})

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	good, err := tokens.GenerateToken("u1", "user")
	require.NoError(t, err)
	banned, err := tokens.GenerateToken("banned", "user")
	require.NoError(t, err)
	admin, err := tokens.GenerateToken("a1", "admin")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	})
	t.Run("valid header", func(t *testing.T) {
		w := do("/me", "Bearer "+good)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"u1"`)
	})
	t.Run("query token", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do("/me?token="+good, "").Code)
	})
	t.Run("banned account", func(t *testing.T) {
		w := do("/me", "Bearer "+banned)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ACCOUNT_BANNED")
	})
	t.Run("role guard", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/admin", "Bearer "+good).Code)
		assert.Equal(t, http.StatusNoContent, do("/admin", "Bearer "+admin).Code)
	})
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("1.1.1.1"))

	now = now.Add(2 * time.Minute)
	l.Cleanup()
	assert.Empty(t, l.requests)
}

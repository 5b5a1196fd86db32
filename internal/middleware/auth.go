package middleware

import (
	"context"
	"net/http"
	"strings"

	"barterly/internal/auth"
	"barterly/internal/logger"
	"barterly/internal/models"
	"barterly/pkg/apperrors"
	"barterly/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenParser verifies a session token.
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// BanChecker reports whether an identity is banned.
type BanChecker interface {
	IsBanned(ctx context.Context, db *gorm.DB, userID string) (bool, error)
}

// AuthMiddleware requires a valid session token, taken from the
// Authorization header or, for WebSocket upgrades, the token query param.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.ParseToken(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken.WithError(err))
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UserID)
		c.Set(contextkeys.RoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// BanGate rejects every authenticated request of a banned account with
// ACCOUNT_BANNED. It must run after AuthMiddleware and DBMiddleware.
func BanGate(checker BanChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			c.Next()
			return
		}

		db := dbFromContext(c)
		banned, err := checker.IsBanned(c.Request.Context(), db, userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.DatabaseError(err))
			return
		}
		if banned {
			logger.CtxWarn(c.Request.Context(), "banned account rejected")
			apperrors.HandleError(c, apperrors.ErrUserBanned)
			return
		}
		c.Next()
	}
}

// RequireRoles allows only the listed roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !roleSet[GetRole(c)] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// ExtractToken returns the bearer token or the token query parameter.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if c.Request.Method == http.MethodGet {
		return c.Query("token")
	}
	return ""
}

// GetUserID returns the authenticated user id, or "" when absent.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

func GetRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(contextkeys.RoleKey))
}

func dbFromContext(c *gin.Context) *gorm.DB {
	if db, ok := c.Get(string(contextkeys.DBContextKey)); ok {
		if gdb, ok := db.(*gorm.DB); ok {
			return gdb
		}
	}
	panic("middleware: DBMiddleware must run before BanGate")
}

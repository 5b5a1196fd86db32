package routes

import (
	"net/http"

	"barterly/internal/handlers"
	"barterly/internal/logger"
	"barterly/internal/middleware"
	"barterly/internal/models"
	"barterly/pkg/apperrors"
	"barterly/ws"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Guards are the checks in front of authenticated routes.
type Guards struct {
	Tokens middleware.TokenParser
	Bans   middleware.BanChecker
}

// Docs points the API docs UI at the shipped OpenAPI document. An empty
// SpecPath disables the UI.
type Docs struct {
	SpecPath string
}

// RegisterRoutes registers every HTTP and WebSocket route.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	guards Guards,
	docs Docs,
) {
	authenticated := []gin.HandlerFunc{
		middleware.AuthMiddleware(guards.Tokens),
		middleware.BanGate(guards.Bans),
	}

	api := ginRouter.Group("/api/v1")
	protected := api.Group("", authenticated...)
	admin := protected.Group("/admin", middleware.RequireRoles(models.UserRoleAdmin))

	appHandlers.RegisterRoutes(handlers.Groups{
		Public:    api,
		Protected: protected,
		Admin:     admin,
	})

	if wsHandler != nil {
		protected.GET("/presence", wsHandler.Presence)

		wsGroup := ginRouter.Group("/ws", authenticated...)
		{
			wsGroup.GET("", wsHandler.ServeWS)
		}
		logger.Info("WebSocket route /ws registered")
	}

	if docs.SpecPath != "" {
		ginRouter.StaticFile("/docs/openapi.yaml", docs.SpecPath)
		ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/openapi.yaml")))
		logger.Info("API docs registered", "path", "/swagger/index.html")
	}

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ginRouter.NoRoute(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.NewNotFoundError("route", "Route not found"))
	})
}

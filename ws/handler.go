package ws

import (
	"context"
	"net/http"
	"slices"

	"barterly/internal/logger"
	"barterly/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	Actions  Actions
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from the listed origins; an empty
// list or "*" accepts any origin.
func NewWebSocketHandler(manager *WebSocketManager, actions Actions, origins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
		Actions: actions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin)
	}
}

// ServeWS upgrades an authenticated request. The auth middleware accepts the
// token from the query string so browsers can connect.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	// The request context ends when this handler returns.
	ctx := context.WithoutCancel(c.Request.Context())
	client := NewClient(ctx, userID, conn, h.Manager, h.Actions)
	h.Manager.Register(client)

	go client.writePump()
	go client.readPump()
}

// Presence returns the current online set.
func (h *WebSocketHandler) Presence(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.Manager.OnlineUsers()})
}

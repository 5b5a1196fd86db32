package handlers

import (
	"net/http"

	"barterly/internal/services"
	"barterly/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         base,
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) RegisterRoutes(g Groups) {
	notifications := g.Protected.Group("/notifications")
	{
		notifications.GET("/count", h.GetCount)
		notifications.GET("", h.GetNotifications)
		notifications.POST("/:id/read", h.MarkAsRead)
		notifications.POST("/read-all", h.MarkAllAsRead)
		notifications.POST("/send", h.Send)
	}

	g.Public.GET("/push/vapid-public-key", h.GetVAPIDPublicKey)

	push := g.Protected.Group("/push")
	{
		push.POST("/subscribe", h.Subscribe)
		push.DELETE("/subscribe", h.Unsubscribe)
	}
}

// GetCount is the header badge; the same number is pushed over the
// realtime channel whenever it may have changed.
func (h *NotificationHandler) GetCount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetCount(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, count)
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	feed, err := h.notificationService.GetNotifications(
		h.GetDB(c), userID, ParseQueryBool(c, "unread"), ParseQueryInt(c, "limit", 0),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	notificationID, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(h.GetDB(c), userID, notificationID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	marked, err := h.notificationService.MarkAllAsRead(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": marked})
}

// Send godoc
// @Summary Email a member about a barter event
// @Description Returns 200 with a message instead of sending when the recipient opted out.
// @Tags notifications
// @Param request body dto.SendNotificationRequest true "Notification"
// @Success 200 {object} dto.SendNotificationResponse
// @Router /notifications/send [post]
func (h *NotificationHandler) Send(c *gin.Context) {
	var req dto.SendNotificationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.notificationService.Send(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// --- Web push ---

func (h *NotificationHandler) GetVAPIDPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": h.notificationService.VAPIDPublicKey()})
}

func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PushSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.notificationService.Subscribe(h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

func (h *NotificationHandler) Unsubscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PushUnsubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.notificationService.Unsubscribe(h.GetDB(c), userID, req.Endpoint); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"barterly/internal/services"
	"barterly/internal/services/dto"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BarterHandler serves the request lifecycle, the per-barter conversation
// and post-completion ratings.
type BarterHandler struct {
	*BaseHandler
	barterService services.BarterService
	chatService   services.ChatService
	ratingService services.RatingService
}

func NewBarterHandler(
	base *BaseHandler,
	barterService services.BarterService,
	chatService services.ChatService,
	ratingService services.RatingService,
) *BarterHandler {
	return &BarterHandler{
		BaseHandler:   base,
		barterService: barterService,
		chatService:   chatService,
		ratingService: ratingService,
	}
}

func (h *BarterHandler) RegisterRoutes(g Groups) {
	barters := g.Protected.Group("/barters")
	{
		barters.GET("", h.GetBarters)
		barters.POST("", h.CreateBarter)
		barters.GET("/:id", h.GetBarter)
		barters.POST("/:id/accept", h.AcceptBarter)
		barters.POST("/:id/decline", h.DeclineBarter)
		barters.POST("/:id/complete", h.CompleteBarter)
		barters.DELETE("/:id", h.CancelBarter)

		barters.GET("/:id/messages", h.GetMessages)
		barters.POST("/:id/messages", h.SendMessage)
		barters.POST("/:id/messages/media", h.SendMedia)
		barters.POST("/:id/meetings", h.ScheduleMeeting)
	}

	g.Protected.POST("/ratings", h.CreateRating)
}

// GetBarters godoc
// @Summary List the caller's barter requests
// @Tags barters
// @Param role query string false "incoming or outgoing"
// @Param status query string false "pending, accepted, declined or completed"
// @Success 200 {array} dto.BarterResponse
// @Router /barters [get]
func (h *BarterHandler) GetBarters(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.BarterListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	barters, err := h.barterService.GetBarters(h.GetDB(c), userID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, barters)
}

// CreateBarter godoc
// @Summary Send a barter request
// @Tags barters
// @Param request body dto.CreateBarterRequest true "Request"
// @Success 201 {object} dto.BarterResponse
// @Router /barters [post]
func (h *BarterHandler) CreateBarter(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBarterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	barter, err := h.barterService.CreateBarter(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, barter)
}

func (h *BarterHandler) GetBarter(c *gin.Context) {
	h.withBarter(c, h.barterService.GetBarter)
}

func (h *BarterHandler) AcceptBarter(c *gin.Context) {
	h.withBarter(c, h.barterService.AcceptBarter)
}

func (h *BarterHandler) DeclineBarter(c *gin.Context) {
	h.withBarter(c, h.barterService.DeclineBarter)
}

func (h *BarterHandler) CompleteBarter(c *gin.Context) {
	h.withBarter(c, h.barterService.CompleteBarter)
}

func (h *BarterHandler) CancelBarter(c *gin.Context) {
	userID, barterID, ok := h.barterParams(c)
	if !ok {
		return
	}

	if err := h.barterService.CancelBarter(h.GetDB(c), userID, barterID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// withBarter runs a single-barter operation and renders the result.
func (h *BarterHandler) withBarter(c *gin.Context, op func(db *gorm.DB, userID, barterID string) (*dto.BarterResponse, error)) {
	userID, barterID, ok := h.barterParams(c)
	if !ok {
		return
	}

	barter, err := op(h.GetDB(c), userID, barterID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, barter)
}

func (h *BarterHandler) barterParams(c *gin.Context) (string, string, bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return "", "", false
	}
	barterID, ok := h.RequireParam(c, "id")
	if !ok {
		return "", "", false
	}
	return userID, barterID, true
}

// --- Messages ---

func (h *BarterHandler) GetMessages(c *gin.Context) {
	userID, barterID, ok := h.barterParams(c)
	if !ok {
		return
	}

	messages, err := h.chatService.GetMessages(h.GetDB(c), userID, barterID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *BarterHandler) SendMessage(c *gin.Context) {
	userID, barterID, ok := h.barterParams(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.chatService.SendText(h.GetDB(c), userID, barterID, req.Content)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// SendMedia takes a multipart form with "file" and an optional "caption".
func (h *BarterHandler) SendMedia(c *gin.Context) {
	userID, barterID, ok := h.barterParams(c)
	if !ok {
		return
	}

	file, ok := h.OptionalFormFile(c, "file")
	if !ok {
		return
	}

	message, err := h.chatService.SendMedia(c.Request.Context(), h.GetDB(c), userID, barterID, c.PostForm("caption"), file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *BarterHandler) ScheduleMeeting(c *gin.Context) {
	userID, barterID, ok := h.barterParams(c)
	if !ok {
		return
	}

	var req dto.ScheduleMeetingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.chatService.ScheduleMeeting(h.GetDB(c), userID, barterID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// --- Ratings ---

func (h *BarterHandler) CreateRating(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRatingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	rating, err := h.ratingService.CreateRating(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

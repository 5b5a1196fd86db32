package handlers

import (
	"net/http"

	"barterly/internal/services"
	"barterly/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves profiles and everything shown on a profile page:
// skills, proofs, ratings and the portfolio.
type ProfileHandler struct {
	*BaseHandler
	profileService   services.ProfileService
	skillService     services.SkillService
	uploadService    services.UploadService
	ratingService    services.RatingService
	portfolioService services.PortfolioService
}

func NewProfileHandler(
	base *BaseHandler,
	profileService services.ProfileService,
	skillService services.SkillService,
	uploadService services.UploadService,
	ratingService services.RatingService,
	portfolioService services.PortfolioService,
) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:      base,
		profileService:   profileService,
		skillService:     skillService,
		uploadService:    uploadService,
		ratingService:    ratingService,
		portfolioService: portfolioService,
	}
}

func (h *ProfileHandler) RegisterRoutes(g Groups) {
	me := g.Protected.Group("/profiles/me")
	{
		me.GET("", h.GetMyProfile)
		me.PUT("", h.UpdateMyProfile)
		me.POST("/onboarding", h.CompleteOnboarding)
		me.POST("/avatar", h.UploadAvatar)
	}

	profiles := g.Public.Group("/profiles/:userId")
	{
		profiles.GET("", h.GetProfile)
		profiles.GET("/skills", h.GetSkills)
		profiles.GET("/proofs", h.GetProofs)
		profiles.GET("/ratings", h.GetRatings)
		profiles.GET("/portfolio", h.GetPortfolio)
	}

	skills := g.Protected.Group("/skills")
	{
		skills.POST("", h.CreateSkill)
		skills.PUT("/:id", h.UpdateSkill)
		skills.DELETE("/:id", h.DeleteSkill)
	}

	proofs := g.Protected.Group("/proofs")
	{
		proofs.POST("", h.UploadProof)
		proofs.DELETE("/:id", h.DeleteProof)
	}
}

// --- Own profile ---

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile godoc
// @Summary Update the caller's profile
// @Tags profiles
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.ProfileResponse
// @Router /profiles/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.OnboardingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.CompleteOnboarding(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, ok := h.OptionalFormFile(c, "file")
	if !ok {
		return
	}

	profile, err := h.uploadService.UploadAvatar(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// --- Public profile page ---

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetSkills(c *gin.Context) {
	userID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	skills, err := h.skillService.GetUserSkills(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

func (h *ProfileHandler) GetProofs(c *gin.Context) {
	userID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	proofs, err := h.uploadService.GetUserProofs(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proofs)
}

func (h *ProfileHandler) GetRatings(c *gin.Context) {
	userID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	feed, err := h.ratingService.GetRatingFeed(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *ProfileHandler) GetPortfolio(c *gin.Context) {
	userID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	entries, err := h.portfolioService.GetPortfolio(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// --- Skills ---

func (h *ProfileHandler) CreateSkill(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSkillRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	skill, err := h.skillService.CreateSkill(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

func (h *ProfileHandler) UpdateSkill(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	skillID, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSkillRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	skill, err := h.skillService.UpdateSkill(h.GetDB(c), userID, skillID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

func (h *ProfileHandler) DeleteSkill(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	skillID, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	if err := h.skillService.DeleteSkill(h.GetDB(c), userID, skillID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Proofs ---

func (h *ProfileHandler) UploadProof(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, ok := h.OptionalFormFile(c, "file")
	if !ok {
		return
	}

	proof, err := h.uploadService.UploadProof(c.Request.Context(), h.GetDB(c), userID, c.PostForm("title"), file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proof)
}

func (h *ProfileHandler) DeleteProof(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	proofID, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	if err := h.uploadService.DeleteProof(c.Request.Context(), h.GetDB(c), userID, proofID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

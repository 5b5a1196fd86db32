package handlers

import (
	"net/http"

	"barterly/internal/services"
	"barterly/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the discovery surfaces: browse listings, categories,
// favorites, matches, insights and the member map.
type CatalogHandler struct {
	*BaseHandler
	catalogService  services.CatalogService
	favoriteService services.FavoriteService
	matchingService services.MatchingService
	insightsService services.InsightsService
}

func NewCatalogHandler(
	base *BaseHandler,
	catalogService services.CatalogService,
	favoriteService services.FavoriteService,
	matchingService services.MatchingService,
	insightsService services.InsightsService,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:     base,
		catalogService:  catalogService,
		favoriteService: favoriteService,
		matchingService: matchingService,
		insightsService: insightsService,
	}
}

func (h *CatalogHandler) RegisterRoutes(g Groups) {
	g.Public.GET("/listings", h.GetListings)
	g.Public.GET("/categories", h.GetCategories)
	g.Public.GET("/categories/:name", h.GetCategory)
	g.Public.GET("/insights", h.GetInsights)
	g.Public.GET("/map", h.GetMap)

	favorites := g.Protected.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.GET("/ids", h.GetFavoriteIDs)
		favorites.POST("/:profileUserId/toggle", h.ToggleFavorite)
	}

	matches := g.Protected.Group("/matches")
	{
		matches.GET("", h.GetMatches)
		matches.POST("/:userId/request", h.RequestMatch)
	}
}

// GetListings godoc
// @Summary Browse members offering a skill
// @Tags catalog
// @Param q query string false "Free text over name, skills and bio"
// @Param min_rating query number false "Minimum average rating"
// @Param location query string false "Location substring"
// @Param language query string false "Spoken language"
// @Param category query string false "Skill category"
// @Success 200 {array} dto.ListingResponse
// @Router /listings [get]
func (h *CatalogHandler) GetListings(c *gin.Context) {
	var query dto.ListingQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	listings, err := h.catalogService.GetListings(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	name, ok := h.RequireParam(c, "name")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(h.GetDB(c), name)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) GetInsights(c *gin.Context) {
	insights, err := h.insightsService.GetInsights(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (h *CatalogHandler) GetMap(c *gin.Context) {
	locations, err := h.insightsService.GetMap(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

// --- Favorites ---

func (h *CatalogHandler) GetFavorites(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	favorites, err := h.favoriteService.GetFavorites(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, favorites)
}

func (h *CatalogHandler) GetFavoriteIDs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	ids, err := h.favoriteService.GetFavoriteIDs(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (h *CatalogHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	targetID, ok := h.RequireParam(c, "profileUserId")
	if !ok {
		return
	}

	favorited, err := h.favoriteService.ToggleFavorite(h.GetDB(c), userID, targetID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// --- Matches ---

// GetMatches always answers 200; an incomplete profile is reported through
// the state field.
func (h *CatalogHandler) GetMatches(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.matchingService.GetMatches(h.GetDB(c), userID))
}

func (h *CatalogHandler) RequestMatch(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	targetID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	barter, err := h.matchingService.RequestMatch(h.GetDB(c), userID, targetID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, barter)
}

package handlers

import (
	"net/http"

	"barterly/internal/services"
	"barterly/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves member reports and the admin console.
type AdminHandler struct {
	*BaseHandler
	reportService services.ReportService
	adminService  services.AdminService
}

func NewAdminHandler(base *BaseHandler, reportService services.ReportService, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   base,
		reportService: reportService,
		adminService:  adminService,
	}
}

func (h *AdminHandler) RegisterRoutes(g Groups) {
	g.Protected.POST("/reports", h.CreateReport)

	admin := g.Admin
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/reports", h.GetReports)
		admin.PATCH("/reports/:id", h.UpdateReportStatus)
		admin.GET("/users", h.GetUsers)
		admin.POST("/users/:userId/ban", h.ToggleBan)
	}
}

func (h *AdminHandler) CreateReport(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReportRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.reportService.CreateReport(h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Report submitted"})
}

// --- Admin console ---

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetReports(c *gin.Context) {
	var query dto.AdminReportQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	reports, err := h.adminService.GetReports(h.GetDB(c), query.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// UpdateReportStatus godoc
// @Summary Move a report to reviewed, resolved or dismissed
// @Tags admin
// @Param id path string true "Report ID"
// @Param request body dto.UpdateReportRequest true "New status"
// @Success 200 {object} dto.AdminReportResponse
// @Router /admin/reports/{id} [patch]
func (h *AdminHandler) UpdateReportStatus(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	reportID, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReportRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	report, err := h.adminService.UpdateReportStatus(h.GetDB(c), adminID, reportID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.adminService.GetUsers(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ToggleBan(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID, ok := h.RequireParam(c, "userId")
	if !ok {
		return
	}

	resp, err := h.adminService.ToggleBan(h.GetDB(c), adminID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

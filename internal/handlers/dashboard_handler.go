package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolpulse/homework-service/internal/services"
	"github.com/schoolpulse/homework-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler handles role dashboard and report endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
	reportService    services.ReportService
}

func NewDashboardHandler(dashboardService services.DashboardService, reportService services.ReportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
		reportService:    reportService,
	}
}

// MyDashboard returns the dashboard matching the caller's role
// @Summary Get the current user's dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /dashboard/me [get]
func (h *DashboardHandler) MyDashboard(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.dashboardService.ForUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

// StudentDashboard returns the caller's student dashboard
// @Summary Get student dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.StudentDashboard
// @Router /dashboard/student [get]
func (h *DashboardHandler) StudentDashboard(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.dashboardService.StudentDashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TeacherDashboard returns the caller's teacher dashboard
// @Summary Get teacher dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.TeacherDashboard
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) TeacherDashboard(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.dashboardService.TeacherDashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PrincipalDashboard returns school-wide analytics
// @Summary Get principal dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.PrincipalDashboard
// @Router /dashboard/principal [get]
func (h *DashboardHandler) PrincipalDashboard(c *gin.Context) {
	resp, err := h.dashboardService.PrincipalDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminDashboard returns administration counts and pending confirmations
// @Summary Get admin dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.AdminDashboard
// @Router /dashboard/admin [get]
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	resp, err := h.dashboardService.AdminDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportSchoolReport streams the school analytics workbook
// @Summary Export school report as xlsx
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /dashboard/report/export [get]
func (h *DashboardHandler) ExportSchoolReport(c *gin.Context) {
	h.LogRequest(c, "Exporting school report")

	data, err := h.reportService.ExportSchoolReport(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("school-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

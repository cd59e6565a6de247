package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "satang/internal/errors"
	"satang/internal/services"
)

// DashboardHandler serves aggregated record summaries.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns the user's aggregated totals
// @Summary     Dashboard summary
// @Description Income and expense totals, overall balance, and recent-activity windows
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start date for the totals (YYYY-MM-DD)"
// @Param       to query string false "End date for the totals (YYYY-MM-DD)"
// @Param       category query string false "Category filter for the totals"
// @Success     200 {object} map[string]interface{} "Dashboard summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(userID, filter, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": summary})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "listing_id and reason are required")
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			utils.SendNotFound(c, "Listing not found")
			return
		}
		utils.SendInternalError(c, "Failed to create report", err)
		return
	}

	utils.SendCreated(c, "Report submitted successfully", report)
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.List(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch reports", err)
		return
	}

	utils.SendSuccess(c, "Reports retrieved successfully", reports)
}

func (h *ReportHandler) ModerateReport(c *gin.Context) {
	moderatorID := c.GetUint("user_id")

	reportID, err := strconv.ParseUint(c.Param("report_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid report ID")
		return
	}

	var req models.ModerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "action is required")
		return
	}

	report, err := h.reportService.Moderate(c.Request.Context(), uint(reportID), moderatorID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			utils.SendNotFound(c, "Report not found")
		case errors.Is(err, services.ErrReportModerated):
			utils.SendConflict(c, "Report already moderated", err)
		default:
			utils.SendError(c, http.StatusBadRequest, "Failed to moderate report", err)
		}
		return
	}

	utils.SendSuccess(c, "Report moderated successfully", report)
}

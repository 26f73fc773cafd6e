package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trainup/training-api/internal/models"
	"github.com/trainup/training-api/internal/service"
	"github.com/trainup/training-api/pkg/response"
)

// ReportHandler exposes read-only reporting endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// CourseStatistics godoc
// @Summary Course enrollment statistics
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/statistics [get]
func (h *ReportHandler) CourseStatistics(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.reports.CourseStatistics(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ActivityLogs godoc
// @Summary Recent audit log entries
// @Tags Reports
// @Produce json
// @Param actorKind query string false "Filter by actor kind"
// @Param actorId query int false "Filter by actor id"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /activity-logs [get]
func (h *ReportHandler) ActivityLogs(c *gin.Context) {
	var filter models.AuditFilter
	filter.ActorKind = c.Query("actorKind")
	if actorID, err := strconv.ParseInt(c.Query("actorId"), 10, 64); err == nil {
		filter.ActorID = actorID
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.Limit = limit
	}
	entries, err := h.reports.ActivityLogs(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

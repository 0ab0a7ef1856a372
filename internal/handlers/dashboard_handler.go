package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lecture-service/internal/services"
	"github.com/SAP-F-2025/lecture-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetDashboardStats returns per-school statistics
// @Summary Get dashboard statistics
// @Description Faculty count, analyzed lectures and average score of every school
// @Tags dashboard
// @Produce json
// @Success 200 {array} models.SchoolStats
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard stats")

	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSchoolFaculty returns the faculty statistics of one school
// @Summary Get school faculty statistics
// @Tags dashboard
// @Produce json
// @Param schoolName path string true "School name"
// @Success 200 {array} models.FacultyStats
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /api/v1/dashboard/school/{schoolName} [get]
func (h *DashboardHandler) GetSchoolFaculty(c *gin.Context) {
	school := c.Param("schoolName")
	h.LogRequest(c, "Getting school faculty", "school", school)

	faculty, err := h.service.GetSchoolFaculty(c.Request.Context(), school)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, faculty)
}

// ExportSchoolFaculty downloads the faculty statistics of one school as a spreadsheet
// @Summary Export school faculty statistics
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param schoolName path string true "School name"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /api/v1/dashboard/school/{schoolName}/export [get]
func (h *DashboardHandler) ExportSchoolFaculty(c *gin.Context) {
	school := c.Param("schoolName")
	h.LogRequest(c, "Exporting school faculty", "school", school)

	// Buffered so that a failure can still be rendered as an error envelope
	var buf bytes.Buffer
	if err := h.service.ExportSchoolFaculty(c.Request.Context(), school, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(school)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func exportFilename(school string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(school), "_"), "_")
	if name == "" {
		name = "school"
	}
	return name + "_faculty.xlsx"
}

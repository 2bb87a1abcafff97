package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSCORE-2025/cscore-web/internal/auth"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TeacherHandler serves the teacher-facing submissions dashboard for an
// assignment, including the xlsx export.
type TeacherHandler struct {
	BaseHandler
	assignments services.AssignmentService
	exports     services.ExportService
}

func NewTeacherHandler(assignments services.AssignmentService, exports services.ExportService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: NewBaseHandler(logger),
		assignments: assignments,
		exports:     exports,
	}
}

func (h *TeacherHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/assignments/:assignmentId/submissions", h.ListSubmissions)
	rg.GET("/assignments/:assignmentId/submissions/export", h.ExportSubmissions)
}

func (h *TeacherHandler) ListSubmissions(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	submissions, err := h.assignments.ListSubmissions(c.Request.Context(), auth.TokenFrom(c), assignmentID)
	if err != nil {
		h.handleServiceError(c, err, "list submissions")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, submissions, "")
}

func (h *TeacherHandler) ExportSubmissions(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	buf, filename, err := h.exports.ExportSubmissions(c.Request.Context(), auth.TokenFrom(c), assignmentID)
	if err != nil {
		h.handleServiceError(c, err, "export submissions")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

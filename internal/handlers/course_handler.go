package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSCORE-2025/cscore-web/internal/auth"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

// CourseHandler serves course display metadata and the pre-attempt
// assignment detail view.
type CourseHandler struct {
	BaseHandler
	courses     services.CourseService
	assignments services.AssignmentService
}

func NewCourseHandler(courses services.CourseService, assignments services.AssignmentService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
		assignments: assignments,
	}
}

func (h *CourseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/courses", h.List)
	rg.GET("/courses/:courseId", h.Get)
	rg.GET("/assignments/:assignmentId", h.GetAssignment)
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), auth.TokenFrom(c))
	if err != nil {
		h.handleServiceError(c, err, "list courses")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, courses, "")
}

func (h *CourseHandler) Get(c *gin.Context) {
	user, ok := auth.UserFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}

	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	course, err := h.courses.Get(c.Request.Context(), auth.TokenFrom(c), user.ID, courseID)
	if err != nil {
		h.handleServiceError(c, err, "get course")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, course, "")
}

func (h *CourseHandler) GetAssignment(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.assignments.GetForStudent(c.Request.Context(), auth.TokenFrom(c), assignmentID)
	if err != nil {
		h.handleServiceError(c, err, "get assignment")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, assignment, "")
}

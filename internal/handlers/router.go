package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSCORE-2025/cscore-web/internal/auth"
	"github.com/CSCORE-2025/cscore-web/internal/models"
	"github.com/CSCORE-2025/cscore-web/internal/services"
	"github.com/CSCORE-2025/cscore-web/internal/utils"
)

// RouterConfig bundles everything the HTTP layer needs.
type RouterConfig struct {
	Environment string
	Verifier    auth.Verifier
	Logger      utils.Logger

	Attempts    services.AttemptService
	Courses     services.CourseService
	Assignments services.AssignmentService
	Exports     services.ExportService
}

func SetupRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(cfg.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(cfg.Verifier, cfg.Logger))
	{
		student := api.Group("")
		student.Use(auth.RequireRoles(models.RoleStudent, models.RoleTeacher, models.RoleAdmin))
		{
			NewCourseHandler(cfg.Courses, cfg.Assignments, cfg.Logger).RegisterRoutes(student)
		}

		attempts := api.Group("")
		attempts.Use(auth.RequireRoles(models.RoleStudent))
		{
			NewAttemptHandler(cfg.Attempts, cfg.Logger).RegisterRoutes(attempts)
		}

		teacher := api.Group("/teacher")
		teacher.Use(auth.RequireRoles(models.RoleTeacher, models.RoleAdmin))
		{
			NewTeacherHandler(cfg.Assignments, cfg.Exports, cfg.Logger).RegisterRoutes(teacher)
		}
	}

	return router
}

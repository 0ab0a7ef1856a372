package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lecture-service/internal/config"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/services"
	"github.com/SAP-F-2025/lecture-service/internal/utils"
)

const healthCheckTimeout = 2 * time.Second

type HandlerManager struct {
	authHandler      *AuthHandler
	lectureHandler   *LectureHandler
	profileHandler   *TeacherProfileHandler
	timetableHandler *TimetableHandler
	classHandler     *ClassHandler
	userHandler      *UserHandler
	dashboardHandler *DashboardHandler
	gate             *AuthGate
	health           func(ctx context.Context) error
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	cfg *config.Config,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		lectureHandler:   NewLectureHandler(serviceManager.Lecture(), cfg.Storage.MaxUploadBytes, logger),
		profileHandler:   NewTeacherProfileHandler(serviceManager.TeacherProfile(), logger),
		timetableHandler: NewTimetableHandler(serviceManager.Timetable(), logger),
		classHandler:     NewClassHandler(serviceManager.Class(), logger),
		userHandler:      NewUserHandler(serviceManager.UserManagement(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		gate:             NewAuthGate(serviceManager.Auth(), logger),
		health:           serviceManager.HealthCheck,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(hm.gate.Middleware())

	router.GET("/health", hm.healthCheck)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.GET("/sso/callback", hm.authHandler.SSOCallback)
	}

	elevated := RequireRole(models.RoleSuperAdmin, models.RoleAdmin)
	superAdmin := RequireRole(models.RoleSuperAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(RequireAuthenticated())
	{
		// Ownership and school scoping are applied per resource by the services
		lectures := v1.Group("/lectures")
		{
			lectures.POST("", RequireRole(models.RoleTeacher), hm.lectureHandler.CreateLecture)
			lectures.GET("/my-recent", hm.lectureHandler.ListMyRecent)
			lectures.GET("/teacher/:teacherId", hm.lectureHandler.ListByTeacher)
			lectures.GET("/class/:classId", hm.lectureHandler.ListByClass)
			lectures.GET("/:id", hm.lectureHandler.GetLecture)
			lectures.DELETE("/:id", hm.lectureHandler.DeleteLecture)
		}

		profiles := v1.Group("/teacher-profiles")
		{
			profiles.POST("", elevated, hm.profileHandler.Create)
			profiles.GET("", hm.profileHandler.List)
			profiles.GET("/me", hm.profileHandler.GetMine)
			profiles.GET("/:id", hm.profileHandler.Get)
			profiles.DELETE("/:id", elevated, hm.profileHandler.Delete)
		}

		timetables := v1.Group("/timetables")
		{
			timetables.GET("", hm.timetableHandler.List)
			timetables.GET("/me", hm.timetableHandler.GetMine)
			timetables.GET("/:id", hm.timetableHandler.Get)
		}

		classes := v1.Group("/classes")
		{
			classes.POST("", hm.classHandler.Create)
			classes.GET("", hm.classHandler.List)
			classes.GET("/:id", hm.classHandler.Get)
			classes.PUT("/:id", hm.classHandler.Update)
			classes.DELETE("/:id", hm.classHandler.Delete)
		}

		users := v1.Group("/users")
		{
			users.POST("", superAdmin, hm.userHandler.CreateUser)
			users.GET("", elevated, hm.userHandler.ListUsers)
			users.GET("/:id", elevated, hm.userHandler.GetUser)
			users.PUT("/:id", superAdmin, hm.userHandler.UpdateUser)
			users.DELETE("/:id", superAdmin, hm.userHandler.DeleteUser)
		}

		dashboard := v1.Group("/dashboard")
		dashboard.Use(elevated)
		{
			dashboard.GET("/stats", superAdmin, hm.dashboardHandler.GetDashboardStats)
			dashboard.GET("/school/:schoolName", hm.dashboardHandler.GetSchoolFaculty)
			dashboard.GET("/school/:schoolName/export", hm.dashboardHandler.ExportSchoolFaculty)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "Resource not found.", nil)
	})
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := hm.health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "lecture-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lecture-service",
	})
}

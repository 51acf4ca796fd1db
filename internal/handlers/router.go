package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolpulse/homework-service/internal/config"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/services"
	"github.com/schoolpulse/homework-service/internal/utils"
	"github.com/schoolpulse/homework-service/internal/validator"
)

type HandlerManager struct {
	homeworkHandler   *HomeworkHandler
	submissionHandler *SubmissionHandler
	dashboardHandler  *DashboardHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		homeworkHandler:   NewHomeworkHandler(serviceManager.Homework(), validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Report(), logger),
		userHandler:       NewUserHandler(userRepo, logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Homework routes
		homework := v1.Group("/homework")
		{
			// Upload questions - staff only
			homework.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.homeworkHandler.CreateHomework)
			homework.GET("/today", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.homeworkHandler.TodayUploads)
			homework.POST("/selection", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.homeworkHandler.UploadSelection)

			// Student's own pending homework
			homework.GET("/me", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.homeworkHandler.ListMyHomework)

			// View questions - all authenticated users
			homework.GET("", hm.homeworkHandler.ListHomeworkByClass)
			homework.GET("/:id", hm.homeworkHandler.GetHomework)
		}

		// Submission routes - students only
		submissions := v1.Group("/submissions")
		submissions.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			submissions.POST("", hm.submissionHandler.SubmitAnswer)
			submissions.GET("/graded", hm.submissionHandler.ListGradedAttempts)
			submissions.GET("/questions/:question_id/latest", hm.submissionHandler.GetLatestAttempt)
			submissions.GET("/questions/:question_id/previous", hm.submissionHandler.GetPreviousAttempt)
		}

		// Dashboard routes
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/me", hm.dashboardHandler.MyDashboard)
			dashboard.GET("/student", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.dashboardHandler.StudentDashboard)
			dashboard.GET("/teacher", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.dashboardHandler.TeacherDashboard)
			dashboard.GET("/principal", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.dashboardHandler.PrincipalDashboard)
			dashboard.GET("/admin", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.dashboardHandler.AdminDashboard)
			dashboard.GET("/report/export", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.dashboardHandler.ExportSchoolReport)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("/students", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.userHandler.ListStudentsByClass)
			users.GET("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.userHandler.GetUser)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "homework-service",
		})
	})
}

package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	attemptHandler    *AttemptHandler
	instructorHandler *InstructorHandler
	adminHandler      *AdminHandler
}

func NewHandlerManager(
	attemptService services.AttemptService,
	resultService services.ResultService,
	expirer services.AttemptExpirer,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:    NewAttemptHandler(attemptService, resultService, logger),
		instructorHandler: NewInstructorHandler(resultService, logger),
		adminHandler:      NewAdminHandler(expirer, logger),
	}
}

// SetupRoutes sets up all API routes. auth must set user_id and user_role.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1", auth)
	{
		// Student routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("/:quiz_id/attempts", hm.attemptHandler.StartAttempt)
			quizzes.GET("/:quiz_id/attempts", hm.attemptHandler.ListMyAttempts)
			quizzes.GET("/:quiz_id/questions", hm.attemptHandler.GetQuestionsForTaking)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.PUT("/:id/answers", hm.attemptHandler.SaveAnswer)
			attempts.PUT("/:id/questions/:question_id/flag", hm.attemptHandler.FlagQuestion)
			attempts.POST("/:id/pause", hm.attemptHandler.PauseAttempt)
			attempts.POST("/:id/resume", hm.attemptHandler.ResumeAttempt)
			attempts.GET("/:id/time-remaining", hm.attemptHandler.GetTimeRemaining)
			attempts.GET("/:id/result", hm.attemptHandler.GetResult)
		}

		// Instructor routes
		instructor := v1.Group("/instructor", RequireRole(models.RoleTeacher, models.RoleAdmin))
		{
			instructor.GET("/quizzes/:quiz_id/attempts", hm.instructorHandler.ListQuizAttempts)
			instructor.GET("/quizzes/:quiz_id/attempts/export", hm.instructorHandler.ExportQuizResults)
			instructor.GET("/attempts/:id", hm.instructorHandler.GetAttemptDetails)
			instructor.PUT("/attempts/:id/answers/:answer_id/review", hm.instructorHandler.ReviewAnswer)
		}

		// Admin routes
		admin := v1.Group("/admin", RequireRole(models.RoleAdmin))
		{
			admin.POST("/attempts/expire", hm.adminHandler.ExpireAttempts)
		}
	}
}

// HealthCheck reports that the process is serving
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}

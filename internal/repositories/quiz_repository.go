package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// QuizRepository reads quizzes and the course chain that owns them
type QuizRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	// GetWithCourse preloads Section and Section.Course. Either is nil when the
	// row is missing or soft-deleted.
	GetWithCourse(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
}

// EnrollmentRepository answers access questions for (user, course) pairs
type EnrollmentRepository interface {
	HasActiveEnrollment(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (bool, error)
}

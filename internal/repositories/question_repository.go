package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository is the read side of the question bank
type QuestionRepository interface {
	// GetByQuiz returns the questions placed in a quiz through live
	// quiz_questions rows, in display order, with options preloaded.
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)

	GetOptions(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Option, error)
}

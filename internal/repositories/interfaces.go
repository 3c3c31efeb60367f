package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	Status    *models.AttemptStatus `json:"status"`
	UserID    *string               `json:"user_id"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "started_at", "attempt_number", "score"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// ===== TRANSACTIONS =====

// TxManager runs fn inside a database transaction. Repository methods take the
// *gorm.DB handed to fn; a nil tx means "use the default connection".
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository groups every repository the service layer needs.
type Repository struct {
	Tx          TxManager
	Quizzes     QuizRepository
	Enrollments EnrollmentRepository
	Questions   QuestionRepository
	Attempts    AttemptRepository
	Answers     AnswerRepository
	Users       UserRepository
}

// IsNotFoundError reports whether err comes from a lookup that matched no row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

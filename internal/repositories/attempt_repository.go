package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository interface for quiz attempt operations
type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Attempt, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) // Include quiz chain, user, answers

	// Locking
	// Lock loads the attempt with SELECT ... FOR UPDATE whatever its owner.
	Lock(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error)
	// LockForUser loads the attempt with SELECT ... FOR UPDATE. Only meaningful inside a transaction.
	LockForUser(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Attempt, error)
	// AcquireStartLock serialises attempt creation for one (quiz, user) pair until tx ends.
	AcquireStartLock(ctx context.Context, tx *gorm.DB, quizID uint, userID string) error

	// Query operations
	CountByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (int64, error)
	GetMaxAttemptNumber(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (int, error)
	GetActiveAttempt(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (*models.Attempt, error) // nil when none
	ListByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID uint, userID string) ([]*models.Attempt, error)
	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters AttemptFilters) ([]*models.Attempt, int64, error)
	// GetTimedInProgress returns unfinished attempts whose quiz has a time limit, with Quiz preloaded.
	GetTimedInProgress(ctx context.Context, tx *gorm.DB) ([]*models.Attempt, error)

	// State changes
	Touch(ctx context.Context, tx *gorm.DB, id uint) error
	// Complete finalises an attempt only if it is still in progress and
	// reports whether this call did it.
	Complete(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) (bool, error)
	UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score int, isPassed bool) error
}

// AnswerRepository interface for attempt answer operations
type AnswerRepository interface {
	// Upsert inserts or replaces the answer for (attempt, question). The flag is kept.
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	UpsertMany(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error
	SetFlag(ctx context.Context, tx *gorm.DB, attemptID, questionID uint, flagged bool) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error)
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) // Question and options preloaded
	SumPoints(ctx context.Context, tx *gorm.DB, attemptID uint) (int, error)

	UpdateReview(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		helpers: NewSharedHelpers(db),
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) Lock(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDForUser(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Preload("Quiz").
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Preload("Quiz").
		Preload("Quiz.Section").
		Preload("Quiz.Section.Course").
		Preload("User").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Answers.Question").
		Preload("Answers.Question.Options", orderedOptions).
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) LockForUser(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) AcquireStartLock(ctx context.Context, tx *gorm.DB, quizID uint, userID string) error {
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?, hashtext(?))", int32(quizID), userID).Error
}

func (a *AttemptPostgreSQL) CountByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (int64, error) {
	db := a.helpers.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetMaxAttemptNumber looks at soft-deleted rows too so numbers are never reused.
func (a *AttemptPostgreSQL) GetMaxAttemptNumber(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (int, error) {
	db := a.helpers.getDB(tx)
	var maxNumber int
	if err := db.WithContext(ctx).
		Unscoped().
		Model(&models.Attempt{}).
		Select("COALESCE(MAX(attempt_number), 0)").
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Scan(&maxNumber).Error; err != nil {
		return 0, err
	}
	return maxNumber, nil
}

func (a *AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.Attempt
	if err := db.WithContext(ctx).
		Preload("Quiz").
		Where("quiz_id = ? AND user_id = ? AND completed_at IS NULL", quizID, userID).
		Order("started_at DESC").
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID uint, userID string) ([]*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempts []*models.Attempt
	if err := db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	db := a.helpers.getDB(tx)
	var attempts []*models.Attempt
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.Attempt{}).Where("quiz_id = ?", quizID)
	query = a.helpers.ApplyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("User").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetTimedInProgress(ctx context.Context, tx *gorm.DB) ([]*models.Attempt, error) {
	db := a.helpers.getDB(tx)
	var attempts []*models.Attempt
	if err := db.WithContext(ctx).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id AND quizzes.deleted_at IS NULL").
		Where("quiz_attempts.completed_at IS NULL AND quizzes.time_limit_minutes IS NOT NULL").
		Order("quiz_attempts.started_at ASC").
		Preload("Quiz").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) Touch(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).Model(&models.Attempt{}).Where("id = ?", id).Update("updated_at", time.Now()).Error
}

func (a *AttemptPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) (bool, error) {
	db := a.helpers.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND completed_at IS NULL", attempt.ID).
		Updates(map[string]interface{}{
			"score":          attempt.Score,
			"is_passed":      attempt.IsPassed,
			"completed_at":   attempt.CompletedAt,
			"auto_submitted": attempt.AutoSubmitted,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (a *AttemptPostgreSQL) UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score int, isPassed bool) error {
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":     score,
			"is_passed": isPassed,
		}).Error
}

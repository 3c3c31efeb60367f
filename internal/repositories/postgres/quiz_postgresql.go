package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.helpers.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetWithCourse(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.helpers.getDB(tx)
	var quiz models.Quiz
	if err := db.WithContext(ctx).
		Preload("Section").
		Preload("Section.Course").
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

type EnrollmentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (e *EnrollmentPostgreSQL) HasActiveEnrollment(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (bool, error) {
	db := e.helpers.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

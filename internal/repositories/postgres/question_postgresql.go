package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	helpers *SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{helpers: NewSharedHelpers(db)}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, id ASC")
}

func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	db := q.helpers.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Joins("JOIN quiz_questions qq ON qq.question_id = questions.id AND qq.deleted_at IS NULL").
		Where("qq.quiz_id = ?", quizID).
		Order("qq.display_order ASC, qq.id ASC").
		Preload("Options", orderedOptions).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	db := q.helpers.getDB(tx)
	var questions []*models.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Options", orderedOptions).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.helpers.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Preload("Options", orderedOptions).
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetOptions(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Option, error) {
	db := q.helpers.getDB(tx)
	var options []*models.Option
	if err := orderedOptions(db.WithContext(ctx)).
		Where("question_id = ?", questionID).
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}


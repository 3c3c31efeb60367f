package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerPostgreSQL struct {
	helpers *SharedHelpers
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{helpers: NewSharedHelpers(db)}
}

var answerConflict = []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}}

func (a *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	return a.UpsertMany(ctx, tx, []*models.Answer{answer})
}

func (a *AnswerPostgreSQL) UpsertMany(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: answerConflict,
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option_id", "answer_text", "is_correct", "points_earned", "updated_at", "deleted_at",
			}),
		}).
		Create(&answers).Error
}

func (a *AnswerPostgreSQL) SetFlag(ctx context.Context, tx *gorm.DB, attemptID, questionID uint, flagged bool) error {
	db := a.helpers.getDB(tx)
	answer := &models.Answer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		IsFlagged:  flagged,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: answerConflict,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_flagged": flagged,
				"updated_at": time.Now(),
			}),
		}).
		Create(answer).Error
}

func (a *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	db := a.helpers.getDB(tx)
	var answer models.Answer
	if err := db.WithContext(ctx).Preload("Question").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	db := a.helpers.getDB(tx)
	var answers []*models.Answer
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("id ASC").
		Preload("Question").
		Preload("Question.Options", orderedOptions).
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) SumPoints(ctx context.Context, tx *gorm.DB, attemptID uint) (int, error) {
	db := a.helpers.getDB(tx)
	var total int
	if err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("attempt_id = ?", attemptID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (a *AnswerPostgreSQL) UpdateReview(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id = ?", answer.ID).
		Updates(map[string]interface{}{
			"points_earned": answer.PointsEarned,
			"is_correct":    answer.IsCorrect,
			"feedback":      answer.Feedback,
			"reviewed_by":   answer.ReviewedBy,
			"reviewed_at":   answer.ReviewedAt,
		}).Error
}

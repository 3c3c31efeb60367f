package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer is one response to one question inside an attempt. Rows are unique
// per (attempt, question).
type Answer struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	AttemptID        uint    `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID       uint    `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	SelectedOptionID *uint   `json:"selected_option_id"`
	AnswerText       *string `json:"answer_text" gorm:"type:text"`
	IsCorrect        bool    `json:"is_correct" gorm:"default:false"`
	PointsEarned     int     `json:"points_earned" gorm:"default:0"`
	IsFlagged        bool    `json:"is_flagged" gorm:"default:false"`

	// Manual review
	ReviewedBy *string    `json:"reviewed_by" gorm:"size:255"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	Feedback   *string    `json:"feedback" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Answer) TableName() string {
	return "quiz_attempt_answers"
}

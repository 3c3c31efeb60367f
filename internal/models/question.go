package models

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Essay          QuestionType = "essay"
)

// DefaultQuestionPoints applies when a question has no point value.
const DefaultQuestionPoints = 1

type Question struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	CourseID      *uint        `json:"course_id" gorm:"index"` // nil for the general pool
	TextEn        string       `json:"text_en" gorm:"not null;type:text"`
	TextAr        string       `json:"text_ar" gorm:"type:text"`
	Type          QuestionType `json:"type" gorm:"not null;size:20"`
	Points        *int         `json:"points" gorm:"default:1"`
	ExplanationEn *string      `json:"explanation_en" gorm:"type:text"`
	ExplanationAr *string      `json:"explanation_ar" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	TextEn     string `json:"text_en" gorm:"not null;type:text"`
	TextAr     string `json:"text_ar" gorm:"type:text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	Order      int    `json:"order" gorm:"column:display_order;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "question_options"
}

func (q *Question) PointValue() int {
	if q.Points == nil {
		return DefaultQuestionPoints
	}
	return *q.Points
}

func (q *Question) HasOptions() bool {
	return q.Type == MultipleChoice || q.Type == TrueFalse
}

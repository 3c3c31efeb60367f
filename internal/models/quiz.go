package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultPassingScore applies when a quiz has no passing score of its own.
// It is compared against the raw point total, not a percentage.
const DefaultPassingScore = 60

type Quiz struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	SectionID     uint    `json:"section_id" gorm:"not null;index"`
	LessonID      *uint   `json:"lesson_id" gorm:"index"`
	TitleEn       string  `json:"title_en" gorm:"not null;size:200"`
	TitleAr       string  `json:"title_ar" gorm:"size:200"`
	DescriptionEn *string `json:"description_en" gorm:"type:text"`
	DescriptionAr *string `json:"description_ar" gorm:"type:text"`

	// Attempt rules
	TimeLimitMinutes *int `json:"time_limit_minutes"`
	MaxAttempts      *int `json:"max_attempts"`
	PassingScore     *int `json:"passing_score" gorm:"default:60"`

	// Display rules
	ShuffleQuestions   bool `json:"shuffle_questions" gorm:"default:false"`
	ShowCorrectAnswers bool `json:"show_correct_answers" gorm:"default:false"`

	// Availability window
	AvailableFrom  *time.Time `json:"available_from"`
	AvailableUntil *time.Time `json:"available_until"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Section   *Section       `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// QuizQuestion places a Question into a Quiz. Removing it from the quiz
// soft-deletes this row only.
type QuizQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	QuizID     uint `json:"quiz_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`
	Order      int  `json:"order" gorm:"column:display_order;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (q *Quiz) EffectivePassingScore() int {
	if q.PassingScore == nil {
		return DefaultPassingScore
	}
	return *q.PassingScore
}

// IsTimed reports whether the quiz has a time limit. A zero limit is a
// limit: attempts on it are expired as soon as they start.
func (q *Quiz) IsTimed() bool {
	return q.TimeLimitMinutes != nil
}

// IsAvailableAt reports whether now falls inside the quiz availability window.
// Open ends of the window are unbounded.
func (q *Quiz) IsAvailableAt(now time.Time) bool {
	if q.AvailableFrom != nil && now.Before(*q.AvailableFrom) {
		return false
	}
	if q.AvailableUntil != nil && now.After(*q.AvailableUntil) {
		return false
	}
	return true
}

// Deadline returns when an attempt started at startedAt runs out of time,
// or nil for untimed quizzes.
func (q *Quiz) Deadline(startedAt time.Time) *time.Time {
	if !q.IsTimed() {
		return nil
	}
	deadline := startedAt.Add(time.Duration(*q.TimeLimitMinutes) * time.Minute)
	return &deadline
}

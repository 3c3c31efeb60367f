package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

type Attempt struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	QuizID        uint       `json:"quiz_id" gorm:"not null;index:idx_attempt_quiz_user"`
	UserID        string     `json:"user_id" gorm:"not null;index:idx_attempt_quiz_user;size:255"`
	AttemptNumber int        `json:"attempt_number" gorm:"not null"`
	Score         *int       `json:"score"`
	MaxScore      int        `json:"max_score" gorm:"not null;default:0"`
	IsPassed      bool       `json:"is_passed" gorm:"default:false"`
	StartedAt     time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt   *time.Time `json:"completed_at" gorm:"index"`
	AutoSubmitted bool       `json:"auto_submitted" gorm:"default:false"`

	// Question ids in the order they were presented for this attempt
	QuestionOrder datatypes.JSON `json:"-" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Quiz    *Quiz    `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

func (Attempt) TableName() string {
	return "quiz_attempts"
}

func (a *Attempt) Status() AttemptStatus {
	if a.CompletedAt == nil {
		return AttemptInProgress
	}
	return AttemptCompleted
}

func (a *Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

func (a *Attempt) QuestionIDs() ([]uint, error) {
	if len(a.QuestionOrder) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(a.QuestionOrder, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (a *Attempt) SetQuestionIDs(ids []uint) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	a.QuestionOrder = datatypes.JSON(data)
	return nil
}

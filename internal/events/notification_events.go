package events

import (
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/google/uuid"
)

const (
	eventSource  = "quiz-service"
	eventVersion = "1.0"
)

// EventType represents different types of notification events
type EventType string

const (
	// Attempt events
	EventAttemptStarted       EventType = "attempt.started"
	EventAttemptSubmitted     EventType = "attempt.submitted"
	EventAttemptAutoSubmitted EventType = "attempt.auto_submitted"
	EventAttemptReviewed      EventType = "attempt.reviewed"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Subject   models.EntityRef       `json:"subject"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Attempt notification event payloads

type AttemptStartedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	QuizID        uint      `json:"quiz_id"`
	QuizTitle     string    `json:"quiz_title"`
	UserID        string    `json:"user_id"`
	AttemptNumber int       `json:"attempt_number"`
	StartedAt     time.Time `json:"started_at"`
	TimeLimit     *int      `json:"time_limit,omitempty"` // minutes
}

type AttemptSubmittedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	QuizID        uint      `json:"quiz_id"`
	UserID        string    `json:"user_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"max_score"`
	Passed        bool      `json:"passed"`
	AutoSubmitted bool      `json:"auto_submitted"`
}

type AttemptReviewedEvent struct {
	AttemptID  uint      `json:"attempt_id"`
	AnswerID   uint      `json:"answer_id"`
	QuizID     uint      `json:"quiz_id"`
	UserID     string    `json:"user_id"`
	ReviewerID string    `json:"reviewer_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
	Score      int       `json:"score"`
	Passed     bool      `json:"passed"`
}

// Event factory functions

func newEvent(eventType EventType, subject models.EntityRef, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Subject:   subject,
		Data:      data,
	}
}

func NewAttemptStartedEvent(attempt *models.Attempt, quiz *models.Quiz) *NotificationEvent {
	return newEvent(EventAttemptStarted, models.RefAttempt(attempt.ID), AttemptStartedEvent{
		AttemptID:     attempt.ID,
		QuizID:        quiz.ID,
		QuizTitle:     quiz.TitleEn,
		UserID:        attempt.UserID,
		AttemptNumber: attempt.AttemptNumber,
		StartedAt:     attempt.StartedAt,
		TimeLimit:     quiz.TimeLimitMinutes,
	})
}

// NewAttemptSubmittedEvent builds attempt.submitted, or attempt.auto_submitted
// when the sweeper closed the attempt.
func NewAttemptSubmittedEvent(attempt *models.Attempt) *NotificationEvent {
	eventType := EventAttemptSubmitted
	if attempt.AutoSubmitted {
		eventType = EventAttemptAutoSubmitted
	}

	payload := AttemptSubmittedEvent{
		AttemptID:     attempt.ID,
		QuizID:        attempt.QuizID,
		UserID:        attempt.UserID,
		MaxScore:      attempt.MaxScore,
		Passed:        attempt.IsPassed,
		AutoSubmitted: attempt.AutoSubmitted,
	}
	if attempt.Score != nil {
		payload.Score = *attempt.Score
	}
	if attempt.CompletedAt != nil {
		payload.SubmittedAt = *attempt.CompletedAt
	}

	return newEvent(eventType, models.RefAttempt(attempt.ID), payload)
}

func NewAttemptReviewedEvent(attempt *models.Attempt, answer *models.Answer, reviewerID string) *NotificationEvent {
	payload := AttemptReviewedEvent{
		AttemptID:  attempt.ID,
		AnswerID:   answer.ID,
		QuizID:     attempt.QuizID,
		UserID:     attempt.UserID,
		ReviewerID: reviewerID,
		Passed:     attempt.IsPassed,
	}
	if attempt.Score != nil {
		payload.Score = *attempt.Score
	}
	if answer.ReviewedAt != nil {
		payload.ReviewedAt = *answer.ReviewedAt
	}

	return newEvent(EventAttemptReviewed, models.RefAnswer(answer.ID), payload)
}

// GenerateEventID returns a random event id
func GenerateEventID() string {
	return uuid.NewString()
}

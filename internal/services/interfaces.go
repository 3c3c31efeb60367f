package services

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// QuestionStore is the read accessor over quiz questions and their options
type QuestionStore interface {
	GetQuizQuestions(ctx context.Context, quizID uint) ([]*models.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []uint) (map[uint]*models.Question, error)
	GetOptions(ctx context.Context, questionID uint, includeCorrectness bool) ([]OptionView, error)
	GetQuestionPoints(ctx context.Context, questionID uint) (int, error)
}

// EnrollmentService decides who may take a quiz and who may review it
type EnrollmentService interface {
	CheckEnrollment(ctx context.Context, quizID uint, userID string) (*QuizContext, error)
	CheckInstructor(ctx context.Context, quizID uint, instructorID string, role models.UserRole) (*QuizContext, error)
}

// AttemptService drives an attempt from start to submission
type AttemptService interface {
	StartAttempt(ctx context.Context, quizID uint, userID string) (*StartAttemptResponse, error)
	GetQuestionsForTaking(ctx context.Context, quizID uint, userID string) (*QuestionsForTakingResponse, error)
	SubmitAttempt(ctx context.Context, attemptID uint, userID string, req *SubmitAttemptRequest) (*SubmitAttemptResponse, error)
	SaveAnswer(ctx context.Context, attemptID uint, userID string, req *AnswerInput) (*SaveAnswerResponse, error)
	FlagForReview(ctx context.Context, attemptID uint, userID string, questionID uint, flagged bool) error
	PauseAttempt(ctx context.Context, attemptID uint, userID string) error
	ResumeAttempt(ctx context.Context, attemptID uint, userID string) error
	GetTimeRemaining(ctx context.Context, attemptID uint, userID string) (*TimeRemainingResponse, error)
	ListMyAttempts(ctx context.Context, quizID uint, userID string) ([]AttemptSummary, error)
}

// ResultService shapes finished attempts for students and instructors
type ResultService interface {
	GetStudentResult(ctx context.Context, attemptID uint, userID string) (*StudentResult, error)
	GetInstructorAttemptDetails(ctx context.Context, attemptID uint, instructorID string, role models.UserRole) (*InstructorAttemptDetails, error)
	ListQuizAttempts(ctx context.Context, quizID uint, instructorID string, role models.UserRole, query *ListAttemptsQuery) (*AttemptListResponse, error)
	ReviewAnswer(ctx context.Context, attemptID, answerID uint, instructorID string, role models.UserRole, req *ReviewAnswerRequest) (*AnswerView, error)
	ExportQuizResults(ctx context.Context, quizID uint, instructorID string, role models.UserRole) ([]byte, error)
}

// AttemptExpirer finalises attempts that ran out of time
type AttemptExpirer interface {
	AutoSubmitExpired(ctx context.Context) (int, error)
}

package services

import (
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// ===== REQUESTS =====

type AnswerInput struct {
	QuestionID       uint    `json:"question_id" validate:"required"`
	SelectedOptionID *uint   `json:"selected_option_id"`
	AnswerText       *string `json:"answer_text" validate:"omitempty,max=10000"`
}

type SubmitAttemptRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

type FlagRequest struct {
	Flagged *bool `json:"flagged" validate:"required"`
}

type ReviewAnswerRequest struct {
	PointsEarned *int    `json:"points_earned" validate:"required,gte=0"`
	IsCorrect    *bool   `json:"is_correct"`
	Feedback     *string `json:"feedback" validate:"omitempty,max=2000"`
}

type ListAttemptsQuery struct {
	Status    string `form:"status" validate:"attempt_status"`
	UserID    string `form:"user_id"`
	Limit     int    `form:"limit" validate:"gte=0,lte=100"`
	Offset    int    `form:"offset" validate:"gte=0"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=started_at completed_at attempt_number score"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// ===== VIEWS =====

type QuizSummary struct {
	ID               uint   `json:"id"`
	TitleEn          string `json:"title_en"`
	TitleAr          string `json:"title_ar"`
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
	ShuffleQuestions bool   `json:"shuffle_questions"`
}

type OptionView struct {
	ID        uint   `json:"id"`
	TextEn    string `json:"text_en"`
	TextAr    string `json:"text_ar"`
	Order     int    `json:"order"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type QuestionView struct {
	ID               uint                `json:"id"`
	TextEn           string              `json:"text_en"`
	TextAr           string              `json:"text_ar"`
	Type             models.QuestionType `json:"type"`
	Points           int                 `json:"points"`
	Options          []OptionView        `json:"options"`
	SelectedOptionID *uint               `json:"selected_option_id,omitempty"`
	AnswerText       *string             `json:"answer_text,omitempty"`
	IsFlagged        bool                `json:"is_flagged"`
}

type AttemptSummary struct {
	ID            uint                 `json:"id"`
	QuizID        uint                 `json:"quiz_id"`
	UserID        string               `json:"user_id"`
	AttemptNumber int                  `json:"attempt_number"`
	Status        models.AttemptStatus `json:"status"`
	Score         *int                 `json:"score"`
	MaxScore      int                  `json:"max_score"`
	IsPassed      bool                 `json:"is_passed"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   *time.Time           `json:"completed_at"`
	AutoSubmitted bool                 `json:"auto_submitted"`
}

// AnswerView is one answer as shown in a result. Correctness fields are nil
// when the viewer may not see them.
type AnswerView struct {
	ID               uint                `json:"id"`
	QuestionID       uint                `json:"question_id"`
	QuestionTextEn   string              `json:"question_text_en"`
	QuestionTextAr   string              `json:"question_text_ar"`
	QuestionType     models.QuestionType `json:"question_type"`
	Points           int                 `json:"points"`
	SelectedOptionID *uint               `json:"selected_option_id"`
	AnswerText       *string             `json:"answer_text"`
	IsFlagged        bool                `json:"is_flagged"`
	IsCorrect        *bool               `json:"is_correct,omitempty"`
	PointsEarned     *int                `json:"points_earned,omitempty"`
	Feedback         *string             `json:"feedback,omitempty"`
	ReviewedAt       *time.Time          `json:"reviewed_at,omitempty"`
	ExplanationEn    *string             `json:"explanation_en,omitempty"`
	ExplanationAr    *string             `json:"explanation_ar,omitempty"`
	Options          []OptionView        `json:"options,omitempty"`
}

type UserView struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ===== RESPONSES =====

type StartAttemptResponse struct {
	AttemptID     uint        `json:"attempt_id"`
	Quiz          QuizSummary `json:"quiz"`
	AttemptNumber int         `json:"attempt_number"`
	StartedAt     time.Time   `json:"started_at"`
}

type QuestionsForTakingResponse struct {
	AttemptID uint           `json:"attempt_id"`
	QuizID    uint           `json:"quiz_id"`
	StartedAt time.Time      `json:"started_at"`
	Deadline  *time.Time     `json:"deadline"`
	Questions []QuestionView `json:"questions"`
}

type SubmitAttemptResponse struct {
	AttemptID    uint `json:"attempt_id"`
	Score        int  `json:"score"`
	MaxScore     int  `json:"max_score"`
	IsPassed     bool `json:"is_passed"`
	PassingScore int  `json:"passing_score"`
}

type SaveAnswerResponse struct {
	AttemptID  uint      `json:"attempt_id"`
	QuestionID uint      `json:"question_id"`
	SavedAt    time.Time `json:"saved_at"`
}

type TimeRemainingResponse struct {
	AttemptID        uint       `json:"attempt_id"`
	TimeLimitMinutes *int       `json:"time_limit_minutes"`
	Deadline         *time.Time `json:"deadline"`
	RemainingSeconds *int       `json:"remaining_seconds"`
	Expired          bool       `json:"expired"`
	Completed        bool       `json:"completed"`
}

type StudentResult struct {
	Attempt            AttemptSummary `json:"attempt"`
	QuizTitleEn        string         `json:"quiz_title_en"`
	QuizTitleAr        string         `json:"quiz_title_ar"`
	PassingScore       int            `json:"passing_score"`
	ShowCorrectAnswers bool           `json:"show_correct_answers"`
	Answers            []AnswerView   `json:"answers"`
}

type InstructorAttemptDetails struct {
	Attempt      AttemptSummary `json:"attempt"`
	QuizTitleEn  string         `json:"quiz_title_en"`
	QuizTitleAr  string         `json:"quiz_title_ar"`
	PassingScore int            `json:"passing_score"`
	Student      *UserView      `json:"student"`
	Answers      []AnswerView   `json:"answers"`
}

type InstructorAttemptRow struct {
	AttemptSummary
	Student *UserView `json:"student"`
}

type AttemptListResponse struct {
	Attempts []InstructorAttemptRow `json:"attempts"`
	Total    int64                  `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

// QuizContext is a quiz together with the course that owns it
type QuizContext struct {
	Quiz   *models.Quiz
	Course *models.Course
}

// ===== MAPPERS =====

func toQuizSummary(quiz *models.Quiz) QuizSummary {
	return QuizSummary{
		ID:               quiz.ID,
		TitleEn:          quiz.TitleEn,
		TitleAr:          quiz.TitleAr,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		ShuffleQuestions: quiz.ShuffleQuestions,
	}
}

func toAttemptSummary(attempt *models.Attempt) AttemptSummary {
	return AttemptSummary{
		ID:            attempt.ID,
		QuizID:        attempt.QuizID,
		UserID:        attempt.UserID,
		AttemptNumber: attempt.AttemptNumber,
		Status:        attempt.Status(),
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		IsPassed:      attempt.IsPassed,
		StartedAt:     attempt.StartedAt,
		CompletedAt:   attempt.CompletedAt,
		AutoSubmitted: attempt.AutoSubmitted,
	}
}

func toUserView(user *models.User) *UserView {
	if user == nil {
		return nil
	}
	return &UserView{ID: user.ID, FullName: user.FullName, Email: user.Email}
}

func toOptionViews(options []models.Option, includeCorrectness bool) []OptionView {
	views := make([]OptionView, 0, len(options))
	for _, option := range options {
		view := OptionView{
			ID:     option.ID,
			TextEn: option.TextEn,
			TextAr: option.TextAr,
			Order:  option.Order,
		}
		if includeCorrectness {
			isCorrect := option.IsCorrect
			view.IsCorrect = &isCorrect
		}
		views = append(views, view)
	}
	return views
}

// toAnswerView maps an answer row. reveal controls correctness, points,
// explanations and the option list.
func toAnswerView(answer *models.Answer, reveal bool) AnswerView {
	view := AnswerView{
		ID:               answer.ID,
		QuestionID:       answer.QuestionID,
		SelectedOptionID: answer.SelectedOptionID,
		AnswerText:       answer.AnswerText,
		IsFlagged:        answer.IsFlagged,
		Feedback:         answer.Feedback,
		ReviewedAt:       answer.ReviewedAt,
	}
	if q := answer.Question; q != nil {
		view.QuestionTextEn = q.TextEn
		view.QuestionTextAr = q.TextAr
		view.QuestionType = q.Type
		view.Points = q.PointValue()
	}
	if !reveal {
		return view
	}

	isCorrect := answer.IsCorrect
	points := answer.PointsEarned
	view.IsCorrect = &isCorrect
	view.PointsEarned = &points
	if q := answer.Question; q != nil {
		view.ExplanationEn = q.ExplanationEn
		view.ExplanationAr = q.ExplanationAr
		view.Options = toOptionViews(q.Options, true)
	}
	return view
}

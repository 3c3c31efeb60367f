package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"gorm.io/gorm"
)

const defaultAttemptPageSize = 20

type resultService struct {
	repo       *repositories.Repository
	enrollment EnrollmentService
	questions  QuestionStore
	notifier   AttemptNotifier
	cache      cache.CacheService
	cacheTTL   time.Duration
	validator  *validator.Validator
	logger     *slog.Logger
	opLogger   *ServiceLogger
	now        Clock
}

type ResultServiceOption func(*resultService)

// WithResultClock replaces time.Now for review timestamps
func WithResultClock(clock Clock) ResultServiceOption {
	return func(s *resultService) { s.now = clock }
}

func NewResultService(
	repo *repositories.Repository,
	enrollment EnrollmentService,
	questions QuestionStore,
	notifier AttemptNotifier,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	validator *validator.Validator,
	logger *slog.Logger,
	opts ...ResultServiceOption,
) ResultService {
	s := &resultService{
		repo:       repo,
		enrollment: enrollment,
		questions:  questions,
		notifier:   notifier,
		cache:      cacheService,
		cacheTTL:   cacheTTL,
		validator:  validator,
		logger:     logger,
		opLogger:   NewServiceLogger(logger, LogConfig{Service: "quiz-service", Component: "result"}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func resultCacheKey(attemptID uint) string {
	return fmt.Sprintf("result:attempt:%d", attemptID)
}

// GetStudentResult returns the caller's own attempt. Option correctness,
// explanations and per-answer points are included only for completed
// attempts of quizzes that show correct answers.
func (s *resultService) GetStudentResult(ctx context.Context, attemptID uint, userID string) (*StudentResult, error) {
	key := resultCacheKey(attemptID)
	var cached StudentResult
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if cached.Attempt.UserID == userID {
			return &cached, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Result cache read failed", "attempt_id", attemptID, "error", err)
	}

	attempt, err := s.repo.Attempts.GetByIDForUser(ctx, nil, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	quiz := attempt.Quiz
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	answers, err := s.repo.Answers.GetByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	reveal := quiz.ShowCorrectAnswers && attempt.IsCompleted()
	result := &StudentResult{
		Attempt:            toAttemptSummary(attempt),
		QuizTitleEn:        quiz.TitleEn,
		QuizTitleAr:        quiz.TitleAr,
		PassingScore:       quiz.EffectivePassingScore(),
		ShowCorrectAnswers: reveal,
		Answers:            make([]AnswerView, 0, len(answers)),
	}
	for _, answer := range answers {
		result.Answers = append(result.Answers, toAnswerView(answer, reveal))
	}

	if attempt.IsCompleted() {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("Result cache write failed", "attempt_id", attemptID, "error", err)
		}
	}
	return result, nil
}

// GetInstructorAttemptDetails always includes correctness, whatever the
// quiz's student-facing setting.
func (s *resultService) GetInstructorAttemptDetails(ctx context.Context, attemptID uint, instructorID string, role models.UserRole) (*InstructorAttemptDetails, error) {
	attempt, err := s.repo.Attempts.GetByIDWithDetails(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	course := courseOf(attempt.Quiz)
	if course == nil {
		return nil, ErrQuizNotFound
	}
	if err := ensureInstructor(course, attempt.QuizID, instructorID, role); err != nil {
		return nil, err
	}

	details := &InstructorAttemptDetails{
		Attempt:      toAttemptSummary(attempt),
		QuizTitleEn:  attempt.Quiz.TitleEn,
		QuizTitleAr:  attempt.Quiz.TitleAr,
		PassingScore: attempt.Quiz.EffectivePassingScore(),
		Student:      toUserView(attempt.User),
		Answers:      make([]AnswerView, 0, len(attempt.Answers)),
	}
	if details.Student == nil {
		details.Student = &UserView{ID: attempt.UserID}
	}
	for i := range attempt.Answers {
		details.Answers = append(details.Answers, toAnswerView(&attempt.Answers[i], true))
	}
	return details, nil
}

func (s *resultService) ListQuizAttempts(ctx context.Context, quizID uint, instructorID string, role models.UserRole, query *ListAttemptsQuery) (*AttemptListResponse, error) {
	if query == nil {
		query = &ListAttemptsQuery{}
	}
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}
	if _, err := s.enrollment.CheckInstructor(ctx, quizID, instructorID, role); err != nil {
		return nil, err
	}

	filters := repositories.AttemptFilters{
		Limit:     query.Limit,
		Offset:    query.Offset,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if filters.Limit == 0 {
		filters.Limit = defaultAttemptPageSize
	}
	if query.Status != "" {
		status := models.AttemptStatus(query.Status)
		filters.Status = &status
	}
	if query.UserID != "" {
		filters.UserID = &query.UserID
	}

	attempts, total, err := s.repo.Attempts.ListByQuiz(ctx, nil, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	rows := make([]InstructorAttemptRow, 0, len(attempts))
	for _, attempt := range attempts {
		row := InstructorAttemptRow{AttemptSummary: toAttemptSummary(attempt), Student: toUserView(attempt.User)}
		if row.Student == nil {
			row.Student = &UserView{ID: attempt.UserID}
		}
		rows = append(rows, row)
	}

	return &AttemptListResponse{
		Attempts: rows,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

// ReviewAnswer grades one answer by hand, typically an essay, and rescores the attempt
func (s *resultService) ReviewAnswer(ctx context.Context, attemptID, answerID uint, instructorID string, role models.UserRole, req *ReviewAnswerRequest) (view *AnswerView, err error) {
	began := time.Now()
	defer func() { s.opLogger.LogOperation(ctx, "review_answer", instructorID, answerID, "answer", time.Since(began), err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	var attempt *models.Attempt
	var answer *models.Answer
	err = s.repo.Tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		// Concurrent reviews of one attempt must not sum each other's stale rows
		attempt, err = s.repo.Attempts.Lock(ctx, tx, attemptID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAttemptNotFound
			}
			return fmt.Errorf("failed to lock attempt: %w", err)
		}

		quiz, err := s.repo.Quizzes.GetWithCourse(ctx, tx, attempt.QuizID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("failed to get quiz: %w", err)
		}
		course := courseOf(quiz)
		if course == nil {
			return ErrQuizNotFound
		}
		if err := ensureInstructor(course, quiz.ID, instructorID, role); err != nil {
			return err
		}
		if !attempt.IsCompleted() {
			return ErrAttemptNotCompleted
		}

		answer, err = s.repo.Answers.GetByID(ctx, tx, answerID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("failed to get answer: %w", err)
		}
		if answer.AttemptID != attempt.ID {
			return ErrAnswerNotFound
		}

		maxPoints, err := s.answerPointValue(ctx, answer)
		if err != nil {
			return err
		}
		if *req.PointsEarned > maxPoints {
			return NewBusinessRuleError("review_points", ErrInvalidPoints, map[string]interface{}{
				"max_points":    maxPoints,
				"points_earned": *req.PointsEarned,
			})
		}

		reviewedAt := s.now()
		answer.PointsEarned = *req.PointsEarned
		answer.IsCorrect = maxPoints > 0 && *req.PointsEarned == maxPoints
		if req.IsCorrect != nil {
			answer.IsCorrect = *req.IsCorrect
		}
		answer.Feedback = req.Feedback
		answer.ReviewedBy = &instructorID
		answer.ReviewedAt = &reviewedAt
		if err := s.repo.Answers.UpdateReview(ctx, tx, answer); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		total, err := s.repo.Answers.SumPoints(ctx, tx, attempt.ID)
		if err != nil {
			return fmt.Errorf("failed to sum answer points: %w", err)
		}
		attempt.Score = &total
		attempt.IsPassed = total >= quiz.EffectivePassingScore()
		if err := s.repo.Attempts.UpdateScore(ctx, tx, attempt.ID, total, attempt.IsPassed); err != nil {
			return fmt.Errorf("failed to update attempt score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, resultCacheKey(attemptID)); err != nil {
		s.logger.Warn("Result cache invalidation failed", "attempt_id", attemptID, "error", err)
	}
	s.notifier.NotifyAttemptReviewed(ctx, attempt, answer, instructorID)

	reviewed := toAnswerView(answer, true)
	return &reviewed, nil
}

func (s *resultService) answerPointValue(ctx context.Context, answer *models.Answer) (int, error) {
	if answer.Question != nil {
		return answer.Question.PointValue(), nil
	}
	return s.questions.GetQuestionPoints(ctx, answer.QuestionID)
}

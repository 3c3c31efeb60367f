package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"gorm.io/gorm"
)

type attemptService struct {
	repo       *repositories.Repository
	enrollment EnrollmentService
	questions  QuestionStore
	notifier   AttemptNotifier
	validator  *validator.Validator
	logger     *slog.Logger
	opLogger   *ServiceLogger
	now        Clock
	shuffle    func([]uint)
}

type AttemptServiceOption func(*attemptService)

// WithAttemptClock replaces time.Now
func WithAttemptClock(clock Clock) AttemptServiceOption {
	return func(s *attemptService) { s.now = clock }
}

// WithShuffler replaces the question order shuffler
func WithShuffler(shuffle func([]uint)) AttemptServiceOption {
	return func(s *attemptService) { s.shuffle = shuffle }
}

func NewAttemptService(
	repo *repositories.Repository,
	enrollment EnrollmentService,
	questions QuestionStore,
	notifier AttemptNotifier,
	validator *validator.Validator,
	logger *slog.Logger,
	opts ...AttemptServiceOption,
) AttemptService {
	s := &attemptService{
		repo:       repo,
		enrollment: enrollment,
		questions:  questions,
		notifier:   notifier,
		validator:  validator,
		logger:     logger,
		opLogger:   NewServiceLogger(logger, LogConfig{Service: "quiz-service", Component: "attempt"}),
		now:        time.Now,
		shuffle:    shuffleIDs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) StartAttempt(ctx context.Context, quizID uint, userID string) (resp *StartAttemptResponse, err error) {
	began := time.Now()
	defer func() { s.opLogger.LogOperation(ctx, "start_attempt", userID, quizID, "quiz", time.Since(began), err) }()

	qc, err := s.enrollment.CheckEnrollment(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	quiz := qc.Quiz

	now := s.now()
	if !quiz.IsAvailableAt(now) {
		return nil, ErrQuizNotAvailable
	}

	questions, err := s.questions.GetQuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	order := questionIDs(questions)
	if quiz.ShuffleQuestions {
		s.shuffle(order)
	}

	attempt := &models.Attempt{
		QuizID:    quizID,
		UserID:    userID,
		MaxScore:  sumPoints(questions),
		StartedAt: now,
	}
	if err = attempt.SetQuestionIDs(order); err != nil {
		return nil, fmt.Errorf("failed to encode question order: %w", err)
	}

	var expired *models.Attempt
	err = s.repo.Tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Attempts.AcquireStartLock(ctx, tx, quizID, userID); err != nil {
			return fmt.Errorf("failed to lock attempt creation: %w", err)
		}

		if quiz.MaxAttempts != nil {
			count, err := s.repo.Attempts.CountByQuizAndUser(ctx, tx, quizID, userID)
			if err != nil {
				return fmt.Errorf("failed to count attempts: %w", err)
			}
			if count >= int64(*quiz.MaxAttempts) {
				return NewBusinessRuleError("max_attempts", ErrMaxAttemptsReached, map[string]interface{}{
					"max_attempts":  *quiz.MaxAttempts,
					"attempts_used": count,
				})
			}
		}

		active, err := s.repo.Attempts.GetActiveAttempt(ctx, tx, quizID, userID)
		if err != nil {
			return fmt.Errorf("failed to get active attempt: %w", err)
		}
		if active != nil {
			if !isExpired(active, quiz, now) {
				return ErrAttemptInProgress
			}
			// The sweeper has not reached it yet; close it before opening a new one
			open, err := lockOpenAttempt(ctx, s.repo, tx, active.ID)
			if err != nil {
				return err
			}
			if open {
				done, err := finalizeAttempt(ctx, s.repo, tx, active, quiz, now, true)
				if err != nil {
					return err
				}
				if done {
					expired = active
				}
			}
		}

		lastNumber, err := s.repo.Attempts.GetMaxAttemptNumber(ctx, tx, quizID, userID)
		if err != nil {
			return fmt.Errorf("failed to get attempt number: %w", err)
		}
		attempt.AttemptNumber = lastNumber + 1

		if err := s.repo.Attempts.Create(ctx, tx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired != nil {
		s.notifier.NotifyAttemptSubmitted(ctx, expired)
	}
	s.notifier.NotifyAttemptStarted(ctx, attempt, quiz)

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"user_id", userID,
		"attempt_number", attempt.AttemptNumber)

	return &StartAttemptResponse{
		AttemptID:     attempt.ID,
		Quiz:          toQuizSummary(quiz),
		AttemptNumber: attempt.AttemptNumber,
		StartedAt:     attempt.StartedAt,
	}, nil
}

func (s *attemptService) GetQuestionsForTaking(ctx context.Context, quizID uint, userID string) (*QuestionsForTakingResponse, error) {
	attempt, err := s.repo.Attempts.GetActiveAttempt(ctx, nil, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}
	if attempt == nil || attempt.Quiz == nil {
		return nil, ErrNoActiveAttempt
	}
	if isExpired(attempt, attempt.Quiz, s.now()) {
		return nil, ErrAttemptExpired
	}

	order, err := attemptQuestionOrder(attempt)
	if err != nil {
		return nil, err
	}
	byID, err := s.questions.GetQuestionsByIDs(ctx, order)
	if err != nil {
		return nil, err
	}

	drafts, err := s.repo.Answers.GetByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved answers: %w", err)
	}
	draftByQuestion := make(map[uint]*models.Answer, len(drafts))
	for _, draft := range drafts {
		draftByQuestion[draft.QuestionID] = draft
	}

	views := make([]QuestionView, 0, len(order))
	for _, id := range order {
		question, ok := byID[id]
		if !ok {
			continue // removed from the bank after the attempt started
		}
		view := QuestionView{
			ID:      question.ID,
			TextEn:  question.TextEn,
			TextAr:  question.TextAr,
			Type:    question.Type,
			Points:  question.PointValue(),
			Options: toOptionViews(question.Options, false),
		}
		if draft, ok := draftByQuestion[id]; ok {
			view.SelectedOptionID = draft.SelectedOptionID
			view.AnswerText = draft.AnswerText
			view.IsFlagged = draft.IsFlagged
		}
		views = append(views, view)
	}

	return &QuestionsForTakingResponse{
		AttemptID: attempt.ID,
		QuizID:    quizID,
		StartedAt: attempt.StartedAt,
		Deadline:  attempt.Quiz.Deadline(attempt.StartedAt),
		Questions: views,
	}, nil
}

func (s *attemptService) SubmitAttempt(ctx context.Context, attemptID uint, userID string, req *SubmitAttemptRequest) (resp *SubmitAttemptResponse, err error) {
	began := time.Now()
	defer func() { s.opLogger.LogOperation(ctx, "submit_attempt", userID, attemptID, "attempt", time.Since(began), err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	var attempt *models.Attempt
	var quiz *models.Quiz
	err = s.repo.Tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		attempt, quiz, err = s.lockInProgress(ctx, tx, attemptID, userID)
		if err != nil {
			return err
		}

		answers, err := s.scoreAnswers(ctx, attempt, req.Answers)
		if err != nil {
			return err
		}
		if err := s.repo.Answers.UpsertMany(ctx, tx, answers); err != nil {
			return fmt.Errorf("failed to save answers: %w", err)
		}

		done, err := finalizeAttempt(ctx, s.repo, tx, attempt, quiz, s.now(), false)
		if err != nil {
			return err
		}
		if !done {
			return ErrAttemptAlreadySubmitted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyAttemptSubmitted(ctx, attempt)

	return &SubmitAttemptResponse{
		AttemptID:    attempt.ID,
		Score:        *attempt.Score,
		MaxScore:     attempt.MaxScore,
		IsPassed:     attempt.IsPassed,
		PassingScore: quiz.EffectivePassingScore(),
	}, nil
}

func (s *attemptService) SaveAnswer(ctx context.Context, attemptID uint, userID string, req *AnswerInput) (*SaveAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	err := s.repo.Tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		attempt, quiz, err := s.lockInProgress(ctx, tx, attemptID, userID)
		if err != nil {
			return err
		}
		if isExpired(attempt, quiz, now) {
			return ErrAttemptExpired
		}

		answers, err := s.scoreAnswers(ctx, attempt, []AnswerInput{*req})
		if err != nil {
			return err
		}
		if len(answers) == 0 {
			return ErrQuestionNotInQuiz
		}
		if err := s.repo.Answers.Upsert(ctx, tx, answers[0]); err != nil {
			return fmt.Errorf("failed to save answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SaveAnswerResponse{AttemptID: attemptID, QuestionID: req.QuestionID, SavedAt: now}, nil
}

func (s *attemptService) FlagForReview(ctx context.Context, attemptID uint, userID string, questionID uint, flagged bool) error {
	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID)
	if err != nil {
		return err
	}
	if attempt.IsCompleted() {
		return ErrAttemptAlreadySubmitted
	}

	order, err := attemptQuestionOrder(attempt)
	if err != nil {
		return err
	}
	if !containsID(order, questionID) {
		return ErrQuestionNotInQuiz
	}

	if err := s.repo.Answers.SetFlag(ctx, nil, attemptID, questionID, flagged); err != nil {
		return fmt.Errorf("failed to flag question: %w", err)
	}
	return nil
}

// PauseAttempt records the request only. The attempt clock keeps running.
func (s *attemptService) PauseAttempt(ctx context.Context, attemptID uint, userID string) error {
	return s.touchInProgress(ctx, attemptID, userID, "pause")
}

// ResumeAttempt records the request only. The attempt clock keeps running.
func (s *attemptService) ResumeAttempt(ctx context.Context, attemptID uint, userID string) error {
	return s.touchInProgress(ctx, attemptID, userID, "resume")
}

func (s *attemptService) GetTimeRemaining(ctx context.Context, attemptID uint, userID string) (*TimeRemainingResponse, error) {
	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	quiz := attempt.Quiz
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	resp := &TimeRemainingResponse{
		AttemptID:        attempt.ID,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		Deadline:         quiz.Deadline(attempt.StartedAt),
		Completed:        attempt.IsCompleted(),
	}
	if resp.Deadline == nil {
		return resp, nil
	}

	remaining := 0
	if !resp.Completed {
		now := s.now()
		resp.Expired = isExpired(attempt, quiz, now)
		if !resp.Expired {
			// rounded up: a partial second is still usable
			remaining = int((resp.Deadline.Sub(now) + time.Second - 1) / time.Second)
		}
	}
	resp.RemainingSeconds = &remaining
	return resp, nil
}

func (s *attemptService) ListMyAttempts(ctx context.Context, quizID uint, userID string) ([]AttemptSummary, error) {
	if _, err := s.enrollment.CheckEnrollment(ctx, quizID, userID); err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempts.ListByQuizAndUser(ctx, nil, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		summaries = append(summaries, toAttemptSummary(attempt))
	}
	return summaries, nil
}

// ===== INTERNAL HELPERS =====

func (s *attemptService) getOwnedAttempt(ctx context.Context, attemptID uint, userID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempts.GetByIDForUser(ctx, nil, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// lockInProgress row-locks the caller's attempt and loads its quiz. It fails
// if the attempt is missing or already completed.
func (s *attemptService) lockInProgress(ctx context.Context, tx *gorm.DB, attemptID uint, userID string) (*models.Attempt, *models.Quiz, error) {
	attempt, err := s.repo.Attempts.LockForUser(ctx, tx, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock attempt: %w", err)
	}
	if attempt.IsCompleted() {
		return nil, nil, ErrAttemptAlreadySubmitted
	}

	quiz, err := s.repo.Quizzes.GetByID(ctx, tx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return attempt, quiz, nil
}

func (s *attemptService) touchInProgress(ctx context.Context, attemptID uint, userID, action string) error {
	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID)
	if err != nil {
		return err
	}
	if attempt.IsCompleted() {
		return ErrAttemptAlreadySubmitted
	}
	if err := s.repo.Attempts.Touch(ctx, nil, attemptID); err != nil {
		return fmt.Errorf("failed to %s attempt: %w", action, err)
	}
	s.logger.Info("Attempt "+action+" requested", "attempt_id", attemptID, "user_id", userID)
	return nil
}

// attemptQuestionOrder returns the question ids fixed at start. Questions
// added to the quiz later never belong to a running attempt.
func attemptQuestionOrder(attempt *models.Attempt) ([]uint, error) {
	order, err := attempt.QuestionIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to decode question order: %w", err)
	}
	return order, nil
}

// scoreAnswers grades the inputs that target questions of this attempt.
// Inputs for other questions are dropped.
func (s *attemptService) scoreAnswers(ctx context.Context, attempt *models.Attempt, inputs []AnswerInput) ([]*models.Answer, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	order, err := attemptQuestionOrder(attempt)
	if err != nil {
		return nil, err
	}

	inputs = dedupeAnswers(inputs)
	wanted := make([]uint, 0, len(inputs))
	for _, input := range inputs {
		if containsID(order, input.QuestionID) {
			wanted = append(wanted, input.QuestionID)
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	byID, err := s.questions.GetQuestionsByIDs(ctx, wanted)
	if err != nil {
		return nil, err
	}

	answers := make([]*models.Answer, 0, len(wanted))
	for _, input := range inputs {
		question, ok := byID[input.QuestionID]
		if !ok || !containsID(order, input.QuestionID) {
			s.logger.Debug("Skipping answer for unknown question",
				"attempt_id", attempt.ID,
				"question_id", input.QuestionID)
			continue
		}
		answers = append(answers, scoreAnswer(attempt.ID, question, input))
	}
	return answers, nil
}

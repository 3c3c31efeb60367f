package services

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestAttemptService(f *fixture, now time.Time, opts ...AttemptServiceOption) AttemptService {
	logger := testLogger()
	opts = append([]AttemptServiceOption{WithAttemptClock(func() time.Time { return now })}, opts...)
	return NewAttemptService(
		f.repo,
		NewEnrollmentService(f.repo, logger),
		NewQuestionStore(f.questions),
		f.notifier,
		validator.New(),
		logger,
		opts...,
	)
}

func (f *fixture) expectEnrolled(quiz *models.Quiz) {
	f.quizzes.On("GetWithCourse", mock.Anything, mock.Anything, quiz.ID).Return(quiz, nil)
	f.enrollments.On("HasActiveEnrollment", mock.Anything, mock.Anything, testStudentID, testCourseID).Return(true, nil)
}

// ===== START =====

func TestStartAttempt_NumbersAttemptAndComputesMaxScore(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	f.expectEnrolled(quiz)
	f.questions.On("GetByQuiz", mock.Anything, mock.Anything, uint(1)).
		Return([]*models.Question{newChoiceQuestion(1, 2), newChoiceQuestion(2, 3)}, nil)
	f.attempts.On("AcquireStartLock", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil)
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil, nil)
	f.attempts.On("GetMaxAttemptNumber", mock.Anything, mock.Anything, uint(1), testStudentID).Return(2, nil)

	var created *models.Attempt
	f.attempts.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Attempt")).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*models.Attempt)
			created.ID = 42
		}).
		Return(nil)

	resp, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	require.NoError(t, err)
	assert.Equal(t, uint(42), resp.AttemptID)
	assert.Equal(t, 3, resp.AttemptNumber)
	assert.Equal(t, t0, resp.StartedAt)
	assert.Equal(t, 5, created.MaxScore)
	assert.Nil(t, created.CompletedAt)
	order, err := created.QuestionIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, order)
	assert.Len(t, f.notifier.started, 1)
	f.assertExpectations(t)
}

func TestStartAttempt_MaxAttemptsReached(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.MaxAttempts = intPtr(2)
	f.expectEnrolled(quiz)
	f.questions.On("GetByQuiz", mock.Anything, mock.Anything, uint(1)).Return([]*models.Question{newChoiceQuestion(1, 1)}, nil)
	f.attempts.On("AcquireStartLock", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil)
	f.attempts.On("CountByQuizAndUser", mock.Anything, mock.Anything, uint(1), testStudentID).Return(int64(2), nil)

	_, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxAttemptsReached)
	assert.True(t, IsBadRequest(err))
	f.attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.started)
}

func TestStartAttempt_RejectsWhileAttemptInProgress(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	f.expectEnrolled(quiz)
	f.questions.On("GetByQuiz", mock.Anything, mock.Anything, uint(1)).Return([]*models.Question{}, nil)
	f.attempts.On("AcquireStartLock", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil)
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).
		Return(newAttempt(9, 1, t0.Add(-5*time.Minute)), nil)

	_, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	assert.ErrorIs(t, err, ErrAttemptInProgress)
	assert.True(t, IsBadRequest(err))
}

func TestStartAttempt_ClosesExpiredAttemptFirst(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.TimeLimitMinutes = intPtr(60)
	f.expectEnrolled(quiz)
	f.questions.On("GetByQuiz", mock.Anything, mock.Anything, uint(1)).Return([]*models.Question{newChoiceQuestion(1, 1)}, nil)

	stale := newAttempt(9, 1, t0.Add(-90*time.Minute))
	f.attempts.On("AcquireStartLock", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil)
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).Return(stale, nil)
	f.attempts.On("Lock", mock.Anything, mock.Anything, uint(9)).Return(stale, nil)
	f.answers.On("SumPoints", mock.Anything, mock.Anything, uint(9)).Return(1, nil)
	f.attempts.On("Complete", mock.Anything, mock.Anything, stale).Return(true, nil)
	f.attempts.On("GetMaxAttemptNumber", mock.Anything, mock.Anything, uint(1), testStudentID).Return(1, nil)
	f.attempts.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Attempt")).Return(nil)

	resp, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.AttemptNumber)
	require.Len(t, f.notifier.submitted, 1)
	assert.True(t, f.notifier.submitted[0].AutoSubmitted)
	assert.Equal(t, 1, *stale.Score)
	assert.Equal(t, t0, *stale.CompletedAt)
	f.assertExpectations(t)
}

func TestStartAttempt_NotEnrolled(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	f.quizzes.On("GetWithCourse", mock.Anything, mock.Anything, uint(1)).Return(quiz, nil)
	f.enrollments.On("HasActiveEnrollment", mock.Anything, mock.Anything, testStudentID, testCourseID).Return(false, nil)

	_, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	assert.ErrorIs(t, err, ErrNotEnrolled)
	assert.True(t, IsForbidden(err))
}

func TestStartAttempt_QuizChainBroken(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.Section = nil
	f.quizzes.On("GetWithCourse", mock.Anything, mock.Anything, uint(1)).Return(quiz, nil)

	_, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	assert.ErrorIs(t, err, ErrQuizNotFound)
	assert.True(t, IsNotFound(err))
}

func TestStartAttempt_OutsideAvailabilityWindow(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	opens := t0.Add(time.Hour)
	quiz.AvailableFrom = &opens
	f.expectEnrolled(quiz)

	_, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	assert.ErrorIs(t, err, ErrQuizNotAvailable)
}

// ===== QUESTIONS FOR TAKING =====

func TestShuffledOrderIsStableAcrossReads(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.ShuffleQuestions = true
	f.expectEnrolled(quiz)
	questions := []*models.Question{newChoiceQuestion(1, 1), newChoiceQuestion(2, 1), newChoiceQuestion(3, 1)}
	f.questions.On("GetByQuiz", mock.Anything, mock.Anything, uint(1)).Return(questions, nil)
	f.attempts.On("AcquireStartLock", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil)
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil, nil).Once()
	f.attempts.On("GetMaxAttemptNumber", mock.Anything, mock.Anything, uint(1), testStudentID).Return(0, nil)

	var created *models.Attempt
	f.attempts.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Attempt")).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(*models.Attempt)
			created.ID = 5
		}).
		Return(nil)

	svc := newTestAttemptService(f, t0, WithShuffler(func(ids []uint) { slices.Reverse(ids) }))
	_, err := svc.StartAttempt(context.Background(), 1, testStudentID)
	require.NoError(t, err)

	created.Quiz = quiz
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).Return(created, nil)
	f.questions.On("GetByIDs", mock.Anything, mock.Anything, []uint{3, 2, 1}).Return(questions, nil)
	f.answers.On("GetByAttempt", mock.Anything, mock.Anything, uint(5)).Return([]*models.Answer{
		{AttemptID: 5, QuestionID: 2, SelectedOptionID: uintPtr(21), IsFlagged: true},
	}, nil)

	for range 2 {
		resp, err := svc.GetQuestionsForTaking(context.Background(), 1, testStudentID)
		require.NoError(t, err)
		ids := make([]uint, 0, len(resp.Questions))
		for _, q := range resp.Questions {
			ids = append(ids, q.ID)
			for _, option := range q.Options {
				assert.Nil(t, option.IsCorrect, "correctness must not leak while taking")
			}
		}
		assert.Equal(t, []uint{3, 2, 1}, ids)
		assert.Equal(t, uintPtr(21), resp.Questions[1].SelectedOptionID)
		assert.True(t, resp.Questions[1].IsFlagged)
		assert.Nil(t, resp.Deadline)
	}
}

func TestGetQuestionsForTaking_NoActiveAttempt(t *testing.T) {
	f := newFixture()
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).Return(nil, nil)

	_, err := newTestAttemptService(f, t0).GetQuestionsForTaking(context.Background(), 1, testStudentID)

	assert.ErrorIs(t, err, ErrNoActiveAttempt)
}

func TestGetQuestionsForTaking_Expired(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.TimeLimitMinutes = intPtr(30)
	attempt := newAttempt(5, 1, t0.Add(-31*time.Minute), 1)
	attempt.Quiz = quiz
	f.attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, uint(1), testStudentID).Return(attempt, nil)

	_, err := newTestAttemptService(f, t0).GetQuestionsForTaking(context.Background(), 1, testStudentID)

	assert.ErrorIs(t, err, ErrAttemptExpired)
}

// ===== SUBMIT =====

func TestSubmitAttempt_ScoresAnswers(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.PassingScore = intPtr(4)
	attempt := newAttempt(5, 1, t0.Add(-10*time.Minute), 1, 2, 3)
	attempt.MaxScore = 10

	essay := &models.Question{ID: 3, Type: models.Essay, Points: intPtr(5)}
	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(quiz, nil)
	f.questions.On("GetByIDs", mock.Anything, mock.Anything, []uint{1, 2, 3}).
		Return([]*models.Question{newChoiceQuestion(1, 2), newChoiceQuestion(2, 3), essay}, nil)

	var saved []*models.Answer
	f.answers.On("UpsertMany", mock.Anything, mock.Anything, mock.AnythingOfType("[]*models.Answer")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]*models.Answer) }).
		Return(nil)
	f.answers.On("SumPoints", mock.Anything, mock.Anything, uint(5)).Return(5, nil)
	f.attempts.On("Complete", mock.Anything, mock.Anything, attempt).Return(true, nil)

	req := &SubmitAttemptRequest{Answers: []AnswerInput{
		{QuestionID: 1, SelectedOptionID: uintPtr(12)},
		{QuestionID: 2, SelectedOptionID: uintPtr(21)},
		{QuestionID: 1, SelectedOptionID: uintPtr(11)},
		{QuestionID: 3, AnswerText: strPtr("long answer")},
		{QuestionID: 99, SelectedOptionID: uintPtr(991)},
	}}
	resp, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, testStudentID, req)

	require.NoError(t, err)
	assert.Equal(t, 5, resp.Score)
	assert.Equal(t, 10, resp.MaxScore)
	assert.True(t, resp.IsPassed)
	assert.Equal(t, 4, resp.PassingScore)

	require.Len(t, saved, 3)
	assert.Equal(t, uint(1), saved[0].QuestionID)
	assert.True(t, saved[0].IsCorrect, "last answer for a question wins")
	assert.Equal(t, 2, saved[0].PointsEarned)
	assert.Equal(t, 3, saved[1].PointsEarned)
	assert.False(t, saved[2].IsCorrect)
	assert.Zero(t, saved[2].PointsEarned)

	assert.Equal(t, t0, *attempt.CompletedAt)
	assert.False(t, attempt.AutoSubmitted)
	require.Len(t, f.notifier.submitted, 1)
	f.assertExpectations(t)
}

func TestSubmitAttempt_PassingComparesRawPoints(t *testing.T) {
	tests := []struct {
		name         string
		passingScore int
		wantPassed   bool
	}{
		{name: "half the points against 50", passingScore: 50, wantPassed: false},
		{name: "half the points against 1", passingScore: 1, wantPassed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			quiz := newQuiz(1)
			quiz.PassingScore = intPtr(tt.passingScore)
			attempt := newAttempt(5, 1, t0.Add(-10*time.Minute), 1, 2)
			attempt.MaxScore = 2

			f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
			f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(quiz, nil)
			f.questions.On("GetByIDs", mock.Anything, mock.Anything, []uint{1, 2}).
				Return([]*models.Question{newChoiceQuestion(1, 1), newChoiceQuestion(2, 1)}, nil)

			var total int
			f.answers.On("UpsertMany", mock.Anything, mock.Anything, mock.AnythingOfType("[]*models.Answer")).
				Run(func(args mock.Arguments) {
					for _, answer := range args.Get(2).([]*models.Answer) {
						total += answer.PointsEarned
					}
				}).
				Return(nil)
			f.answers.On("SumPoints", mock.Anything, mock.Anything, uint(5)).Return(1, nil)
			f.attempts.On("Complete", mock.Anything, mock.Anything, attempt).Return(true, nil)

			req := &SubmitAttemptRequest{Answers: []AnswerInput{
				{QuestionID: 1, SelectedOptionID: uintPtr(11)},
				{QuestionID: 2, SelectedOptionID: uintPtr(22)},
			}}
			resp, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, testStudentID, req)

			require.NoError(t, err)
			assert.Equal(t, 1, total, "one correct answer worth one point")
			assert.Equal(t, 1, resp.Score)
			assert.Equal(t, 2, resp.MaxScore)
			assert.Equal(t, tt.wantPassed, resp.IsPassed)
		})
	}
}

func TestSubmitAttempt_IgnoresQuestionsAddedAfterStart(t *testing.T) {
	f := newFixture()
	attempt := newAttempt(5, 1, t0.Add(-10*time.Minute))
	require.NoError(t, attempt.SetQuestionIDs([]uint{}))

	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(newQuiz(1), nil)
	var saved []*models.Answer
	f.answers.On("UpsertMany", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved, _ = args.Get(2).([]*models.Answer) }).
		Return(nil)
	f.answers.On("SumPoints", mock.Anything, mock.Anything, uint(5)).Return(0, nil)
	f.attempts.On("Complete", mock.Anything, mock.Anything, attempt).Return(true, nil)

	req := &SubmitAttemptRequest{Answers: []AnswerInput{{QuestionID: 7, SelectedOptionID: uintPtr(71)}}}
	resp, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, testStudentID, req)

	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Zero(t, resp.Score)
	assert.Zero(t, resp.MaxScore)
	f.questions.AssertNotCalled(t, "GetByQuiz", mock.Anything, mock.Anything, mock.Anything)
	f.questions.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAttempt_AlreadySubmitted(t *testing.T) {
	f := newFixture()
	done := newAttempt(5, 1, t0.Add(-10*time.Minute), 1)
	completedAt := t0.Add(-time.Minute)
	done.CompletedAt = &completedAt
	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(done, nil)

	_, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, testStudentID, &SubmitAttemptRequest{})

	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
	assert.Empty(t, f.notifier.submitted)
}

func TestSubmitAttempt_LosesRaceToSweeper(t *testing.T) {
	f := newFixture()
	attempt := newAttempt(5, 1, t0.Add(-10*time.Minute), 1)
	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(newQuiz(1), nil)
	f.answers.On("UpsertMany", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.answers.On("SumPoints", mock.Anything, mock.Anything, uint(5)).Return(0, nil)
	f.attempts.On("Complete", mock.Anything, mock.Anything, attempt).Return(false, nil)

	_, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, testStudentID, &SubmitAttemptRequest{})

	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
	assert.Empty(t, f.notifier.submitted)
}

func TestSubmitAttempt_OtherUsersAttempt(t *testing.T) {
	f := newFixture()
	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), "intruder").Return(nil, gorm.ErrRecordNotFound)

	_, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, "intruder", &SubmitAttemptRequest{})

	assert.ErrorIs(t, err, ErrAttemptNotFound)
	assert.True(t, IsNotFound(err))
}

func TestSubmitAttempt_InvalidPayload(t *testing.T) {
	f := newFixture()
	req := &SubmitAttemptRequest{Answers: []AnswerInput{{QuestionID: 0}}}

	_, err := newTestAttemptService(f, t0).SubmitAttempt(context.Background(), 5, testStudentID, req)

	assert.True(t, IsValidation(err))
	f.attempts.AssertNotCalled(t, "LockForUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ===== SAVE / FLAG / TIME =====

func TestSaveAnswerThenSweepScoresSavedAnswer(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.TimeLimitMinutes = intPtr(60)
	attempt := newAttempt(5, 1, t0, 1, 2)

	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(quiz, nil)
	f.questions.On("GetByIDs", mock.Anything, mock.Anything, []uint{1}).Return([]*models.Question{newChoiceQuestion(1, 4)}, nil)

	var saved *models.Answer
	f.answers.On("Upsert", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Answer")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(*models.Answer) }).
		Return(nil)

	resp, err := newTestAttemptService(f, t0.Add(10*time.Minute)).
		SaveAnswer(context.Background(), 5, testStudentID, &AnswerInput{QuestionID: 1, SelectedOptionID: uintPtr(11)})
	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Minute), resp.SavedAt)
	require.NotNil(t, saved)
	assert.Equal(t, 4, saved.PointsEarned)

	attempt.Quiz = quiz
	f.attempts.On("GetTimedInProgress", mock.Anything, mock.Anything).Return([]*models.Attempt{attempt}, nil)
	f.attempts.On("Lock", mock.Anything, mock.Anything, uint(5)).Return(attempt, nil)
	f.answers.On("SumPoints", mock.Anything, mock.Anything, uint(5)).Return(saved.PointsEarned, nil)
	f.attempts.On("Complete", mock.Anything, mock.Anything, attempt).Return(true, nil)

	sweeper := NewAttemptSweeper(f.repo, f.notifier, testLogger(), time.Minute).
		WithClock(func() time.Time { return t0.Add(90 * time.Minute) })
	closed, err := sweeper.AutoSubmitExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 4, *attempt.Score)
	assert.True(t, attempt.AutoSubmitted)
}

func TestSaveAnswer_QuestionNotInAttempt(t *testing.T) {
	f := newFixture()
	attempt := newAttempt(5, 1, t0, 1, 2)
	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(newQuiz(1), nil)

	_, err := newTestAttemptService(f, t0).
		SaveAnswer(context.Background(), 5, testStudentID, &AnswerInput{QuestionID: 77, SelectedOptionID: uintPtr(1)})

	assert.ErrorIs(t, err, ErrQuestionNotInQuiz)
	f.answers.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveAnswer_AfterDeadline(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	quiz.TimeLimitMinutes = intPtr(60)
	attempt := newAttempt(5, 1, t0, 1)
	f.attempts.On("LockForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.quizzes.On("GetByID", mock.Anything, mock.Anything, uint(1)).Return(quiz, nil)

	_, err := newTestAttemptService(f, t0.Add(61*time.Minute)).
		SaveAnswer(context.Background(), 5, testStudentID, &AnswerInput{QuestionID: 1, SelectedOptionID: uintPtr(11)})

	assert.ErrorIs(t, err, ErrAttemptExpired)
}

func TestFlagForReview(t *testing.T) {
	f := newFixture()
	attempt := newAttempt(5, 1, t0, 1, 2)
	f.attempts.On("GetByIDForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.answers.On("SetFlag", mock.Anything, mock.Anything, uint(5), uint(2), true).Return(nil)
	svc := newTestAttemptService(f, t0)

	require.NoError(t, svc.FlagForReview(context.Background(), 5, testStudentID, 2, true))
	assert.ErrorIs(t, svc.FlagForReview(context.Background(), 5, testStudentID, 8, true), ErrQuestionNotInQuiz)
	f.answers.AssertExpectations(t)
}

func TestPauseAndResumeOnlyTouchAttempt(t *testing.T) {
	f := newFixture()
	attempt := newAttempt(5, 1, t0, 1)
	f.attempts.On("GetByIDForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)
	f.attempts.On("Touch", mock.Anything, mock.Anything, uint(5)).Return(nil).Twice()
	svc := newTestAttemptService(f, t0)

	require.NoError(t, svc.PauseAttempt(context.Background(), 5, testStudentID))
	require.NoError(t, svc.ResumeAttempt(context.Background(), 5, testStudentID))
	assert.Equal(t, t0, attempt.StartedAt)
	f.attempts.AssertExpectations(t)
}

func TestGetTimeRemaining(t *testing.T) {
	quiz := newQuiz(1)
	quiz.TimeLimitMinutes = intPtr(60)

	tests := []struct {
		name      string
		elapsed   time.Duration
		quiz      *models.Quiz
		remaining *int
		expired   bool
	}{
		{name: "timed and running", elapsed: 45 * time.Minute, quiz: quiz, remaining: intPtr(900)},
		{name: "timed and over", elapsed: 90 * time.Minute, quiz: quiz, remaining: intPtr(0), expired: true},
		{name: "under a second left", elapsed: time.Hour - 500*time.Millisecond, quiz: quiz, remaining: intPtr(1)},
		{name: "exactly at the deadline", elapsed: time.Hour, quiz: quiz, remaining: intPtr(0), expired: true},
		{name: "untimed", elapsed: 5 * time.Hour, quiz: newQuiz(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			attempt := newAttempt(5, 1, t0, 1)
			attempt.Quiz = tt.quiz
			f.attempts.On("GetByIDForUser", mock.Anything, mock.Anything, uint(5), testStudentID).Return(attempt, nil)

			resp, err := newTestAttemptService(f, t0.Add(tt.elapsed)).GetTimeRemaining(context.Background(), 5, testStudentID)

			require.NoError(t, err)
			assert.Equal(t, tt.remaining, resp.RemainingSeconds)
			assert.Equal(t, tt.expired, resp.Expired)
		})
	}
}

func TestListMyAttempts(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	f.expectEnrolled(quiz)
	first := newAttempt(4, 1, t0.Add(-time.Hour))
	finished := t0.Add(-30 * time.Minute)
	first.CompletedAt = &finished
	first.Score = intPtr(3)
	second := newAttempt(5, 1, t0)
	second.AttemptNumber = 2
	f.attempts.On("ListByQuizAndUser", mock.Anything, mock.Anything, uint(1), testStudentID).
		Return([]*models.Attempt{first, second}, nil)

	summaries, err := newTestAttemptService(f, t0).ListMyAttempts(context.Background(), 1, testStudentID)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, models.AttemptCompleted, summaries[0].Status)
	assert.Equal(t, models.AttemptInProgress, summaries[1].Status)
}

func TestStartAttempt_RepositoryFailureIsInternal(t *testing.T) {
	f := newFixture()
	quiz := newQuiz(1)
	f.expectEnrolled(quiz)
	f.questions.On("GetByQuiz", mock.Anything, mock.Anything, uint(1)).Return(nil, errors.New("connection reset"))

	_, err := newTestAttemptService(f, t0).StartAttempt(context.Background(), 1, testStudentID)

	require.Error(t, err)
	assert.False(t, IsBadRequest(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsForbidden(err))
}

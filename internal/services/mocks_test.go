package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// ===== REPOSITORY MOCKS =====

type passthroughTx struct{}

func (passthroughTx) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type mockQuizRepo struct{ mock.Mock }

func (m *mockQuizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuizRepo) GetWithCourse(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	if q := args.Get(0); q != nil {
		return q.(*models.Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEnrollmentRepo struct{ mock.Mock }

func (m *mockEnrollmentRepo) HasActiveEnrollment(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (bool, error) {
	args := m.Called(ctx, tx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

type mockQuestionRepo struct{ mock.Mock }

func (m *mockQuestionRepo) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	args := m.Called(ctx, tx, quizID)
	if q := args.Get(0); q != nil {
		return q.([]*models.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, tx, ids)
	if q := args.Get(0); q != nil {
		return q.([]*models.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	if q := args.Get(0); q != nil {
		return q.(*models.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuestionRepo) GetOptions(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Option, error) {
	args := m.Called(ctx, tx, questionID)
	if o := args.Get(0); o != nil {
		return o.([]*models.Option), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAttemptRepo struct{ mock.Mock }

func (m *mockAttemptRepo) attempt(args mock.Arguments) (*models.Attempt, error) {
	if a := args.Get(0); a != nil {
		return a.(*models.Attempt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	return m.Called(ctx, tx, attempt).Error(0)
}

func (m *mockAttemptRepo) Lock(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	return m.attempt(m.Called(ctx, tx, id))
}

func (m *mockAttemptRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Attempt, error) {
	return m.attempt(m.Called(ctx, tx, id, userID))
}

func (m *mockAttemptRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	return m.attempt(m.Called(ctx, tx, id))
}

func (m *mockAttemptRepo) LockForUser(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Attempt, error) {
	return m.attempt(m.Called(ctx, tx, id, userID))
}

func (m *mockAttemptRepo) AcquireStartLock(ctx context.Context, tx *gorm.DB, quizID uint, userID string) error {
	return m.Called(ctx, tx, quizID, userID).Error(0)
}

func (m *mockAttemptRepo) CountByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (int64, error) {
	args := m.Called(ctx, tx, quizID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAttemptRepo) GetMaxAttemptNumber(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (int, error) {
	args := m.Called(ctx, tx, quizID, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAttemptRepo) GetActiveAttempt(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (*models.Attempt, error) {
	return m.attempt(m.Called(ctx, tx, quizID, userID))
}

func (m *mockAttemptRepo) ListByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID uint, userID string) ([]*models.Attempt, error) {
	args := m.Called(ctx, tx, quizID, userID)
	if a := args.Get(0); a != nil {
		return a.([]*models.Attempt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAttemptRepo) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, tx, quizID, filters)
	var attempts []*models.Attempt
	if a := args.Get(0); a != nil {
		attempts = a.([]*models.Attempt)
	}
	return attempts, args.Get(1).(int64), args.Error(2)
}

func (m *mockAttemptRepo) GetTimedInProgress(ctx context.Context, tx *gorm.DB) ([]*models.Attempt, error) {
	args := m.Called(ctx, tx)
	if a := args.Get(0); a != nil {
		return a.([]*models.Attempt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAttemptRepo) Touch(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *mockAttemptRepo) Complete(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) (bool, error) {
	args := m.Called(ctx, tx, attempt)
	return args.Bool(0), args.Error(1)
}

func (m *mockAttemptRepo) UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score int, isPassed bool) error {
	return m.Called(ctx, tx, id, score, isPassed).Error(0)
}

type mockAnswerRepo struct{ mock.Mock }

func (m *mockAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	return m.Called(ctx, tx, answer).Error(0)
}

func (m *mockAnswerRepo) UpsertMany(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error {
	return m.Called(ctx, tx, answers).Error(0)
}

func (m *mockAnswerRepo) SetFlag(ctx context.Context, tx *gorm.DB, attemptID, questionID uint, flagged bool) error {
	return m.Called(ctx, tx, attemptID, questionID, flagged).Error(0)
}

func (m *mockAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	args := m.Called(ctx, tx, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Answer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnswerRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	args := m.Called(ctx, tx, attemptID)
	if a := args.Get(0); a != nil {
		return a.([]*models.Answer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnswerRepo) SumPoints(ctx context.Context, tx *gorm.DB, attemptID uint) (int, error) {
	args := m.Called(ctx, tx, attemptID)
	return args.Int(0), args.Error(1)
}

func (m *mockAnswerRepo) UpdateReview(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	return m.Called(ctx, tx, answer).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return m.Called(ctx, tx, user).Error(0)
}

// ===== NOTIFIER =====

type recordingNotifier struct {
	started   []*models.Attempt
	submitted []*models.Attempt
	reviewed  []*models.Answer
}

func (n *recordingNotifier) NotifyAttemptStarted(_ context.Context, attempt *models.Attempt, _ *models.Quiz) {
	n.started = append(n.started, attempt)
}

func (n *recordingNotifier) NotifyAttemptSubmitted(_ context.Context, attempt *models.Attempt) {
	n.submitted = append(n.submitted, attempt)
}

func (n *recordingNotifier) NotifyAttemptReviewed(_ context.Context, _ *models.Attempt, answer *models.Answer, _ string) {
	n.reviewed = append(n.reviewed, answer)
}

// ===== FIXTURE =====

type fixture struct {
	quizzes     *mockQuizRepo
	enrollments *mockEnrollmentRepo
	questions   *mockQuestionRepo
	attempts    *mockAttemptRepo
	answers     *mockAnswerRepo
	users       *mockUserRepo
	notifier    *recordingNotifier
	repo        *repositories.Repository
}

func newFixture() *fixture {
	f := &fixture{
		quizzes:     &mockQuizRepo{},
		enrollments: &mockEnrollmentRepo{},
		questions:   &mockQuestionRepo{},
		attempts:    &mockAttemptRepo{},
		answers:     &mockAnswerRepo{},
		users:       &mockUserRepo{},
		notifier:    &recordingNotifier{},
	}
	f.repo = &repositories.Repository{
		Tx:          passthroughTx{},
		Quizzes:     f.quizzes,
		Enrollments: f.enrollments,
		Questions:   f.questions,
		Attempts:    f.attempts,
		Answers:     f.answers,
		Users:       f.users,
	}
	return f
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.quizzes.AssertExpectations(t)
	f.enrollments.AssertExpectations(t)
	f.questions.AssertExpectations(t)
	f.attempts.AssertExpectations(t)
	f.answers.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== MODEL BUILDERS =====

const (
	testCourseID     uint = 7
	testInstructorID      = "teacher-1"
	testStudentID         = "student-1"
)

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func newQuiz(id uint) *models.Quiz {
	return &models.Quiz{
		ID:        id,
		SectionID: 3,
		TitleEn:   "Unit quiz",
		TitleAr:   "اختبار",
		Section: &models.Section{
			ID:       3,
			CourseID: testCourseID,
			Course:   &models.Course{ID: testCourseID, InstructorID: testInstructorID},
		},
	}
}

// newChoiceQuestion builds a multiple choice question whose correct option id is id*10+1
func newChoiceQuestion(id uint, points int) *models.Question {
	return &models.Question{
		ID:     id,
		Type:   models.MultipleChoice,
		TextEn: "Question",
		Points: intPtr(points),
		Options: []models.Option{
			{ID: id*10 + 1, QuestionID: id, TextEn: "right", IsCorrect: true, Order: 1},
			{ID: id*10 + 2, QuestionID: id, TextEn: "wrong", Order: 2},
		},
	}
}

func newAttempt(id, quizID uint, startedAt time.Time, order ...uint) *models.Attempt {
	attempt := &models.Attempt{
		ID:            id,
		QuizID:        quizID,
		UserID:        testStudentID,
		AttemptNumber: 1,
		StartedAt:     startedAt,
	}
	if len(order) > 0 {
		_ = attempt.SetQuestionIDs(order)
	}
	return attempt
}

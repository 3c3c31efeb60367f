package postgres

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// statementRecorder keeps every SQL statement gorm renders
type statementRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *statementRecorder) LogMode(logger.LogLevel) logger.Interface        { return r }
func (r *statementRecorder) Info(context.Context, string, ...interface{})  {}
func (r *statementRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *statementRecorder) Error(context.Context, string, ...interface{}) {}

func (r *statementRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.statements = append(r.statements, sql)
	r.mu.Unlock()
}

func (r *statementRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

// newDryRunDB renders statements without a server. Nothing is executed.
func newDryRunDB(t *testing.T) (*gorm.DB, *statementRecorder) {
	t.Helper()
	recorder := &statementRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=quiz dbname=quiz sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 recorder,
	})
	require.NoError(t, err)
	return db, recorder
}

func TestAttemptSQL_StartLockIsTransactionScoped(t *testing.T) {
	db, recorder := newDryRunDB(t)

	require.NoError(t, NewAttemptPostgreSQL(db).AcquireStartLock(context.Background(), nil, 4, "student-1"))

	assert.Equal(t, "SELECT pg_advisory_xact_lock(4, hashtext('student-1'))", recorder.last(t))
}

func TestAttemptSQL_LocksRows(t *testing.T) {
	db, recorder := newDryRunDB(t)
	repo := NewAttemptPostgreSQL(db)

	_, err := repo.Lock(context.Background(), nil, 5)
	require.NoError(t, err)
	sql := recorder.last(t)
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), sql)
	assert.Contains(t, sql, `"quiz_attempts"."id" = 5`)

	_, err = repo.LockForUser(context.Background(), nil, 5, "student-1")
	require.NoError(t, err)
	sql = recorder.last(t)
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), sql)
	assert.Contains(t, sql, "user_id = 'student-1'")
}

func TestAttemptSQL_CompleteOnlyOpenAttempts(t *testing.T) {
	db, recorder := newDryRunDB(t)
	score := 3
	completedAt := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	done, err := NewAttemptPostgreSQL(db).Complete(context.Background(), nil, &models.Attempt{
		ID:          5,
		Score:       &score,
		CompletedAt: &completedAt,
	})

	require.NoError(t, err)
	assert.False(t, done, "a dry run affects no rows")
	sql := recorder.last(t)
	assert.True(t, strings.HasPrefix(sql, `UPDATE "quiz_attempts" SET`), sql)
	assert.Contains(t, sql, "id = 5 AND completed_at IS NULL")
}

func TestAttemptSQL_SweepCandidatesIncludeEveryTimedQuiz(t *testing.T) {
	db, recorder := newDryRunDB(t)

	_, err := NewAttemptPostgreSQL(db).GetTimedInProgress(context.Background(), nil)

	require.NoError(t, err)
	sql := recorder.last(t)
	assert.Contains(t, sql, "quizzes.time_limit_minutes IS NOT NULL")
	assert.Contains(t, sql, "quiz_attempts.completed_at IS NULL")
}

func TestAnswerSQL_UpsertKeepsFlag(t *testing.T) {
	db, recorder := newDryRunDB(t)
	repo := NewAnswerPostgreSQL(db)

	require.NoError(t, repo.Upsert(context.Background(), nil, &models.Answer{AttemptID: 5, QuestionID: 2, PointsEarned: 1}))
	sql := recorder.last(t)
	assert.Contains(t, sql, `ON CONFLICT ("attempt_id","question_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"points_earned"="excluded"."points_earned"`)
	assert.NotContains(t, sql, `"is_flagged"="excluded"."is_flagged"`)

	require.NoError(t, repo.SetFlag(context.Background(), nil, 5, 2, true))
	sql = recorder.last(t)
	assert.Contains(t, sql, `ON CONFLICT ("attempt_id","question_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"is_flagged"=true`)
	assert.NotContains(t, sql, `"points_earned"=`)
}

func TestAnswerSQL_UpsertManySkipsEmptyBatch(t *testing.T) {
	db, recorder := newDryRunDB(t)

	require.NoError(t, NewAnswerPostgreSQL(db).UpsertMany(context.Background(), nil, nil))

	assert.Empty(t, recorder.statements)
}

func TestQuestionSQL_FollowsQuizOrder(t *testing.T) {
	db, recorder := newDryRunDB(t)

	_, err := NewQuestionPostgreSQL(db).GetByQuiz(context.Background(), nil, 9)

	require.NoError(t, err)
	sql := recorder.last(t)
	assert.Contains(t, sql, "JOIN quiz_questions qq ON qq.question_id = questions.id AND qq.deleted_at IS NULL")
	assert.Contains(t, sql, "qq.quiz_id = 9")
	assert.Contains(t, sql, "ORDER BY qq.display_order ASC, qq.id ASC")
}

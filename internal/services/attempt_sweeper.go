package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AttemptSweeper auto-submits attempts whose time limit has passed. It shares
// no memory with request handlers; the completed_at column is the only
// coordination point.
type AttemptSweeper struct {
	repo     *repositories.Repository
	notifier AttemptNotifier
	logger   *slog.Logger
	now      Clock
	timeout  time.Duration
	cron     *cron.Cron
}

func NewAttemptSweeper(repo *repositories.Repository, notifier AttemptNotifier, logger *slog.Logger, timeout time.Duration) *AttemptSweeper {
	return &AttemptSweeper{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("component", "attempt_sweeper"),
		now:      time.Now,
		timeout:  timeout,
	}
}

// WithClock replaces time.Now
func (s *AttemptSweeper) WithClock(clock Clock) *AttemptSweeper {
	s.now = clock
	return s
}

// AutoSubmitExpired finalises every timed attempt whose elapsed time reached
// the quiz limit, scoring only the answers already recorded. It returns how
// many attempts this call closed.
func (s *AttemptSweeper) AutoSubmitExpired(ctx context.Context) (int, error) {
	candidates, err := s.repo.Attempts.GetTimedInProgress(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get in-progress attempts: %w", err)
	}

	now := s.now()
	closed := 0
	var errs []error
	for _, attempt := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		quiz := attempt.Quiz
		if quiz == nil || !isExpired(attempt, quiz, now) {
			continue
		}

		done, err := s.expire(ctx, attempt, quiz, now)
		if err != nil {
			s.logger.Error("Failed to auto-submit attempt", "attempt_id", attempt.ID, "error", err)
			errs = append(errs, fmt.Errorf("attempt %d: %w", attempt.ID, err))
			continue
		}
		if !done {
			continue // submitted by the user in the meantime
		}

		closed++
		s.notifier.NotifyAttemptSubmitted(ctx, attempt)
		s.logger.Info("Attempt auto-submitted",
			"attempt_id", attempt.ID,
			"quiz_id", attempt.QuizID,
			"user_id", attempt.UserID,
			"score", *attempt.Score,
			"is_passed", attempt.IsPassed)
	}

	return closed, errors.Join(errs...)
}

func (s *AttemptSweeper) expire(ctx context.Context, attempt *models.Attempt, quiz *models.Quiz, now time.Time) (bool, error) {
	var done bool
	err := s.repo.Tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		open, err := lockOpenAttempt(ctx, s.repo, tx, attempt.ID)
		if err != nil || !open {
			return err
		}
		done, err = finalizeAttempt(ctx, s.repo, tx, attempt, quiz, now, true)
		return err
	})
	return done, err
}

// Start schedules AutoSubmitExpired on a cron spec such as "@every 1m".
// Overlapping runs are skipped.
func (s *AttemptSweeper) Start(schedule string) error {
	logger := cronLogger{logger: s.logger}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()

	s.logger.Info("Attempt sweeper started", "schedule", schedule, "timeout", s.timeout)
	return nil
}

// Stop halts scheduling and returns a context that is done once a running sweep finishes
func (s *AttemptSweeper) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

func (s *AttemptSweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	closed, err := s.AutoSubmitExpired(ctx)
	if err != nil {
		s.logger.Error("Attempt sweep finished with errors", "closed", closed, "error", err)
		return
	}
	if closed > 0 {
		s.logger.Info("Attempt sweep finished", "closed", closed)
	}
}

// cronLogger sends the scheduler's own messages through slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

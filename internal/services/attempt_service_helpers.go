package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// Clock returns the current time. Tests replace it to move time.
type Clock func() time.Time

// lockOpenAttempt row-locks the attempt before it is finalized outside a
// student request, so a SaveAnswer that committed first is part of the sum.
// It reports false when the attempt is already completed.
func lockOpenAttempt(ctx context.Context, repo *repositories.Repository, tx *gorm.DB, id uint) (bool, error) {
	locked, err := repo.Attempts.Lock(ctx, tx, id)
	if err != nil {
		return false, fmt.Errorf("failed to lock attempt: %w", err)
	}
	return !locked.IsCompleted(), nil
}

// finalizeAttempt scores an in-progress attempt from the answer rows it
// already has and marks it completed at the given time. It reports false
// when another writer completed the attempt first.
func finalizeAttempt(ctx context.Context, repo *repositories.Repository, tx *gorm.DB, attempt *models.Attempt, quiz *models.Quiz, completedAt time.Time, auto bool) (bool, error) {
	total, err := repo.Answers.SumPoints(ctx, tx, attempt.ID)
	if err != nil {
		return false, fmt.Errorf("failed to sum answer points: %w", err)
	}

	attempt.Score = &total
	attempt.IsPassed = total >= quiz.EffectivePassingScore()
	attempt.CompletedAt = &completedAt
	attempt.AutoSubmitted = auto

	done, err := repo.Attempts.Complete(ctx, tx, attempt)
	if err != nil {
		return false, fmt.Errorf("failed to complete attempt: %w", err)
	}
	return done, nil
}

// isExpired reports whether a timed attempt has used up its time limit at now
func isExpired(attempt *models.Attempt, quiz *models.Quiz, now time.Time) bool {
	deadline := quiz.Deadline(attempt.StartedAt)
	return deadline != nil && !now.Before(*deadline)
}

// scoreAnswer grades one answer against its question. A selected option is
// correct only if it belongs to the question and is flagged correct. Text
// answers wait for manual review and score zero.
func scoreAnswer(attemptID uint, question *models.Question, input AnswerInput) *models.Answer {
	answer := &models.Answer{
		AttemptID:        attemptID,
		QuestionID:       question.ID,
		SelectedOptionID: input.SelectedOptionID,
		AnswerText:       input.AnswerText,
	}

	if input.SelectedOptionID == nil || !question.HasOptions() {
		return answer
	}
	for _, option := range question.Options {
		if option.ID == *input.SelectedOptionID && option.IsCorrect {
			answer.IsCorrect = true
			answer.PointsEarned = question.PointValue()
			break
		}
	}
	return answer
}

// dedupeAnswers keeps the last answer given for each question, in first-seen order
func dedupeAnswers(inputs []AnswerInput) []AnswerInput {
	position := make(map[uint]int, len(inputs))
	result := make([]AnswerInput, 0, len(inputs))
	for _, input := range inputs {
		if i, ok := position[input.QuestionID]; ok {
			result[i] = input
			continue
		}
		position[input.QuestionID] = len(result)
		result = append(result, input)
	}
	return result
}

func questionIDs(questions []*models.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func sumPoints(questions []*models.Question) int {
	total := 0
	for _, q := range questions {
		total += q.PointValue()
	}
	return total
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func shuffleIDs(ids []uint) {
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

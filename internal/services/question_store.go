package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type questionStore struct {
	questions repositories.QuestionRepository
}

// NewQuestionStore returns a read-through accessor. Every call hits the store;
// question content can change between attempts and is never cached here.
func NewQuestionStore(questions repositories.QuestionRepository) QuestionStore {
	return &questionStore{questions: questions}
}

func (s *questionStore) GetQuizQuestions(ctx context.Context, quizID uint) ([]*models.Question, error) {
	questions, err := s.questions.GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}
	return questions, nil
}

func (s *questionStore) GetQuestionsByIDs(ctx context.Context, ids []uint) (map[uint]*models.Question, error) {
	if len(ids) == 0 {
		return map[uint]*models.Question{}, nil
	}
	questions, err := s.questions.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

func (s *questionStore) GetOptions(ctx context.Context, questionID uint, includeCorrectness bool) ([]OptionView, error) {
	options, err := s.questions.GetOptions(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	values := make([]models.Option, 0, len(options))
	for _, option := range options {
		values = append(values, *option)
	}
	return toOptionViews(values, includeCorrectness), nil
}

func (s *questionStore) GetQuestionPoints(ctx context.Context, questionID uint) (int, error) {
	question, err := s.questions.GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrQuestionNotFound
		}
		return 0, fmt.Errorf("failed to get question: %w", err)
	}
	return question.PointValue(), nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type enrollmentService struct {
	quizzes     repositories.QuizRepository
	enrollments repositories.EnrollmentRepository
	logger      *slog.Logger
}

func NewEnrollmentService(repo *repositories.Repository, logger *slog.Logger) EnrollmentService {
	return &enrollmentService{
		quizzes:     repo.Quizzes,
		enrollments: repo.Enrollments,
		logger:      logger,
	}
}

// CheckEnrollment resolves quiz -> section -> course and requires an active
// enrollment of userID in that course.
func (s *enrollmentService) CheckEnrollment(ctx context.Context, quizID uint, userID string) (*QuizContext, error) {
	qc, err := s.resolveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.HasActiveEnrollment(ctx, nil, userID, qc.Course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		s.logger.Debug("Enrollment check failed", "quiz_id", quizID, "course_id", qc.Course.ID, "user_id", userID)
		return nil, ErrNotEnrolled
	}

	return qc, nil
}

// CheckInstructor requires instructorID to own the quiz's course. Admins pass.
func (s *enrollmentService) CheckInstructor(ctx context.Context, quizID uint, instructorID string, role models.UserRole) (*QuizContext, error) {
	qc, err := s.resolveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := ensureInstructor(qc.Course, quizID, instructorID, role); err != nil {
		return nil, err
	}
	return qc, nil
}

func (s *enrollmentService) resolveQuiz(ctx context.Context, quizID uint) (*QuizContext, error) {
	quiz, err := s.quizzes.GetWithCourse(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	course := courseOf(quiz)
	if course == nil {
		return nil, ErrQuizNotFound
	}
	return &QuizContext{Quiz: quiz, Course: course}, nil
}

// courseOf follows the preloaded quiz -> section -> course chain. A soft-deleted
// link leaves a nil pointer and breaks the chain.
func courseOf(quiz *models.Quiz) *models.Course {
	if quiz == nil || quiz.Section == nil {
		return nil
	}
	return quiz.Section.Course
}

func ensureInstructor(course *models.Course, quizID uint, instructorID string, role models.UserRole) error {
	if role == models.RoleAdmin {
		return nil
	}
	if !role.CanInstruct() || course.InstructorID != instructorID {
		return NewPermissionError(instructorID, quizID, "quiz", "review", ErrNotCourseInstructor)
	}
	return nil
}

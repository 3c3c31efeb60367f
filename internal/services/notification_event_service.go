package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// AttemptNotifier publishes attempt lifecycle events. Publishing is best
// effort: failures are logged and never reach the caller.
type AttemptNotifier interface {
	NotifyAttemptStarted(ctx context.Context, attempt *models.Attempt, quiz *models.Quiz)
	NotifyAttemptSubmitted(ctx context.Context, attempt *models.Attempt)
	NotifyAttemptReviewed(ctx context.Context, attempt *models.Attempt, answer *models.Answer, reviewerID string)
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewNotificationEventService(eventPublisher events.EventPublisher, logger *slog.Logger) AttemptNotifier {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *notificationEventService) NotifyAttemptStarted(ctx context.Context, attempt *models.Attempt, quiz *models.Quiz) {
	s.publish(ctx, events.NewAttemptStartedEvent(attempt, quiz))
}

func (s *notificationEventService) NotifyAttemptSubmitted(ctx context.Context, attempt *models.Attempt) {
	s.publish(ctx, events.NewAttemptSubmittedEvent(attempt))
}

func (s *notificationEventService) NotifyAttemptReviewed(ctx context.Context, attempt *models.Attempt, answer *models.Answer, reviewerID string) {
	s.publish(ctx, events.NewAttemptReviewedEvent(attempt, answer, reviewerID))
}

func (s *notificationEventService) publish(ctx context.Context, event *events.NotificationEvent) {
	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt event",
			"event_id", event.ID,
			"event_type", event.Type,
			"subject", event.Subject.String(),
			"error", err)
	}
}

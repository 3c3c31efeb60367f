package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewAttemptSubmittedEvent_TypeFollowsAutoSubmitted(t *testing.T) {
	completed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &models.Attempt{
		ID:          7,
		QuizID:      3,
		UserID:      "u-1",
		Score:       intPtr(4),
		MaxScore:    5,
		IsPassed:    true,
		CompletedAt: &completed,
	}

	event := NewAttemptSubmittedEvent(attempt)
	assert.Equal(t, EventAttemptSubmitted, event.Type)
	assert.Equal(t, models.EntityRef{Kind: models.EntityAttempt, ID: 7}, event.Subject)

	payload, ok := event.Data.(AttemptSubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, 4, payload.Score)
	assert.Equal(t, completed, payload.SubmittedAt)

	attempt.AutoSubmitted = true
	assert.Equal(t, EventAttemptAutoSubmitted, NewAttemptSubmittedEvent(attempt).Type)
}

func TestNotificationEvent_JSONShape(t *testing.T) {
	quiz := &models.Quiz{ID: 3, TitleEn: "Quiz", TimeLimitMinutes: intPtr(30)}
	attempt := &models.Attempt{ID: 9, QuizID: 3, UserID: "u-2", AttemptNumber: 2, StartedAt: time.Now()}

	event := NewAttemptStartedEvent(attempt, quiz)
	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "attempt.started", decoded["type"])
	assert.Equal(t, "quiz-service", decoded["source"])
	assert.Equal(t, map[string]interface{}{"kind": "attempt", "id": float64(9)}, decoded["subject"])
}

func TestMockEventPublisher_ConcurrentPublish(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	attempt := &models.Attempt{ID: 1}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = publisher.PublishNotificationEvent(context.Background(), NewAttemptSubmittedEvent(attempt))
		}()
	}
	wg.Wait()

	assert.Len(t, publisher.GetPublishedEvents(), 20)
	assert.Len(t, publisher.EventsOfType(EventAttemptSubmitted), 20)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}

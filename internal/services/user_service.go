package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// UserSyncer keeps the users projection in step with authenticated callers
type UserSyncer interface {
	SyncUser(ctx context.Context, user *models.User) error
}

type userService struct {
	users  repositories.UserRepository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewUserService(repo *repositories.Repository, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) UserSyncer {
	return &userService{
		users:  repo.Users,
		cache:  cacheService,
		ttl:    ttl,
		logger: logger,
	}
}

// SyncUser writes the caller's profile at most once per ttl for an unchanged profile
func (s *userService) SyncUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return nil
	}

	key := fmt.Sprintf("user:synced:%s", user.ID)
	var seen models.User
	if err := s.cache.Get(ctx, key, &seen); err == nil &&
		seen.FullName == user.FullName && seen.Email == user.Email {
		return nil
	}

	if err := s.users.Upsert(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to sync user: %w", err)
	}
	if err := s.cache.Set(ctx, key, user, s.ttl); err != nil {
		s.logger.Warn("User sync cache write failed", "user_id", user.ID, "error", err)
	}
	return nil
}

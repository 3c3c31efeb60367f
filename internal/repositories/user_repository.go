package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository maintains the local users projection. Identity is owned by
// the auth provider; rows are refreshed from verified token claims.
type UserRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
}

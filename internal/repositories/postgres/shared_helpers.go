package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers holds query fragments reused across repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (h *SharedHelpers) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.db
}

var attemptSortColumns = map[string]string{
	"started_at":     "started_at",
	"completed_at":   "completed_at",
	"attempt_number": "attempt_number",
	"score":          "score",
}

// ApplyAttemptFilters narrows an attempt query by status and owner
func (h *SharedHelpers) ApplyAttemptFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != nil {
		switch *filters.Status {
		case models.AttemptInProgress:
			query = query.Where("completed_at IS NULL")
		case models.AttemptCompleted:
			query = query.Where("completed_at IS NOT NULL")
		}
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	return query
}

// ApplyPaginationAndSort applies a whitelisted ORDER BY plus LIMIT/OFFSET
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column, ok := attemptSortColumns[sortBy]
	if !ok {
		column = "started_at"
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// TxManagerPostgreSQL implements repositories.TxManager on top of gorm transactions
type TxManagerPostgreSQL struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) repositories.TxManager {
	return &TxManagerPostgreSQL{db: db}
}

func (t *TxManagerPostgreSQL) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

// NewRepository wires every PostgreSQL repository against one connection
func NewRepository(db *gorm.DB) *repositories.Repository {
	return &repositories.Repository{
		Tx:          NewTxManager(db),
		Quizzes:     NewQuizPostgreSQL(db),
		Enrollments: NewEnrollmentPostgreSQL(db),
		Questions:   NewQuestionPostgreSQL(db),
		Attempts:    NewAttemptPostgreSQL(db),
		Answers:     NewAnswerPostgreSQL(db),
		Users:       NewUserPostgreSQL(db),
	}
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const resultsSheetName = "Results"

var resultsHeaders = []string{
	"Attempt ID", "User ID", "Full Name", "Email", "Attempt Number", "Status",
	"Score", "Max Score", "Passed", "Auto Submitted", "Started At", "Completed At",
}

// ExportQuizResults writes every attempt of a quiz into an xlsx workbook
func (s *resultService) ExportQuizResults(ctx context.Context, quizID uint, instructorID string, role models.UserRole) (data []byte, err error) {
	began := time.Now()
	defer func() { s.opLogger.LogOperation(ctx, "export_results", instructorID, quizID, "quiz", time.Since(began), err) }()

	if _, err = s.enrollment.CheckInstructor(ctx, quizID, instructorID, role); err != nil {
		return nil, err
	}

	attempts, _, err := s.repo.Attempts.ListByQuiz(ctx, nil, quizID, repositories.AttemptFilters{
		SortBy:    "started_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return buildResultsWorkbook(attempts)
}

func buildResultsWorkbook(attempts []*models.Attempt) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Create sheet
	index, err := f.NewSheet(resultsSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	// Write headers
	if err := setRow(f, 1, toCells(resultsHeaders)); err != nil {
		return nil, err
	}

	// Write data
	for i, attempt := range attempts {
		if err := setRow(f, i+2, attemptRow(attempt)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(resultsSheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func attemptRow(attempt *models.Attempt) []interface{} {
	fullName, email := "", ""
	if attempt.User != nil {
		fullName = attempt.User.FullName
		email = attempt.User.Email
	}

	var score interface{} = ""
	if attempt.Score != nil {
		score = *attempt.Score
	}
	completedAt := ""
	if attempt.CompletedAt != nil {
		completedAt = attempt.CompletedAt.UTC().Format(time.RFC3339)
	}

	return []interface{}{
		attempt.ID,
		attempt.UserID,
		fullName,
		email,
		attempt.AttemptNumber,
		string(attempt.Status()),
		score,
		attempt.MaxScore,
		attempt.IsPassed,
		attempt.AutoSubmitted,
		attempt.StartedAt.UTC().Format(time.RFC3339),
		completedAt,
	}
}

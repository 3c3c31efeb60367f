package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Not found
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrQuestionNotFound = errors.New("question not found")

	// Forbidden
	ErrNotEnrolled         = errors.New("user is not enrolled in the course")
	ErrNotCourseInstructor = errors.New("user is not the instructor of this course")

	// Bad request: violated business preconditions
	ErrMaxAttemptsReached      = errors.New("maximum attempts reached")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrNoActiveAttempt         = errors.New("no active attempt found")
	ErrAttemptInProgress       = errors.New("an attempt for this quiz is already in progress")
	ErrAttemptExpired          = errors.New("attempt time has expired")
	ErrQuizNotAvailable        = errors.New("quiz is not available at this time")
	ErrQuestionNotInQuiz       = errors.New("question is not part of this attempt")
	ErrAttemptNotCompleted     = errors.New("attempt has not been submitted yet")
	ErrInvalidPoints           = errors.New("points exceed the question value")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// BusinessRuleError carries the rule context of a rejected precondition.
// It unwraps to the sentinel so errors.Is keeps working.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	Err     error                  `json:"-"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.Err
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     error  `json:"-"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %v",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return pe.Reason
}

// ===== ERROR HELPERS =====

func NewBusinessRuleError(rule string, err error, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: err.Error(),
		Context: context,
		Err:     err,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action string, reason error) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrAnswerNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

// IsForbidden checks if error represents an authenticated but unauthorized caller
func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrNotEnrolled) ||
		errors.Is(err, ErrNotCourseInstructor) ||
		errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsBadRequest checks if error represents a violated precondition or invalid input
func IsBadRequest(err error) bool {
	return IsValidation(err) ||
		IsBusinessRule(err) ||
		errors.Is(err, ErrMaxAttemptsReached) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrNoActiveAttempt) ||
		errors.Is(err, ErrAttemptInProgress) ||
		errors.Is(err, ErrAttemptExpired) ||
		errors.Is(err, ErrQuizNotAvailable) ||
		errors.Is(err, ErrQuestionNotInQuiz) ||
		errors.Is(err, ErrAttemptNotCompleted) ||
		errors.Is(err, ErrInvalidPoints)
}

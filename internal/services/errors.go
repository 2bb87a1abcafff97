package services

import (
	"errors"
	"fmt"

	apperrors "github.com/CSCORE-2025/cscore-web/internal/errors"
	"github.com/CSCORE-2025/cscore-web/internal/gateway"
	"github.com/CSCORE-2025/cscore-web/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrValidationFailed = errors.New("validation failed")

	// Attempt lifecycle errors
	ErrAttemptNotFound      = errors.New("attempt session not found")
	ErrLoadFailed           = errors.New("failed to load attempt data")
	ErrAlreadySubmitted     = errors.New("assignment already submitted")
	ErrConfirmationRequired = errors.New("submission requires confirmation")

	// Course/assignment errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PermissionError describes a denied action on a session or resource.
type PermissionError struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// ===== ERROR HELPERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		gateway.IsNotFound(err)
}

func IsUnauthorized(err error) bool {
	if gateway.IsUnauthorized(err) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrConfirmationRequired) ||
		errors.Is(err, session.ErrEmptySubmission) ||
		errors.Is(err, session.ErrUnknownQuestion) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, session.ErrAttemptFinished) ||
		errors.Is(err, session.ErrSubmitInProgress)
}

package services

import (
	"context"
	"log/slog"

	"github.com/CSCORE-2025/cscore-web/internal/gateway"
	"github.com/CSCORE-2025/cscore-web/internal/models"
)

// AssignmentService exposes assignment reads outside an attempt: the detail
// view a student sees before starting, and the submissions list a teacher
// monitors while attempts are running.
type AssignmentService interface {
	GetForStudent(ctx context.Context, token string, assignmentID int64) (*models.AssignmentDefinition, error)
	ListSubmissions(ctx context.Context, token string, assignmentID int64) ([]models.SubmissionSummary, error)
}

type assignmentService struct {
	assignments gateway.AssignmentGateway
	logger      *slog.Logger
}

func NewAssignmentService(assignments gateway.AssignmentGateway, logger *slog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		logger:      logger,
	}
}

func (s *assignmentService) GetForStudent(ctx context.Context, token string, assignmentID int64) (*models.AssignmentDefinition, error) {
	assignment, err := s.assignments.GetForStudent(ctx, token, assignmentID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) ListSubmissions(ctx context.Context, token string, assignmentID int64) ([]models.SubmissionSummary, error) {
	submissions, err := s.assignments.ListSubmissions(ctx, token, assignmentID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	s.logger.Debug("fetched submissions", "assignment_id", assignmentID, "count", len(submissions))
	return submissions, nil
}

package gateway

import (
	"context"
	"fmt"

	"github.com/CSCORE-2025/cscore-web/internal/models"
)

// AssignmentGateway reads assignment definitions for a student and performs
// the terminal submission of an attempt.
type AssignmentGateway interface {
	GetForStudent(ctx context.Context, token string, assignmentID int64) (*models.AssignmentDefinition, error)
	Submit(ctx context.Context, token string, req *models.SubmissionRequest) (*models.SubmissionReceipt, error)
	ListSubmissions(ctx context.Context, token string, assignmentID int64) ([]models.SubmissionSummary, error)
}

type assignmentGateway struct {
	client *Client
}

func NewAssignmentGateway(client *Client) AssignmentGateway {
	return &assignmentGateway{client: client}
}

func (g *assignmentGateway) GetForStudent(ctx context.Context, token string, assignmentID int64) (*models.AssignmentDefinition, error) {
	var assignment models.AssignmentDefinition
	path := fmt.Sprintf("/api/student/assignments/%d", assignmentID)
	if err := g.client.get(ctx, path, token, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (g *assignmentGateway) Submit(ctx context.Context, token string, req *models.SubmissionRequest) (*models.SubmissionReceipt, error) {
	var receipt models.SubmissionReceipt
	if err := g.client.post(ctx, "/api/student/assignments/submit", token, req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (g *assignmentGateway) ListSubmissions(ctx context.Context, token string, assignmentID int64) ([]models.SubmissionSummary, error) {
	var submissions []models.SubmissionSummary
	path := fmt.Sprintf("/api/teacher/assignments/%d/submissions", assignmentID)
	if err := g.client.get(ctx, path, token, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

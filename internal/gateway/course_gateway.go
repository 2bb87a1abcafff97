package gateway

import (
	"context"
	"fmt"

	"github.com/CSCORE-2025/cscore-web/internal/models"
)

// CourseGateway reads course display metadata (breadcrumbs, dashboard cards).
type CourseGateway interface {
	GetForStudent(ctx context.Context, token string, courseID int64) (*models.CourseSummary, error)
	ListForStudent(ctx context.Context, token string) ([]models.CourseSummary, error)
}

type courseGateway struct {
	client *Client
}

func NewCourseGateway(client *Client) CourseGateway {
	return &courseGateway{client: client}
}

func (g *courseGateway) GetForStudent(ctx context.Context, token string, courseID int64) (*models.CourseSummary, error) {
	var course models.CourseSummary
	path := fmt.Sprintf("/api/student/courses/%d", courseID)
	if err := g.client.get(ctx, path, token, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (g *courseGateway) ListForStudent(ctx context.Context, token string) ([]models.CourseSummary, error) {
	var courses []models.CourseSummary
	if err := g.client.get(ctx, "/api/student/courses", token, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

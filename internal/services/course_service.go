package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CSCORE-2025/cscore-web/internal/cache"
	"github.com/CSCORE-2025/cscore-web/internal/gateway"
	"github.com/CSCORE-2025/cscore-web/internal/models"
)

const (
	courseCacheKeyFmt = "course:%d:user:%s"
	courseCacheTTL    = 5 * time.Minute
)

// CourseService serves course display metadata with a read-through cache.
// Course names and codes change rarely, so a short TTL keeps the breadcrumb
// and dashboard reads off the backend. Cache entries are keyed per user: the
// backend enforces enrollment on every fetch, and a shared key would let one
// student's load leak course metadata to everyone else.
type CourseService interface {
	Get(ctx context.Context, token, userID string, courseID int64) (*models.CourseSummary, error)
	List(ctx context.Context, token string) ([]models.CourseSummary, error)
}

type courseService struct {
	courses gateway.CourseGateway
	cache   cache.CacheService
	logger  *slog.Logger
}

func NewCourseService(courses gateway.CourseGateway, cacheService cache.CacheService, logger *slog.Logger) CourseService {
	return &courseService{
		courses: courses,
		cache:   cacheService,
		logger:  logger,
	}
}

func (s *courseService) Get(ctx context.Context, token, userID string, courseID int64) (*models.CourseSummary, error) {
	key := fmt.Sprintf(courseCacheKeyFmt, courseID, userID)

	var cached models.CourseSummary
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("course cache read failed", "course_id", courseID, "error", err)
	}

	course, err := s.courses.GetForStudent(ctx, token, courseID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, key, course, courseCacheTTL); err != nil {
		s.logger.Warn("course cache write failed", "course_id", courseID, "error", err)
	}
	return course, nil
}

// List always reads through to the backend: enrollment changes must show up
// immediately on the dashboard.
func (s *courseService) List(ctx context.Context, token string) ([]models.CourseSummary, error) {
	return s.courses.ListForStudent(ctx, token)
}

package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anshxhhh/coursehaven/internal/app"
	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 5 * time.Minute

// CourseStore is a read-through cache in front of a catalog repository.
// Single-course reads are served from Redis when possible; every write
// invalidates the cached entry before delegating. Cache failures degrade to
// the underlying store and are only logged.
type CourseStore struct {
	inner  app.CatalogRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCourseStore(inner app.CatalogRepository, rdb *redis.Client, logger *zap.Logger) *CourseStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseStore{
		inner:  inner,
		rdb:    rdb,
		ttl:    defaultTTL,
		logger: logger,
	}
}

func courseKey(courseID string) string {
	return fmt.Sprintf("course:%s", courseID)
}

func (s *CourseStore) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	data, err := s.rdb.Get(ctx, courseKey(courseID)).Bytes()
	if err == nil {
		var course domain.Course
		if err := json.Unmarshal(data, &course); err == nil {
			return course, nil
		}
		// Unreadable entry: drop it and fall through to the store.
		s.rdb.Del(ctx, courseKey(courseID))
	} else if err != redis.Nil {
		s.logger.Warn("course cache read", zap.String("course_id", courseID), zap.Error(err))
	}

	course, err := s.inner.GetCourse(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}

	if data, err := json.Marshal(course); err == nil {
		if err := s.rdb.Set(ctx, courseKey(courseID), data, s.ttl).Err(); err != nil {
			s.logger.Warn("course cache write", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return course, nil
}

func (s *CourseStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.inner.ListCourses(ctx)
}

func (s *CourseStore) CreateCourse(ctx context.Context, course domain.Course) error {
	return s.inner.CreateCourse(ctx, course)
}

func (s *CourseStore) UpdateCourse(ctx context.Context, course domain.Course) error {
	s.invalidate(ctx, course.ID)
	return s.inner.UpdateCourse(ctx, course)
}

func (s *CourseStore) DeleteCourse(ctx context.Context, courseID string) error {
	s.invalidate(ctx, courseID)
	return s.inner.DeleteCourse(ctx, courseID)
}

func (s *CourseStore) invalidate(ctx context.Context, courseID string) {
	if err := s.rdb.Del(ctx, courseKey(courseID)).Err(); err != nil {
		s.logger.Warn("course cache invalidate", zap.String("course_id", courseID), zap.Error(err))
	}
}

package app

import (
	"context"

	"github.com/anshxhhh/coursehaven/internal/clock"
	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/google/uuid"
)

type CatalogRepository interface {
	CreateCourse(ctx context.Context, course domain.Course) error
	UpdateCourse(ctx context.Context, course domain.Course) error
	DeleteCourse(ctx context.Context, courseID string) error
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
}

type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		clock: clk,
	}
}

type CreateCourseInput struct {
	Title       string
	Description string
	Price       int64
	ImageURL    string
}

func (s *CatalogService) CreateCourse(ctx context.Context, in CreateCourseInput) (domain.Course, error) {
	if in.Title == "" {
		return domain.Course{}, domain.ErrTitleRequired
	}
	if in.Price <= 0 {
		return domain.Course{}, domain.ErrInvalidPrice
	}

	course := domain.Course{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

type UpdateCourseInput struct {
	CourseID    string
	Title       string
	Description string
	Price       int64
	ImageURL    string
}

func (s *CatalogService) UpdateCourse(ctx context.Context, in UpdateCourseInput) (domain.Course, error) {
	if in.CourseID == "" {
		return domain.Course{}, domain.ErrInvalidID
	}
	if in.Title == "" {
		return domain.Course{}, domain.ErrTitleRequired
	}
	if in.Price <= 0 {
		return domain.Course{}, domain.ErrInvalidPrice
	}

	existing, err := s.repo.GetCourse(ctx, in.CourseID)
	if err != nil {
		return domain.Course{}, err
	}

	existing.Title = in.Title
	existing.Description = in.Description
	existing.Price = in.Price
	existing.ImageURL = in.ImageURL

	if err := s.repo.UpdateCourse(ctx, existing); err != nil {
		return domain.Course{}, err
	}
	return existing, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, courseID string) error {
	if courseID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteCourse(ctx, courseID)
}

func (s *CatalogService) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	if courseID == "" {
		return domain.Course{}, domain.ErrInvalidID
	}
	return s.repo.GetCourse(ctx, courseID)
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.repo.ListCourses(ctx)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/anshxhhh/coursehaven/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) CreateCourse(ctx context.Context, course domain.Course) error {
	const stmt = `
INSERT INTO courses (id, title, description, price, image_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt,
		course.ID,
		course.Title,
		course.Description,
		course.Price,
		course.ImageURL,
		course.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) UpdateCourse(ctx context.Context, course domain.Course) error {
	const stmt = `
UPDATE courses
SET title = $2, description = $3, price = $4, image_url = $5
WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt,
		course.ID,
		course.Title,
		course.Description,
		course.Price,
		course.ImageURL,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) DeleteCourse(ctx context.Context, courseID string) error {
	const stmt = `DELETE FROM courses WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt, courseID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err, "course") {
			return domain.ErrCourseInUse
		}
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	const query = `
SELECT id, title, description, price, image_url, created_at
FROM courses
WHERE id = $1`

	var c domain.Course
	err := r.pool.QueryRow(ctx, query, courseID).
		Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Course{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Course{}, domain.ErrCourseNotFound
		}
		return domain.Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (r *CourseRepository) ListCourses(ctx context.Context) ([]domain.Course, error) {
	const query = `
SELECT id, title, description, price, image_url, created_at
FROM courses
ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

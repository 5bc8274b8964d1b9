package repository

import (
	"context"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type CreateCourseInput struct {
	TeacherID   int64
	Title       string
	Description string
	Price       float64
}

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(
	ctx context.Context,
	input CreateCourseInput,
) (*models.Course, error) {
	query := `
		INSERT INTO courses (teacher_id, title, description, price, status)
		VALUES ($1, $2, $3, $4, 'draft')
		RETURNING id, teacher_id, title, description, price, status, thumbnail_url, created_at, updated_at
	`
	var course models.Course
	err := r.db.QueryRow(ctx, query, input.TeacherID, input.Title, input.Description, input.Price).Scan(
		&course.ID,
		&course.TeacherID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.Status,
		&course.ThumbnailURL,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, courseID int64) (*models.Course, error) {
	query := `
		SELECT id, teacher_id, title, description, price, status, thumbnail_url, created_at, updated_at
		FROM courses
		WHERE id = $1
	`
	var course models.Course
	err := r.db.QueryRow(ctx, query, courseID).Scan(
		&course.ID,
		&course.TeacherID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.Status,
		&course.ThumbnailURL,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListVisible returns the teacher's own courses, or only published
// courses for everyone else.
func (r *CourseRepository) ListVisible(
	ctx context.Context,
	teacherID int64,
) ([]models.Course, error) {
	query := `
		SELECT id, teacher_id, title, description, price, status, thumbnail_url, created_at, updated_at
		FROM courses
		WHERE ($1::bigint > 0 AND teacher_id = $1)
		   OR ($1::bigint = 0 AND status = 'published')
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.TeacherID,
			&course.Title,
			&course.Description,
			&course.Price,
			&course.Status,
			&course.ThumbnailURL,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

type UpdateCourseInput struct {
	Title        *string
	Description  *string
	Price        *float64
	Status       *string
	ThumbnailURL *string
}

func (r *CourseRepository) Update(
	ctx context.Context,
	courseID int64,
	teacherID int64,
	input UpdateCourseInput,
) (*models.Course, error) {
	query := `
		UPDATE courses
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    price = COALESCE($5, price),
		    status = COALESCE($6, status),
		    thumbnail_url = COALESCE($7, thumbnail_url),
		    updated_at = NOW()
		WHERE id = $1 AND teacher_id = $2
		RETURNING id, teacher_id, title, description, price, status, thumbnail_url, created_at, updated_at
	`
	var course models.Course
	err := r.db.QueryRow(
		ctx,
		query,
		courseID,
		teacherID,
		input.Title,
		input.Description,
		input.Price,
		input.Status,
		input.ThumbnailURL,
	).Scan(
		&course.ID,
		&course.TeacherID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.Status,
		&course.ThumbnailURL,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

type CreateLessonInput struct {
	CourseID int64
	Title    string
	Content  string
	Position int
}

func (r *CourseRepository) CreateLesson(
	ctx context.Context,
	input CreateLessonInput,
) (*models.Lesson, error) {
	query := `
		INSERT INTO lessons (course_id, title, content, position, is_published)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, course_id, title, content, position, is_published, created_at, updated_at
	`
	var lesson models.Lesson
	err := r.db.QueryRow(ctx, query, input.CourseID, input.Title, input.Content, input.Position).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Content,
		&lesson.Position,
		&lesson.IsPublished,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) ListLessons(
	ctx context.Context,
	courseID int64,
	publishedOnly bool,
) ([]models.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, position, is_published, created_at, updated_at
		FROM lessons
		WHERE course_id = $1
		  AND ($2 = FALSE OR is_published = TRUE)
		ORDER BY position ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, courseID, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]models.Lesson, 0)
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Title,
			&lesson.Content,
			&lesson.Position,
			&lesson.IsPublished,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lessons, nil
}

type UpdateLessonInput struct {
	Title       *string
	Content     *string
	Position    *int
	IsPublished *bool
}

func (r *CourseRepository) UpdateLesson(
	ctx context.Context,
	lessonID int64,
	courseID int64,
	input UpdateLessonInput,
) (*models.Lesson, error) {
	query := `
		UPDATE lessons
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    position = COALESCE($5, position),
		    is_published = COALESCE($6, is_published),
		    updated_at = NOW()
		WHERE id = $1 AND course_id = $2
		RETURNING id, course_id, title, content, position, is_published, created_at, updated_at
	`
	var lesson models.Lesson
	err := r.db.QueryRow(
		ctx,
		query,
		lessonID,
		courseID,
		input.Title,
		input.Content,
		input.Position,
		input.IsPublished,
	).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Content,
		&lesson.Position,
		&lesson.IsPublished,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

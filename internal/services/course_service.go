package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

type courseStore interface {
	Create(ctx context.Context, input repository.CreateCourseInput) (*models.Course, error)
	GetByID(ctx context.Context, courseID int64) (*models.Course, error)
	ListVisible(ctx context.Context, teacherID int64) ([]models.Course, error)
	Update(ctx context.Context, courseID int64, teacherID int64, input repository.UpdateCourseInput) (*models.Course, error)
	CreateLesson(ctx context.Context, input repository.CreateLessonInput) (*models.Lesson, error)
	ListLessons(ctx context.Context, courseID int64, publishedOnly bool) ([]models.Lesson, error)
	UpdateLesson(ctx context.Context, lessonID int64, courseID int64, input repository.UpdateLessonInput) (*models.Lesson, error)
}

// CourseService owns instructor-authored courses and their lessons.
// Drafts are visible only to their author; publishing makes a course and
// its published lessons available to everyone.
type CourseService struct {
	repo courseStore
}

func NewCourseService(repo courseStore) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) CreateCourse(
	ctx context.Context,
	actorID int64,
	role models.Role,
	title string,
	description string,
	price float64,
) (*models.Course, error) {
	if role != models.RoleInstructor {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(title) == "" || price < 0 {
		return nil, ErrInvalidInput
	}

	return s.repo.Create(ctx, repository.CreateCourseInput{
		TeacherID:   actorID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Price:       price,
	})
}

func (s *CourseService) GetCourse(
	ctx context.Context,
	actorID int64,
	courseID int64,
) (*models.Course, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if course.Status != models.CourseStatusPublished && course.TeacherID != actorID {
		return nil, ErrNotFound
	}
	return course, nil
}

// ListCourses shows instructors their own catalog and everyone else the
// published one.
func (s *CourseService) ListCourses(
	ctx context.Context,
	actorID int64,
	role models.Role,
) ([]models.Course, error) {
	if role == models.RoleInstructor {
		return s.repo.ListVisible(ctx, actorID)
	}
	return s.repo.ListVisible(ctx, 0)
}

func (s *CourseService) UpdateCourse(
	ctx context.Context,
	actorID int64,
	courseID int64,
	input repository.UpdateCourseInput,
) (*models.Course, error) {
	if input.Status != nil {
		switch *input.Status {
		case models.CourseStatusDraft, models.CourseStatusPublished, models.CourseStatusArchived:
		default:
			return nil, ErrInvalidInput
		}
	}

	course, err := s.repo.Update(ctx, courseID, actorID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) AddLesson(
	ctx context.Context,
	actorID int64,
	courseID int64,
	title string,
	content string,
	position int,
) (*models.Lesson, error) {
	if strings.TrimSpace(title) == "" || position < 0 {
		return nil, ErrInvalidInput
	}

	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if course.TeacherID != actorID {
		return nil, ErrForbidden
	}

	return s.repo.CreateLesson(ctx, repository.CreateLessonInput{
		CourseID: courseID,
		Title:    strings.TrimSpace(title),
		Content:  content,
		Position: position,
	})
}

func (s *CourseService) ListLessons(
	ctx context.Context,
	actorID int64,
	courseID int64,
) ([]models.Lesson, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if course.TeacherID == actorID {
		return s.repo.ListLessons(ctx, courseID, false)
	}
	if course.Status != models.CourseStatusPublished {
		return nil, ErrNotFound
	}
	return s.repo.ListLessons(ctx, courseID, true)
}

func (s *CourseService) UpdateLesson(
	ctx context.Context,
	actorID int64,
	courseID int64,
	lessonID int64,
	input repository.UpdateLessonInput,
) (*models.Lesson, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if course.TeacherID != actorID {
		return nil, ErrForbidden
	}

	lesson, err := s.repo.UpdateLesson(ctx, lessonID, courseID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lesson, nil
}
